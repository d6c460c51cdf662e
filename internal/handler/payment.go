package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
	"github.com/jfcastellanos/prestamos-engine/internal/service"
	"github.com/jfcastellanos/prestamos-engine/pkg/response"
)

type PaymentHandler struct {
	loanService    *service.LoanService
	summaryService *service.SummaryService
	validator      *validator.Validate
}

func NewPaymentHandler(loanService *service.LoanService, summaryService *service.SummaryService) *PaymentHandler {
	return &PaymentHandler{
		loanService:    loanService,
		summaryService: summaryService,
		validator:      validator.New(),
	}
}

// List handles GET /payments with optional client_id, from and to filters
// (dates in YYYY-MM-DD).
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.PaymentFilter

	if raw := r.URL.Query().Get("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid client_id", err)
			return
		}
		filter.ClientID = id
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "Invalid from date", err)
			return
		}
		filter.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "Invalid to date", err)
			return
		}
		// to is inclusive on the wire, exclusive in the query
		filter.To = to.AddDate(0, 0, 1)
	}

	records, err := h.loanService.ListPayments(r.Context(), collectorScope(r), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, records)
}

// ListByClient handles GET /payments/client/{clientId}
func (h *PaymentHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(mux.Vars(r)["clientId"])
	if err != nil {
		response.BadRequest(w, "Invalid client ID", err)
		return
	}

	payments, err := h.loanService.ListClientPayments(r.Context(), collectorScope(r), clientID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, payments)
}

// Create handles POST /payments
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	payment, err := h.loanService.RegisterPayment(r.Context(), collectorScope(r), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, payment)
}

// Delete handles DELETE /payments/{paymentId}
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(mux.Vars(r)["paymentId"])
	if err != nil {
		response.BadRequest(w, "Invalid payment ID", err)
		return
	}

	if err := h.loanService.DeletePayment(r.Context(), collectorScope(r), paymentID); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Payment removed"})
}

// TodaySummary handles GET /payments/summary/today
func (h *PaymentHandler) TodaySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaryService.DailySummary(r.Context(), collectorScope(r), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, summary)
}
