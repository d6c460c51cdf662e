package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
	"github.com/jfcastellanos/prestamos-engine/internal/service"
	"github.com/jfcastellanos/prestamos-engine/pkg/response"
)

type ClientHandler struct {
	loanService *service.LoanService
	validator   *validator.Validate
}

func NewClientHandler(loanService *service.LoanService) *ClientHandler {
	return &ClientHandler{
		loanService: loanService,
		validator:   validator.New(),
	}
}

// List handles GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.ClientFilter{
		State:  r.URL.Query().Get("state"),
		Search: r.URL.Query().Get("search"),
	}

	clients, err := h.loanService.ListClients(r.Context(), collectorScope(r), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, clients)
}

// Get handles GET /clients/{clientId}, returning the client with their
// derived balance.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(mux.Vars(r)["clientId"])
	if err != nil {
		response.BadRequest(w, "Invalid client ID", err)
		return
	}

	detail, err := h.loanService.GetClient(r.Context(), collectorScope(r), clientID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, detail)
}

// Create handles POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterClientRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	client, err := h.loanService.RegisterClient(r.Context(), collectorScope(r), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, client)
}

// Update handles PUT /clients/{clientId}, a full edit of the client and
// their loan terms.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(mux.Vars(r)["clientId"])
	if err != nil {
		response.BadRequest(w, "Invalid client ID", err)
		return
	}

	var request domain.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	client, err := h.loanService.UpdateClient(r.Context(), collectorScope(r), clientID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, client)
}

// UpdateState handles PATCH /clients/{clientId}/state
func (h *ClientHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(mux.Vars(r)["clientId"])
	if err != nil {
		response.BadRequest(w, "Invalid client ID", err)
		return
	}

	var request domain.UpdateClientStateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	if err := h.loanService.UpdateState(r.Context(), collectorScope(r), clientID, request.State); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"state": request.State})
}

// Delete handles DELETE /clients/{clientId}. Refused while the loan has an
// outstanding balance.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(mux.Vars(r)["clientId"])
	if err != nil {
		response.BadRequest(w, "Invalid client ID", err)
		return
	}

	if err := h.loanService.DeleteClient(r.Context(), collectorScope(r), clientID); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Client removed"})
}
