package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
	"github.com/jfcastellanos/prestamos-engine/internal/service"
	"github.com/jfcastellanos/prestamos-engine/pkg/response"
)

type UserHandler struct {
	userService    *service.UserService
	summaryService *service.SummaryService
	validator      *validator.Validate
}

func NewUserHandler(userService *service.UserService, summaryService *service.SummaryService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		summaryService: summaryService,
		validator:      validator.New(),
	}
}

// Me handles GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	user, err := h.userService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, user)
}

// List handles GET /users (admin only)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, users)
}

// Get handles GET /users/{userId} (admin only)
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID", err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, user)
}

// Create handles POST /users (admin only)
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, user)
}

// ChangePassword handles PUT /users/{userId}/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID", err)
		return
	}

	var request domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	claims := claimsFrom(r)
	if err := h.userService.ChangePassword(r.Context(), claims.UserID, claims.IsAdmin, userID, &request); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Password updated"})
}

// Delete handles DELETE /users/{userId} (admin only)
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID", err)
		return
	}

	claims := claimsFrom(r)
	if err := h.userService.DeleteUser(r.Context(), claims.UserID, userID); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "User removed"})
}

// RegisterCashBase handles POST /users/base
func (h *UserHandler) RegisterCashBase(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterCashBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	if err := h.userService.RegisterCashBase(r.Context(), collectorScope(r), request.Amount); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Cash base registered"})
}

// RegisterExpense handles POST /users/expense
func (h *UserHandler) RegisterExpense(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	if err := h.userService.RegisterExpense(r.Context(), collectorScope(r), request.Amount, request.Description); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Expense registered"})
}

// WeeklySummary handles GET /users/summary/weekly
func (h *UserHandler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaryService.WeeklySummary(r.Context(), collectorScope(r), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, summary)
}

// CollectorsSummary handles GET /users/collectors/summary (admin only)
func (h *UserHandler) CollectorsSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.summaryService.AllCollectorsSummary(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, summaries)
}

// History handles GET /users/history?days=7
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			response.BadRequest(w, "days must be between 1 and 90", err)
			return
		}
		days = parsed
	}

	history, err := h.summaryService.CollectorHistory(r.Context(), collectorScope(r), days)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, history)
}
