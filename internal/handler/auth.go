package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jfcastellanos/prestamos-engine/internal/domain"
	"github.com/jfcastellanos/prestamos-engine/internal/service"
	"github.com/jfcastellanos/prestamos-engine/pkg/response"
)

type AuthHandler struct {
	userService *service.UserService
	validator   *validator.Validate
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.userService.Login(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, result)
}

// Register handles POST /auth/register. Self-registration always creates a
// collector; admin accounts are only created by another admin.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	request.IsAdmin = false

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
