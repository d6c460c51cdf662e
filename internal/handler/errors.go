package handler

import (
	"errors"
	"net/http"

	customError "github.com/jfcastellanos/prestamos-engine/pkg/errors"
	"github.com/jfcastellanos/prestamos-engine/pkg/response"
)

// writeError maps business errors to HTTP statuses. The deletion gate and
// idempotency clashes are conflicts, distinct from not-found.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customError.ErrClientNotFound),
		errors.Is(err, customError.ErrPaymentNotFound),
		errors.Is(err, customError.ErrUserNotFound):
		response.Error(w, http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, customError.ErrBalancePending),
		errors.Is(err, customError.ErrDuplicatePayment):
		response.Conflict(w, "Operation rejected", err)
	case errors.Is(err, customError.ErrInvalidAmount),
		errors.Is(err, customError.ErrUsernameTaken):
		response.BadRequest(w, "Invalid request", err)
	case errors.Is(err, customError.ErrInvalidCredentials):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, customError.ErrForbidden):
		response.Forbidden(w, err.Error())
	default:
		response.InternalServerError(w, "Internal error", err)
	}
}
