package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/infowows/trg-crm-sub000/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Validation, conflict, lock and not-found errors are expected and carry their
// message to the caller; anything else is a collaborator failure, logged with
// context and surfaced as a generic 500.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrLocked):
		Problem(w, http.StatusUnprocessableEntity, "Record Locked", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		if logger != nil {
			logger.Error("unexpected error", slog.Any("error", err))
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
