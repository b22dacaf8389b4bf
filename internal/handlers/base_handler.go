package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wencuts/masterclass/internal/errs"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]any{"success": false, "error": message})
}

// RespondNotice sends a success envelope with a transient notice
func (h *BaseHandler) RespondNotice(w http.ResponseWriter, message string) {
	h.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "message": message})
}

// RespondFailure maps a taxonomy error to an HTTP status and message
func (h *BaseHandler) RespondFailure(w http.ResponseWriter, err error, fallback string) {
	h.RespondError(w, statusFor(err), errs.Message(err, fallback))
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrCodeMismatch):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrInvalidCode):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrNetwork):
		return http.StatusBadGateway
	default:
		var re *errs.RemoteError
		if errors.As(err, &re) {
			// A remote 4xx rejects the caller's input and passes
			// through; an envelope rejection (2xx carrying
			// success:false) is the same thing without a status.
			// Anything else means the upstream itself failed.
			switch {
			case re.StatusCode >= 400 && re.StatusCode < 500:
				return re.StatusCode
			case re.StatusCode < 400:
				return http.StatusBadRequest
			default:
				return http.StatusBadGateway
			}
		}
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body into out
func decodeBody(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}
