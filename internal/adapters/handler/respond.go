package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/middleware"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
	Failed []string            `json:"failed,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAmbiguousLookup):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPartialFailure):
		return http.StatusMultiStatus
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Error = domain.ErrValidation.Error()
		resp.Fields = verr.Fields
	}
	switch status {
	case http.StatusUnauthorized:
		resp.Error = "invalid email or password"
	case http.StatusServiceUnavailable:
		log.Error().Err(err).Msg("store unavailable")
		resp.Error = "service temporarily unavailable, please retry"
	case http.StatusInternalServerError:
		log.Error().Err(err).Msg("internal error")
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError(domain.FieldError{Field: "body", Message: "invalid request payload"})
	}
	return nil
}

// mustIdentity returns the identity placed by the auth middleware.
func mustIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}
