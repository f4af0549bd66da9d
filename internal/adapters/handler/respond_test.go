package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError(domain.FieldError{Field: "email", Message: "x"}), http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrAmbiguousLookup, http.StatusConflict},
		{fmt.Errorf("wrap: %w", domain.ErrNotFound), http.StatusNotFound},
		{&domain.PartialFailureError{}, http.StatusMultiStatus},
		{domain.StoreError("op", errors.New("down")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v): expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

func TestWriteError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, zerolog.Nop(), domain.NewValidationError(
		domain.FieldError{Field: "password", Message: "is too short"},
	))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "validation failed" || len(resp.Fields) != 1 || resp.Fields[0].Field != "password" {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestWriteError_HidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, zerolog.Nop(), domain.StoreError("list", errors.New("dial tcp 10.0.0.5:5432")))

	var resp ErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "service temporarily unavailable, please retry" {
		t.Errorf("unexpected message %q", resp.Error)
	}
}
