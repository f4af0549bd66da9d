package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/metrics"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

type RegistrationHandler struct {
	registrationService ports.RegistrationService
	metrics             *metrics.Metrics
	log                 zerolog.Logger
}

func NewRegistrationHandler(registration ports.RegistrationService, m *metrics.Metrics, log zerolog.Logger) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registration, metrics: m, log: log}
}

// Register creates an enrollment and logs the parent in.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req ports.RegistrationInput
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	session, err := h.registrationService.RegisterParent(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.Registration()

	writeJSON(w, http.StatusCreated, SessionResponse{
		Message:  "Registration successful",
		Token:    session.Token,
		Identity: session.Identity,
	})
}

// Programs lists the program catalog.
func Programs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Catalog())
}
