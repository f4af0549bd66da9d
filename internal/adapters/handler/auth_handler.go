package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/metrics"
	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/middleware"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, m *metrics.Metrics, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: auth, metrics: m, log: log}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Message  string          `json:"message"`
	Token    string          `json:"token"`
	Identity domain.Identity `json:"identity"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.Login("unknown", "failure")
		writeError(w, h.log, err)
		return
	}
	h.metrics.Login(string(session.Identity.Role), "success")

	writeJSON(w, http.StatusOK, SessionResponse{
		Message:  "Login successful",
		Token:    session.Token,
		Identity: session.Identity,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}
	if err := h.authService.Logout(r.Context(), token); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
