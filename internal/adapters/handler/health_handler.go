package handler

import (
	"context"
	"net/http"
	"time"
)

const checkTimeout = 5 * time.Second

// Pinger is satisfied by *sql.DB through a small adapter and by the redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	checks    map[string]Pinger
	startTime time.Time
	version   string
}

// NewHealthHandler takes the named dependencies checked by the readiness probe.
func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		checks:    checks,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse follows Kubernetes/OpenShift health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health confirms the process is running.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Ready checks every dependency (readiness probe).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "UP", Checks: make(map[string]Check, len(h.checks))}
	httpStatus := http.StatusOK

	for name, p := range h.checks {
		check := h.check(r.Context(), name, p)
		resp.Checks[name] = check
		if check.Status != "UP" {
			resp.Status = "DOWN"
			httpStatus = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, httpStatus, resp)
}

// Live is an alias for Health
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

func (h *HealthHandler) check(ctx context.Context, name string, p Pinger) Check {
	if p == nil {
		return Check{Status: "DOWN", Message: name + " is not initialized"}
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return Check{Status: "DOWN", Message: "cannot connect to " + name}
	}
	return Check{Status: "UP"}
}
