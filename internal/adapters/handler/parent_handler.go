package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/metrics"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

const streamHeartbeat = 25 * time.Second

type ParentHandler struct {
	notices       ports.NoticeService
	subscriptions ports.SubscriptionService
	metrics       *metrics.Metrics
	log           zerolog.Logger
}

func NewParentHandler(notices ports.NoticeService, subscriptions ports.SubscriptionService, m *metrics.Metrics, log zerolog.Logger) *ParentHandler {
	return &ParentHandler{notices: notices, subscriptions: subscriptions, metrics: m, log: log}
}

type ProfileResponse struct {
	Identity     domain.Identity           `json:"identity"`
	Subscription domain.SubscriptionStatus `json:"subscription"`
}

// Profile returns the parent's identity and subscription state.
func (h *ParentHandler) Profile(w http.ResponseWriter, r *http.Request) {
	parent, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	status, err := h.subscriptions.Status(r.Context(), parent.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Identity: parent, Subscription: *status})
}

// Subscription reports whether notices are unlocked.
func (h *ParentHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	parent, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	status, err := h.subscriptions.Status(r.Context(), parent.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Pay records a payment and extends access by one period.
func (h *ParentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	parent, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	receipt, err := h.subscriptions.Activate(r.Context(), parent)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// Notices returns the current filtered notice list.
func (h *ParentHandler) Notices(w http.ResponseWriter, r *http.Request) {
	parent, ok := h.requireActive(w, r)
	if !ok {
		return
	}
	notices, err := h.notices.List(r.Context(), parent)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, notices)
}

// StreamNotices pushes the full filtered list as a server-sent event on
// every change until the client disconnects.
func (h *ParentHandler) StreamNotices(w http.ResponseWriter, r *http.Request) {
	parent, ok := h.requireActive(w, r)
	if !ok {
		return
	}
	sub, err := h.notices.Subscribe(r.Context(), parent)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	defer sub.Close()

	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if !h.stillActive(w, rc, r, parent.ID) {
				return
			}
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		case view, ok := <-sub.Updates():
			if !ok {
				return
			}
			if !h.stillActive(w, rc, r, parent.ID) {
				return
			}
			data, err := json.Marshal(view)
			if err != nil {
				h.log.Error().Err(err).Msg("encode notice view")
				return
			}
			if _, err := fmt.Fprintf(w, "event: notices\ndata: %s\n\n", data); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}

// stillActive re-checks the subscription of an open stream. An expired
// subscription ends the stream with an expired event.
func (h *ParentHandler) stillActive(w http.ResponseWriter, rc *http.ResponseController, r *http.Request, parentID string) bool {
	active, err := h.subscriptions.IsActive(r.Context(), parentID)
	if err != nil {
		h.log.Warn().Err(err).Str("parent_id", parentID).Msg("subscription check failed, closing stream")
		return false
	}
	if !active {
		_, _ = fmt.Fprint(w, "event: expired\ndata: {}\n\n")
		_ = rc.Flush()
		return false
	}
	return true
}

// requireActive rejects parents without a current subscription.
func (h *ParentHandler) requireActive(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	parent, ok := mustIdentity(w, r)
	if !ok {
		return parent, false
	}
	active, err := h.subscriptions.IsActive(r.Context(), parent.ID)
	if err != nil {
		writeError(w, h.log, err)
		return parent, false
	}
	if !active {
		writeJSON(w, http.StatusPaymentRequired, ErrorResponse{Error: "subscription inactive"})
		return parent, false
	}
	return parent, true
}
