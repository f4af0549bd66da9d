package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

type AdminHandler struct {
	admin ports.AdminService
	log   zerolog.Logger
}

func NewAdminHandler(admin ports.AdminService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, log: log}
}

func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.admin.Overview(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *AdminHandler) Enrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.admin.ListEnrollments(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollments)
}

func (h *AdminHandler) Educators(w http.ResponseWriter, r *http.Request) {
	educators, err := h.admin.ListEducators(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, educators)
}

// CreateEducator responds with the generated password, which is not stored.
func (h *AdminHandler) CreateEducator(w http.ResponseWriter, r *http.Request) {
	var req ports.NewEducatorInput
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	created, err := h.admin.CreateEducator(r.Context(), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	records, err := h.admin.AttendanceLog(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *AdminHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	revenue, err := h.admin.Revenue(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, revenue)
}

// Delete removes /admin/{collection}/{id}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	if err := h.admin.Delete(r.Context(), collection, id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
