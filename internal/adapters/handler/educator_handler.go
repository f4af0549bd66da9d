package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/metrics"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

type EducatorHandler struct {
	attendance ports.AttendanceService
	notices    ports.NoticeService
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

func NewEducatorHandler(attendance ports.AttendanceService, notices ports.NoticeService, m *metrics.Metrics, log zerolog.Logger) *EducatorHandler {
	return &EducatorHandler{attendance: attendance, notices: notices, metrics: m, log: log}
}

type AttendanceRequest struct {
	Absent []string `json:"absent"`
}

type ReportRequest struct {
	EnrollmentID string `json:"enrollment_id"`
	Reason       string `json:"reason"`
}

type NoticeRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

type PartialAttendanceResponse struct {
	ErrorResponse
	Records []domain.AttendanceRecord `json:"records"`
}

// Roster lists the children of the educator's program.
func (h *EducatorHandler) Roster(w http.ResponseWriter, r *http.Request) {
	educator, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	roster, err := h.attendance.Roster(r.Context(), educator.Program)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// SubmitAttendance marks the listed children absent and everyone else present.
func (h *EducatorHandler) SubmitAttendance(w http.ResponseWriter, r *http.Request) {
	educator, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	var req AttendanceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	roster, err := h.attendance.Roster(r.Context(), educator.Program)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	sheet := domain.NewSheet(roster)
	for _, id := range req.Absent {
		if !sheet.MarkAbsent(id) {
			writeError(w, h.log, domain.NewValidationError(domain.FieldError{
				Field: "absent", Message: id + " is not on your roster",
			}))
			return
		}
	}

	result, err := h.attendance.Submit(r.Context(), educator, sheet)
	var partial *domain.PartialFailureError
	if errors.As(err, &partial) {
		h.metrics.AttendanceWritten(string(domain.StatusAbsent), len(partial.Written))
		writeJSON(w, http.StatusMultiStatus, PartialAttendanceResponse{
			ErrorResponse: ErrorResponse{Error: domain.ErrPartialFailure.Error(), Failed: partial.FailedIDs()},
			Records:       result.Records,
		})
		return
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.AttendanceWritten(string(domain.StatusAbsent), len(result.Records))
	writeJSON(w, http.StatusOK, result)
}

// Report flags a child for follow-up.
func (h *EducatorHandler) Report(w http.ResponseWriter, r *http.Request) {
	educator, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	var req ReportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	record, err := h.attendance.Report(r.Context(), educator, req.EnrollmentID, req.Reason)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.AttendanceWritten(string(domain.StatusFlagged), 1)
	writeJSON(w, http.StatusCreated, record)
}

// SendNotice posts a broadcast or a private notice.
func (h *EducatorHandler) SendNotice(w http.ResponseWriter, r *http.Request) {
	educator, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	var req NoticeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	notice, err := h.notices.Send(r.Context(), educator, req.Text, req.Target)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.NoticeSent(string(notice.Type))
	writeJSON(w, http.StatusCreated, notice)
}
