package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/httputil"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/pagination"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/validator"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/service"
)

// ReportHandler handles HTTP requests for review report endpoints. Moderation
// endpoints are restricted to admins at the router.
type ReportHandler struct {
	service *service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report HTTP handler.
func NewReportHandler(svc *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  logger,
	}
}

// FileReportRequest is the JSON request body for reporting a review.
type FileReportRequest struct {
	Reason      string `json:"reason" validate:"required,oneof=spam offensive fake other"`
	Description string `json:"description" validate:"max=2000"`
}

// HandleReportRequest is the JSON request body for resolving a report.
type HandleReportRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected ignored"`
	Note   string `json:"note" validate:"max=2000"`
}

// FileReport handles POST /api/v1/reviews/{id}/report
func (h *ReportHandler) FileReport(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeMissingUser(w)
		return
	}

	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req FileReportRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	report, err := h.service.FileReport(r.Context(), &service.FileReportInput{
		ReviewID:    reviewID.String(),
		ReporterID:  userID,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: report})
}

// ListPendingReports handles GET /api/v1/reports/pending
func (h *ReportHandler) ListPendingReports(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	reports, total, err := h.service.ListPending(r.Context(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(reports, total, params.Page, params.PerPage))
}

// GetReport handles GET /api/v1/reports/{id}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	report, err := h.service.GetReport(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}

// HandleReport handles POST /api/v1/reports/{id}/handle
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	handlerID := callerID(r)
	if handlerID == "" {
		writeMissingUser(w)
		return
	}

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req HandleReportRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	report, err := h.service.HandleReport(r.Context(), id.String(), req.Status, req.Note, handlerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}
