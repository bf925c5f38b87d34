package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/health"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/domain"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/service"
)

type mockReportRepo struct {
	mock.Mock
}

func (m *mockReportRepo) File(ctx context.Context, r *domain.ReviewReport) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*domain.ReviewReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewReport), args.Error(1)
}

func (m *mockReportRepo) ListPending(ctx context.Context, page, perPage int) ([]domain.ReviewReport, int, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReviewReport), args.Int(1), args.Error(2)
}

func (m *mockReportRepo) Handle(ctx context.Context, reportID string, status domain.ReportStatus, note, handlerID string) error {
	args := m.Called(ctx, reportID, status, note, handlerID)
	return args.Error(0)
}

const testReportID = "33333333-3333-3333-3333-333333333333"

func newTestReportHandler(reports *mockReportRepo, reviews *mockReviewRepo) *ReportHandler {
	logger := newTestLogger()
	svc := service.NewReportService(reports, reviews, logger)
	return NewReportHandler(svc, logger)
}

func newReportRouter(h *ReportHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/api/v1/reviews/{id}/report", h.FileReport)
	r.Get("/api/v1/reports/pending", h.ListPendingReports)
	r.Post("/api/v1/reports/{id}/handle", h.HandleReport)
	return r
}

func pendingReport() *domain.ReviewReport {
	return &domain.ReviewReport{
		ID:         testReportID,
		ReviewID:   testReviewID,
		ReporterID: "reporter-7",
		Reason:     domain.ReportReasonSpam,
		Status:     domain.ReportStatusPending,
		CreatedAt:  time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFileReportHandler_Success(t *testing.T) {
	reports := new(mockReportRepo)
	reviews := new(mockReviewRepo)
	router := newReportRouter(newTestReportHandler(reports, reviews))

	reviews.On("GetByID", mock.Anything, testReviewID).Return(sampleReview(), nil)
	reports.On("File", mock.Anything, mock.Anything).Return(nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reviews/"+testReviewID+"/report", "reporter-7", map[string]any{
		"reason":      "spam",
		"description": "advertising",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.ReviewReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.ReportStatusPending, resp.Data.Status)
}

func TestFileReportHandler_InvalidReason(t *testing.T) {
	reports := new(mockReportRepo)
	reviews := new(mockReviewRepo)
	router := newReportRouter(newTestReportHandler(reports, reviews))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reviews/"+testReviewID+"/report", "reporter-7", map[string]any{
		"reason": "dislike",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	reports.AssertNotCalled(t, "File", mock.Anything, mock.Anything)
}

func TestFileReportHandler_Duplicate(t *testing.T) {
	reports := new(mockReportRepo)
	reviews := new(mockReviewRepo)
	router := newReportRouter(newTestReportHandler(reports, reviews))

	reviews.On("GetByID", mock.Anything, testReviewID).Return(sampleReview(), nil)
	reports.On("File", mock.Anything, mock.Anything).Return(apperrors.DuplicateReport(testReviewID))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reviews/"+testReviewID+"/report", "reporter-7", map[string]any{
		"reason": "spam",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleReportHandler_Success(t *testing.T) {
	reports := new(mockReportRepo)
	reviews := new(mockReviewRepo)
	router := newReportRouter(newTestReportHandler(reports, reviews))

	handled := pendingReport()
	handled.Status = domain.ReportStatusApproved

	reports.On("Handle", mock.Anything, testReportID, domain.ReportStatusApproved, "confirmed", "admin-1").Return(nil)
	reports.On("GetByID", mock.Anything, testReportID).Return(handled, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reports/"+testReportID+"/handle", "admin-1", map[string]any{
		"status": "approved",
		"note":   "confirmed",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.ReviewReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.ReportStatusApproved, resp.Data.Status)
}

func TestHandleReportHandler_AlreadyHandled(t *testing.T) {
	reports := new(mockReportRepo)
	reviews := new(mockReviewRepo)
	router := newReportRouter(newTestReportHandler(reports, reviews))

	reports.On("Handle", mock.Anything, testReportID, domain.ReportStatusRejected, "", "admin-1").
		Return(apperrors.AlreadyHandled(testReportID))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reports/"+testReportID+"/handle", "admin-1", map[string]any{
		"status": "rejected",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleReportHandler_NonTerminalStatus(t *testing.T) {
	reports := new(mockReportRepo)
	reviews := new(mockReviewRepo)
	router := newReportRouter(newTestReportHandler(reports, reviews))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reports/"+testReportID+"/handle", "admin-1", map[string]any{
		"status": "pending",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	reports.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Moderation endpoints are admin-only; the full router enforces the role from
// the gateway-forwarded identity headers.
func TestRouter_ReportModerationRequiresAdmin(t *testing.T) {
	reports := new(mockReportRepo)
	reviews := new(mockReviewRepo)
	logger := newTestLogger()

	reports.On("ListPending", mock.Anything, 1, 20).Return([]domain.ReviewReport{}, 0, nil)

	router := NewRouter(
		newTestReviewHandler(reviews),
		NewLikeHandler(service.NewLikeService(nil, reviews, logger), logger),
		newTestReportHandler(reports, reviews),
		health.NewHandler(),
		nil,
		logger,
	)

	// A plain user is rejected before the handler runs.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/reports/pending", testUserID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The admin role arrives as a gateway-forwarded header and is promoted
	// into the context by the TrustedIdentity middleware.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/pending", nil)
	req.Header.Set("X-User-ID", "admin-1")
	req.Header.Set("X-User-Role", "admin")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusOK, rec2.Code)
	reports.AssertExpectations(t)
}
