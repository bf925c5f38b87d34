package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/domain"
)

type mockReportRepository struct {
	mock.Mock
}

func (m *mockReportRepository) File(ctx context.Context, r *domain.ReviewReport) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReportRepository) GetByID(ctx context.Context, id string) (*domain.ReviewReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewReport), args.Error(1)
}

func (m *mockReportRepository) ListPending(ctx context.Context, page, perPage int) ([]domain.ReviewReport, int, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReviewReport), args.Int(1), args.Error(2)
}

func (m *mockReportRepository) Handle(ctx context.Context, reportID string, status domain.ReportStatus, note, handlerID string) error {
	args := m.Called(ctx, reportID, status, note, handlerID)
	return args.Error(0)
}

func newTestReportService(reports *mockReportRepository, reviews *mockReviewRepository) *ReportService {
	return NewReportService(reports, reviews, newTestLogger())
}

const testReportID = "33333333-3333-3333-3333-333333333333"

func TestFileReport_Success(t *testing.T) {
	reports := new(mockReportRepository)
	reviews := new(mockReviewRepository)
	svc := newTestReportService(reports, reviews)

	reviews.On("GetByID", mock.Anything, testReviewID).Return(existingReview(), nil)
	reports.On("File", mock.Anything, mock.MatchedBy(func(r *domain.ReviewReport) bool {
		return r.ReviewID == testReviewID &&
			r.ReporterID == "reporter-7" &&
			r.Reason == domain.ReportReasonSpam &&
			r.Status == domain.ReportStatusPending &&
			r.ID != ""
	})).Return(nil)

	report, err := svc.FileReport(context.Background(), &FileReportInput{
		ReviewID:    testReviewID,
		ReporterID:  "reporter-7",
		Reason:      "spam",
		Description: "advertising",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusPending, report.Status)
	reports.AssertExpectations(t)
}

func TestFileReport_InvalidReason(t *testing.T) {
	reports := new(mockReportRepository)
	reviews := new(mockReviewRepository)
	svc := newTestReportService(reports, reviews)

	_, err := svc.FileReport(context.Background(), &FileReportInput{
		ReviewID:   testReviewID,
		ReporterID: "reporter-7",
		Reason:     "dislike",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	reports.AssertNotCalled(t, "File", mock.Anything, mock.Anything)
}

func TestFileReport_ReviewNotFound(t *testing.T) {
	reports := new(mockReportRepository)
	reviews := new(mockReviewRepository)
	svc := newTestReportService(reports, reviews)

	reviews.On("GetByID", mock.Anything, testReviewID).Return(nil, apperrors.NotFound("review", testReviewID))

	_, err := svc.FileReport(context.Background(), &FileReportInput{
		ReviewID:   testReviewID,
		ReporterID: "reporter-7",
		Reason:     "spam",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFileReport_DuplicatePending(t *testing.T) {
	reports := new(mockReportRepository)
	reviews := new(mockReviewRepository)
	svc := newTestReportService(reports, reviews)

	reviews.On("GetByID", mock.Anything, testReviewID).Return(existingReview(), nil)
	reports.On("File", mock.Anything, mock.Anything).Return(apperrors.DuplicateReport(testReviewID))

	_, err := svc.FileReport(context.Background(), &FileReportInput{
		ReviewID:   testReviewID,
		ReporterID: "reporter-7",
		Reason:     "spam",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestHandleReport_Success(t *testing.T) {
	reports := new(mockReportRepository)
	reviews := new(mockReviewRepository)
	svc := newTestReportService(reports, reviews)

	handled := &domain.ReviewReport{
		ID:       testReportID,
		ReviewID: testReviewID,
		Status:   domain.ReportStatusApproved,
	}

	reports.On("Handle", mock.Anything, testReportID, domain.ReportStatusApproved, "confirmed spam", "admin-1").Return(nil)
	reports.On("GetByID", mock.Anything, testReportID).Return(handled, nil)

	report, err := svc.HandleReport(context.Background(), testReportID, "approved", "confirmed spam", "admin-1")

	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusApproved, report.Status)
	reports.AssertExpectations(t)
}

func TestHandleReport_InvalidStatus(t *testing.T) {
	reports := new(mockReportRepository)
	reviews := new(mockReviewRepository)
	svc := newTestReportService(reports, reviews)

	// Pending is not a terminal status; a report cannot be "handled" back
	// into it.
	for _, status := range []string{"pending", "closed", ""} {
		_, err := svc.HandleReport(context.Background(), testReportID, status, "", "admin-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}

	reports.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleReport_AlreadyHandled(t *testing.T) {
	reports := new(mockReportRepository)
	reviews := new(mockReviewRepository)
	svc := newTestReportService(reports, reviews)

	reports.On("Handle", mock.Anything, testReportID, domain.ReportStatusRejected, "", "admin-1").
		Return(apperrors.AlreadyHandled(testReportID))

	_, err := svc.HandleReport(context.Background(), testReportID, "rejected", "", "admin-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	reports.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
