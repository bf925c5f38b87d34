package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/domain"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/repository"
)

// ReportService manages the review moderation workflow.
type ReportService struct {
	reports repository.ReportRepository
	reviews repository.ReviewRepository
	logger  *slog.Logger
}

// NewReportService creates a new report service.
func NewReportService(reports repository.ReportRepository, reviews repository.ReviewRepository, logger *slog.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		reviews: reviews,
		logger:  logger,
	}
}

// FileReportInput holds the parameters for filing a report.
type FileReportInput struct {
	ReviewID    string
	ReporterID  string
	Reason      string
	Description string
}

// FileReport opens a pending report against a review. A reporter can have at
// most one pending report per review.
func (s *ReportService) FileReport(ctx context.Context, input *FileReportInput) (*domain.ReviewReport, error) {
	if !domain.IsValidReportReason(domain.ReportReason(input.Reason)) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid report reason: %s", input.Reason))
	}

	if _, err := s.reviews.GetByID(ctx, input.ReviewID); err != nil {
		return nil, err
	}

	report := &domain.ReviewReport{
		ID:          uuid.New().String(),
		ReviewID:    input.ReviewID,
		ReporterID:  input.ReporterID,
		Reason:      domain.ReportReason(input.Reason),
		Description: input.Description,
		Status:      domain.ReportStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.reports.File(ctx, report); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review reported",
		slog.String("report_id", report.ID),
		slog.String("review_id", report.ReviewID),
		slog.String("reason", string(report.Reason)),
	)
	return report, nil
}

// GetReport returns a report by ID.
func (s *ReportService) GetReport(ctx context.Context, id string) (*domain.ReviewReport, error) {
	return s.reports.GetByID(ctx, id)
}

// ListPending returns a page of reports awaiting moderation, oldest first.
func (s *ReportService) ListPending(ctx context.Context, page, perPage int) ([]domain.ReviewReport, int, error) {
	return s.reports.ListPending(ctx, page, perPage)
}

// HandleReport moves a pending report into a terminal status. A report can be
// handled exactly once; a second attempt fails with a conflict.
func (s *ReportService) HandleReport(ctx context.Context, reportID, status, note, handlerID string) (*domain.ReviewReport, error) {
	st := domain.ReportStatus(status)
	if !domain.IsTerminalReportStatus(st) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid report resolution: %s", status))
	}

	if err := s.reports.Handle(ctx, reportID, st, note, handlerID); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "report handled",
		slog.String("report_id", reportID),
		slog.String("status", status),
		slog.String("handled_by", handlerID),
	)
	return s.reports.GetByID(ctx, reportID)
}
