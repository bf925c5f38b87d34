package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/database"
	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/domain"
)

const reportColumns = `id, review_id, reporter_id, reason, description, status,
	handled_by, handled_at, handle_note, created_at`

// ReportRepository implements repository.ReportRepository using PostgreSQL.
// The open-report-per-reporter rule is backed by a partial unique index on
// (review_id, reporter_id) WHERE status = 'pending', so two racing filings
// cannot both create an open report.
type ReportRepository struct {
	db database.DBTX
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(db database.DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

// File creates a pending report.
func (r *ReportRepository) File(ctx context.Context, report *domain.ReviewReport) error {
	query := `
		INSERT INTO review_reports (id, review_id, reporter_id, reason, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.ReviewID,
		report.ReporterID,
		report.Reason,
		report.Description,
		domain.ReportStatusPending,
		report.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateReport(report.ReviewID)
		}
		return fmt.Errorf("insert report: %w", err)
	}

	return nil
}

// GetByID retrieves a report by its ID.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.ReviewReport, error) {
	query := fmt.Sprintf(`SELECT %s FROM review_reports WHERE id = $1`, reportColumns)

	var report domain.ReviewReport
	err := r.db.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.ReviewID,
		&report.ReporterID,
		&report.Reason,
		&report.Description,
		&report.Status,
		&report.HandledBy,
		&report.HandledAt,
		&report.HandleNote,
		&report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("report", id)
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}

	return &report, nil
}

// ListPending returns a page of open reports, oldest first so moderators see
// the longest-waiting ones.
func (r *ReportRepository) ListPending(ctx context.Context, page, perPage int) ([]domain.ReviewReport, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM review_reports
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`,
		reportColumns,
	)

	if perPage <= 0 {
		perPage = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}

	rows, err := r.db.Query(ctx, query, domain.ReportStatusPending, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending reports: %w", err)
	}
	defer rows.Close()

	var (
		reports    []domain.ReviewReport
		totalCount int
	)

	for rows.Next() {
		var report domain.ReviewReport
		if err := rows.Scan(
			&report.ID,
			&report.ReviewID,
			&report.ReporterID,
			&report.Reason,
			&report.Description,
			&report.Status,
			&report.HandledBy,
			&report.HandledAt,
			&report.HandleNote,
			&report.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan report row: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate report rows: %w", err)
	}

	if reports == nil {
		reports = []domain.ReviewReport{}
	}

	return reports, totalCount, nil
}

// Handle moves the report from pending to a terminal status. The status guard
// lives in the WHERE clause, so concurrent handlers race on a single
// conditional update and exactly one wins.
func (r *ReportRepository) Handle(ctx context.Context, reportID string, status domain.ReportStatus, note, handlerID string) error {
	query := `
		UPDATE review_reports
		SET status = $1, handle_note = $2, handled_by = $3, handled_at = $4
		WHERE id = $5 AND status = $6`

	ct, err := r.db.Exec(ctx, query,
		status, note, handlerID, time.Now().UTC(), reportID, domain.ReportStatusPending,
	)
	if err != nil {
		return fmt.Errorf("handle report: %w", err)
	}

	if ct.RowsAffected() == 0 {
		// Zero rows means either the report is gone or it already left
		// pending. Look it up once to tell the two apart.
		if _, err := r.GetByID(ctx, reportID); err != nil {
			return err
		}
		return apperrors.AlreadyHandled(reportID)
	}

	return nil
}
