package domain

import "time"

// ReportReason is the reason given when filing a review report.
type ReportReason = string

// Report reasons.
const (
	ReportReasonSpam      = "spam"
	ReportReasonOffensive = "offensive"
	ReportReasonFake      = "fake"
	ReportReasonOther     = "other"
)

// ReportStatus is the moderation status of a review report.
type ReportStatus = string

// Report statuses. A report starts pending and moves to exactly one terminal
// status.
const (
	ReportStatusPending  = "pending"
	ReportStatusApproved = "approved"
	ReportStatusRejected = "rejected"
	ReportStatusIgnored  = "ignored"
)

// IsValidReportReason checks whether the given reason is recognized.
func IsValidReportReason(reason string) bool {
	switch reason {
	case ReportReasonSpam, ReportReasonOffensive, ReportReasonFake, ReportReasonOther:
		return true
	default:
		return false
	}
}

// IsTerminalReportStatus checks whether the given status ends a report's
// lifecycle.
func IsTerminalReportStatus(status string) bool {
	switch status {
	case ReportStatusApproved, ReportStatusRejected, ReportStatusIgnored:
		return true
	default:
		return false
	}
}

// ReviewReport is a moderation report filed against a review. HandledBy,
// HandledAt and HandleNote are set exactly once, when the report leaves
// pending.
type ReviewReport struct {
	ID          string     `json:"id"`
	ReviewID    string     `json:"review_id"`
	ReporterID  string     `json:"reporter_id"`
	Reason      string     `json:"reason"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	HandledBy   *string    `json:"handled_by,omitempty"`
	HandledAt   *time.Time `json:"handled_at,omitempty"`
	HandleNote  *string    `json:"handle_note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
