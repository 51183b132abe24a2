package models

import "time"

// Report types users may file.
const (
	ReportTypeSpam       = "spam"
	ReportTypeHarassment = "harassment"
	ReportTypeImpostor   = "impostor"
	ReportTypeOther      = "other"
)

// MessageReport is an immutable user-submitted report.
type MessageReport struct {
	ID             int       `db:"id" json:"id"`
	ReporterID     int       `db:"reporter_id" json:"reporter_id"`
	ReportedUserID int       `db:"reported_user_id" json:"reported_user_id"`
	ReportType     string    `db:"report_type" json:"report_type"`
	Note           string    `db:"note" json:"note"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ChatBlock restricts message exchange between two users. Created
// automatically when a report is filed, lifted only by admin review.
type ChatBlock struct {
	ID              int       `db:"id" json:"id"`
	ReporterID      int       `db:"reporter_id" json:"reporter_id"`
	BlockedUserID   int       `db:"blocked_user_id" json:"blocked_user_id"`
	ReportID        *int      `db:"report_id" json:"report_id,omitempty"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	ReviewedByAdmin bool      `db:"reviewed_by_admin" json:"reviewed_by_admin"`
	AdminNotes      string    `db:"admin_notes" json:"admin_notes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Admin review actions on a chat block.
const (
	ReviewActionDismiss = "dismiss"
	ReviewActionBlock   = "block"
	ReviewActionUnblock = "unblock"
)
