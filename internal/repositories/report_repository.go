package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"grwcomm/internal/models"
)

var ErrBlockNotFound = errors.New("chat block not found")

// ReportRepository stores user reports and the chat blocks they raise.
type ReportRepository interface {
	CreateReport(ctx context.Context, report models.MessageReport) (models.MessageReport, models.ChatBlock, error)
	IsBlocked(ctx context.Context, userA, userB int) (bool, error)
	GetBlock(ctx context.Context, blockID int) (models.ChatBlock, error)
	ListBlocks(ctx context.Context, unreviewedOnly bool) ([]models.ChatBlock, error)
	ReviewBlock(ctx context.Context, blockID int, active *bool, notes string) (models.ChatBlock, error)
}

// ReportRepo is a sqlx implementation of ReportRepository.
type ReportRepo struct {
	db *sqlx.DB
}

// NewReportRepo constructs a ReportRepo.
func NewReportRepo(db *sqlx.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

const blockColumns = `id, reporter_id, blocked_user_id, report_id, is_active, reviewed_by_admin, admin_notes, created_at, updated_at`

// CreateReport inserts the immutable report and, in the same transaction,
// raises (or reactivates) the pair's chat block pointing at this report.
func (r *ReportRepo) CreateReport(ctx context.Context, report models.MessageReport) (models.MessageReport, models.ChatBlock, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.MessageReport{}, models.ChatBlock{}, err
	}
	defer tx.Rollback()

	var created models.MessageReport
	if err := tx.QueryRowxContext(ctx,
		`INSERT INTO message_reports (reporter_id, reported_user_id, report_type, note)
         VALUES ($1, $2, $3, $4)
         RETURNING id, reporter_id, reported_user_id, report_type, note, created_at`,
		report.ReporterID, report.ReportedUserID, report.ReportType, report.Note,
	).StructScan(&created); err != nil {
		return models.MessageReport{}, models.ChatBlock{}, err
	}

	var block models.ChatBlock
	if err := tx.QueryRowxContext(ctx,
		`INSERT INTO chat_blocks (reporter_id, blocked_user_id, report_id)
         VALUES ($1, $2, $3)
         ON CONFLICT (reporter_id, blocked_user_id) DO UPDATE
           SET report_id = EXCLUDED.report_id,
               is_active = TRUE,
               reviewed_by_admin = FALSE,
               updated_at = NOW()
         RETURNING `+blockColumns,
		created.ReporterID, created.ReportedUserID, created.ID,
	).StructScan(&block); err != nil {
		return models.MessageReport{}, models.ChatBlock{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.MessageReport{}, models.ChatBlock{}, err
	}
	return created, block, nil
}

// IsBlocked reports whether an active block exists between the pair in
// either direction.
func (r *ReportRepo) IsBlocked(ctx context.Context, userA, userB int) (bool, error) {
	var blocked bool
	err := r.db.GetContext(ctx, &blocked,
		`SELECT EXISTS(SELECT 1 FROM chat_blocks
          WHERE is_active = TRUE
            AND ((reporter_id=$1 AND blocked_user_id=$2) OR (reporter_id=$2 AND blocked_user_id=$1)))`,
		userA, userB)
	return blocked, err
}

// GetBlock fetches one chat block.
func (r *ReportRepo) GetBlock(ctx context.Context, blockID int) (models.ChatBlock, error) {
	var block models.ChatBlock
	err := r.db.GetContext(ctx, &block,
		`SELECT `+blockColumns+` FROM chat_blocks WHERE id=$1`, blockID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatBlock{}, ErrBlockNotFound
	}
	return block, err
}

// ListBlocks returns the moderation queue, newest first.
func (r *ReportRepo) ListBlocks(ctx context.Context, unreviewedOnly bool) ([]models.ChatBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM chat_blocks`
	if unreviewedOnly {
		query += ` WHERE reviewed_by_admin = FALSE`
	}
	query += ` ORDER BY updated_at DESC`
	var blocks []models.ChatBlock
	err := r.db.SelectContext(ctx, &blocks, query)
	return blocks, err
}

// ReviewBlock applies an admin decision. A nil active leaves the block
// state unchanged (dismiss). Idempotent; notes are always overwritten.
func (r *ReportRepo) ReviewBlock(ctx context.Context, blockID int, active *bool, notes string) (models.ChatBlock, error) {
	var block models.ChatBlock
	err := r.db.QueryRowxContext(ctx,
		`UPDATE chat_blocks
         SET is_active=COALESCE($2, is_active), reviewed_by_admin=TRUE, admin_notes=$3, updated_at=NOW()
         WHERE id=$1 RETURNING `+blockColumns,
		blockID, active, notes).StructScan(&block)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatBlock{}, ErrBlockNotFound
	}
	return block, err
}
