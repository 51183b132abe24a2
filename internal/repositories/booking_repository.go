package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"grwcomm/internal/models"
)

// BookingRepository implements the slot booking rules: per-receiver
// category capacity, one active booking per (sender, receiver, category),
// and the credit deduction tied to each booking.
type BookingRepository interface {
	CanSend(ctx context.Context, senderID, receiverID, categoryID int) (models.Decision, error)
	BookSlot(ctx context.Context, senderID, receiverID, categoryID int, content string) (*models.SlotBooking, *models.Message, models.Decision, error)
	GetAvailability(ctx context.Context, ownerID, requesterID int) ([]models.SlotAvailability, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

// BookingRepo is a sqlx implementation of BookingRepository.
type BookingRepo struct {
	db *sqlx.DB
}

// NewBookingRepo constructs a BookingRepo.
func NewBookingRepo(db *sqlx.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// CanSend checks whether the sender may open a new booking against the
// receiver for the category. Read-only; the authoritative re-check runs
// inside BookSlot's transaction.
func (r *BookingRepo) CanSend(ctx context.Context, senderID, receiverID, categoryID int) (models.Decision, error) {
	var alreadySent bool
	if err := r.db.GetContext(ctx, &alreadySent,
		`SELECT EXISTS(SELECT 1 FROM slot_bookings
          WHERE sender_id=$1 AND receiver_id=$2 AND category_id=$3 AND expires_at > NOW())`,
		senderID, receiverID, categoryID); err != nil {
		return models.Decision{}, err
	}
	if alreadySent {
		return models.Deny(models.ReasonAlreadySent), nil
	}

	var cat models.MessageCategory
	err := r.db.GetContext(ctx, &cat,
		`SELECT `+categoryColumns+` FROM message_categories WHERE id=$1`, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Deny(models.ReasonInvalidCategory), nil
	}
	if err != nil {
		return models.Decision{}, err
	}
	limit := cat.ReceiverLimit(receiverID)
	if limit == 0 {
		return models.Deny(models.ReasonInvalidCategory), nil
	}

	var used int
	if err := r.db.GetContext(ctx, &used,
		`SELECT COUNT(*) FROM slot_bookings
         WHERE receiver_id=$1 AND category_id=$2 AND expires_at > NOW()`,
		receiverID, categoryID); err != nil {
		return models.Decision{}, err
	}
	if used >= limit {
		return models.Deny(models.ReasonSlotsFull), nil
	}

	return models.Allow(), nil
}

// BookSlot runs the whole first-contact sequence in one transaction:
// credit check, capacity and duplicate checks, message insert, booking
// insert, credit deduction and ledger row. Either everything commits or
// nothing does, so a booking can never outlive its credit deduction.
func (r *BookingRepo) BookSlot(ctx context.Context, senderID, receiverID, categoryID int, content string) (*models.SlotBooking, *models.Message, models.Decision, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, models.Decision{}, err
	}
	defer tx.Rollback()

	now := time.Now()

	account, err := ensureCreditAccountTx(ctx, tx, senderID, now)
	if err != nil {
		return nil, nil, models.Decision{}, err
	}
	if account.Available() < 1 {
		return nil, nil, models.Deny(models.ReasonNoCredits), nil
	}

	// The FOR UPDATE lock on the category row serializes concurrent
	// bookings against the same receiver capacity.
	var cat models.MessageCategory
	err = tx.QueryRowxContext(ctx,
		`SELECT `+categoryColumns+` FROM message_categories WHERE id=$1 FOR UPDATE`,
		categoryID).StructScan(&cat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, models.Deny(models.ReasonInvalidCategory), nil
	}
	if err != nil {
		return nil, nil, models.Decision{}, err
	}
	limit := cat.ReceiverLimit(receiverID)
	if limit == 0 {
		return nil, nil, models.Deny(models.ReasonInvalidCategory), nil
	}

	// An expired row for this triple only blocks the unique index, not
	// the rules; clear it so the sender can book again.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM slot_bookings
         WHERE sender_id=$1 AND receiver_id=$2 AND category_id=$3 AND expires_at <= $4`,
		senderID, receiverID, categoryID, now); err != nil {
		return nil, nil, models.Decision{}, err
	}

	var alreadySent bool
	if err := tx.GetContext(ctx, &alreadySent,
		`SELECT EXISTS(SELECT 1 FROM slot_bookings
          WHERE sender_id=$1 AND receiver_id=$2 AND category_id=$3 AND expires_at > $4)`,
		senderID, receiverID, categoryID, now); err != nil {
		return nil, nil, models.Decision{}, err
	}
	if alreadySent {
		return nil, nil, models.Deny(models.ReasonAlreadySent), nil
	}

	var used int
	if err := tx.GetContext(ctx, &used,
		`SELECT COUNT(*) FROM slot_bookings
         WHERE receiver_id=$1 AND category_id=$2 AND expires_at > $3`,
		receiverID, categoryID, now); err != nil {
		return nil, nil, models.Decision{}, err
	}
	if used >= limit {
		return nil, nil, models.Deny(models.ReasonSlotsFull), nil
	}

	var msg models.Message
	if err := tx.QueryRowxContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, category_id, content)
         VALUES ($1, $2, $3, $4) RETURNING `+messageColumns,
		senderID, receiverID, categoryID, content).StructScan(&msg); err != nil {
		return nil, nil, models.Decision{}, err
	}

	var booking models.SlotBooking
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO slot_bookings (sender_id, receiver_id, category_id, message_id, expires_at)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, sender_id, receiver_id, category_id, message_id, created_at, expires_at`,
		senderID, receiverID, categoryID, msg.ID, now.Add(models.BookingTTL)).StructScan(&booking)
	if isUniqueViolation(err) {
		// A concurrent writer won the unique index race.
		return nil, nil, models.Deny(models.ReasonAlreadySent), nil
	}
	if err != nil {
		return nil, nil, models.Decision{}, err
	}

	before := account.Available()
	res, err := tx.ExecContext(ctx,
		`UPDATE credit_accounts SET credits_used_this_week = credits_used_this_week + 1
         WHERE user_id=$1 AND total_credits - credits_used_this_week >= 1`,
		senderID)
	if err != nil {
		return nil, nil, models.Decision{}, err
	}
	deducted, err := res.RowsAffected()
	if err != nil {
		return nil, nil, models.Decision{}, err
	}
	if deducted == 0 {
		return nil, nil, models.Deny(models.ReasonNoCredits), nil
	}

	if err := appendCreditTx(ctx, tx, models.CreditTransaction{
		UserID:           senderID,
		Type:             models.CreditTxUse,
		Amount:           -1,
		BalanceBefore:    before,
		BalanceAfter:     before - 1,
		RelatedBookingID: &booking.ID,
	}); err != nil {
		return nil, nil, models.Decision{}, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, models.Decision{}, err
	}
	return &booking, &msg, models.Allow(), nil
}

// GetAvailability reports every active category the owner exposes, with
// used/free slot counts and the requester-specific status.
func (r *BookingRepo) GetAvailability(ctx context.Context, ownerID, requesterID int) ([]models.SlotAvailability, error) {
	type row struct {
		models.MessageCategory
		Used        int  `db:"used"`
		AlreadySent bool `db:"already_sent"`
	}

	query := `SELECT c.id, c.owner_id, c.name, c.slot_limit, c.is_active, c.created_at,
            (SELECT COUNT(*) FROM slot_bookings b
              WHERE b.receiver_id=c.owner_id AND b.category_id=c.id AND b.expires_at > NOW()) AS used,
            EXISTS(SELECT 1 FROM slot_bookings b
              WHERE b.sender_id=$2 AND b.receiver_id=c.owner_id AND b.category_id=c.id AND b.expires_at > NOW()) AS already_sent
        FROM message_categories c
        WHERE c.owner_id=$1 AND c.is_active = TRUE
        ORDER BY c.name ASC`

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, ownerID, requesterID); err != nil {
		return nil, err
	}

	result := make([]models.SlotAvailability, 0, len(rows))
	for _, rw := range rows {
		available := rw.SlotLimit - rw.Used
		if available < 0 {
			available = 0
		}
		status := models.SlotStatusAvailable
		switch {
		case rw.AlreadySent:
			status = models.SlotStatusAlreadySent
		case available == 0:
			status = models.SlotStatusFull
		}
		result = append(result, models.SlotAvailability{
			Category:       rw.MessageCategory,
			TotalSlots:     rw.SlotLimit,
			UsedSlots:      rw.Used,
			AvailableSlots: available,
			Status:         status,
		})
	}
	return result, nil
}

// CleanupExpired deletes every expired booking row and returns the count.
// Invoked out-of-band; new bookings never depend on it having run.
func (r *BookingRepo) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM slot_bookings WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
