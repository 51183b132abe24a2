package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"grwcomm/internal/models"
)

// CreditRepository manages the weekly credit quota and its ledger.
type CreditRepository interface {
	GetOrCreate(ctx context.Context, userID int) (models.CreditAccount, error)
	AddCredits(ctx context.Context, userID, amount int, isBonus bool, grantedBy int) (models.CreditAccount, error)
	SweepWeeklyResets(ctx context.Context) (int, error)
	ListTransactions(ctx context.Context, userID, limit int) ([]models.CreditTransaction, error)
}

// CreditRepo is a sqlx implementation of CreditRepository.
type CreditRepo struct {
	db *sqlx.DB
}

// NewCreditRepo constructs a CreditRepo.
func NewCreditRepo(db *sqlx.DB) *CreditRepo {
	return &CreditRepo{db: db}
}

const creditColumns = `user_id, total_credits, base_credits, bonus_credits, credits_used_this_week, last_reset_at`

// ensureCreditAccountTx loads the account with a row lock, creating it
// with defaults on first access and applying the lazy weekly reset when
// due. Shared with the booking transaction.
func ensureCreditAccountTx(ctx context.Context, tx *sqlx.Tx, userID int, now time.Time) (models.CreditAccount, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credit_accounts (user_id, total_credits, base_credits, last_reset_at)
         VALUES ($1, $2, $2, $3) ON CONFLICT (user_id) DO NOTHING`,
		userID, models.BaseWeeklyCredits, now); err != nil {
		return models.CreditAccount{}, err
	}

	var account models.CreditAccount
	if err := tx.QueryRowxContext(ctx,
		`SELECT `+creditColumns+` FROM credit_accounts WHERE user_id=$1 FOR UPDATE`,
		userID).StructScan(&account); err != nil {
		return models.CreditAccount{}, err
	}

	if !account.NeedsReset(now) {
		return account, nil
	}

	before := account.Available()
	account.BaseCredits = models.BaseWeeklyCredits
	account.TotalCredits = account.BaseCredits + account.BonusCredits
	account.CreditsUsedThisWeek = 0
	account.LastResetAt = now

	if _, err := tx.ExecContext(ctx,
		`UPDATE credit_accounts
         SET total_credits=$2, base_credits=$3, credits_used_this_week=0, last_reset_at=$4
         WHERE user_id=$1`,
		userID, account.TotalCredits, account.BaseCredits, now); err != nil {
		return models.CreditAccount{}, err
	}

	after := account.Available()
	if err := appendCreditTx(ctx, tx, models.CreditTransaction{
		UserID:        userID,
		Type:          models.CreditTxWeeklyReset,
		Amount:        after - before,
		BalanceBefore: before,
		BalanceAfter:  after,
	}); err != nil {
		return models.CreditAccount{}, err
	}
	return account, nil
}

// appendCreditTx writes one immutable ledger row.
func appendCreditTx(ctx context.Context, tx *sqlx.Tx, row models.CreditTransaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO credit_transactions (user_id, type, amount, balance_before, balance_after, related_booking_id, created_by)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		row.UserID, row.Type, row.Amount, row.BalanceBefore, row.BalanceAfter, row.RelatedBookingID, row.CreatedBy)
	return err
}

// GetOrCreate returns the user's account, creating it on first access and
// applying the lazy weekly reset when 7+ days have elapsed.
func (r *CreditRepo) GetOrCreate(ctx context.Context, userID int) (models.CreditAccount, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.CreditAccount{}, err
	}
	defer tx.Rollback()

	account, err := ensureCreditAccountTx(ctx, tx, userID, time.Now())
	if err != nil {
		return models.CreditAccount{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.CreditAccount{}, err
	}
	return account, nil
}

// AddCredits grants extra credits and records the ledger row. Bonus
// grants survive weekly resets, plain grants only top up the current
// total.
func (r *CreditRepo) AddCredits(ctx context.Context, userID, amount int, isBonus bool, grantedBy int) (models.CreditAccount, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.CreditAccount{}, err
	}
	defer tx.Rollback()

	account, err := ensureCreditAccountTx(ctx, tx, userID, time.Now())
	if err != nil {
		return models.CreditAccount{}, err
	}

	before := account.Available()
	account.TotalCredits += amount
	txType := models.CreditTxAdminGrant
	if isBonus {
		account.BonusCredits += amount
		txType = models.CreditTxBonus
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE credit_accounts SET total_credits=$2, bonus_credits=$3 WHERE user_id=$1`,
		userID, account.TotalCredits, account.BonusCredits); err != nil {
		return models.CreditAccount{}, err
	}

	if err := appendCreditTx(ctx, tx, models.CreditTransaction{
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  account.Available(),
		CreatedBy:     &grantedBy,
	}); err != nil {
		return models.CreditAccount{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.CreditAccount{}, err
	}
	return account, nil
}

// SweepWeeklyResets resets every stale account in one pass. Meant for an
// external scheduler; the lazy on-access reset does not depend on it.
func (r *CreditRepo) SweepWeeklyResets(ctx context.Context) (int, error) {
	var staleIDs []int
	if err := r.db.SelectContext(ctx, &staleIDs,
		`SELECT user_id FROM credit_accounts WHERE last_reset_at <= NOW() - INTERVAL '7 days'`); err != nil {
		return 0, err
	}

	reset := 0
	for _, userID := range staleIDs {
		if _, err := r.GetOrCreate(ctx, userID); err != nil {
			return reset, err
		}
		reset++
	}
	return reset, nil
}

// ListTransactions returns the newest ledger rows for a user.
func (r *CreditRepo) ListTransactions(ctx context.Context, userID, limit int) ([]models.CreditTransaction, error) {
	var rows []models.CreditTransaction
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, type, amount, balance_before, balance_after, related_booking_id, created_by, created_at
         FROM credit_transactions WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	return rows, err
}
