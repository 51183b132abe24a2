package models

import "time"

// Weekly credit scheme constants.
const (
	BaseWeeklyCredits = 3
	CreditResetPeriod = 7 * 24 * time.Hour
)

// Credit transaction types recorded in the ledger.
const (
	CreditTxWeeklyReset = "weekly_reset"
	CreditTxUse         = "use"
	CreditTxAdminGrant  = "admin_grant"
	CreditTxBonus       = "bonus"
)

// CreditAccount is the per-user weekly message quota.
type CreditAccount struct {
	UserID              int       `db:"user_id" json:"user_id"`
	TotalCredits        int       `db:"total_credits" json:"total_credits"`
	BaseCredits         int       `db:"base_credits" json:"base_credits"`
	BonusCredits        int       `db:"bonus_credits" json:"bonus_credits"`
	CreditsUsedThisWeek int       `db:"credits_used_this_week" json:"credits_used_this_week"`
	LastResetAt         time.Time `db:"last_reset_at" json:"last_reset_at"`
}

// Available returns the credits still spendable this week, never negative.
func (a CreditAccount) Available() int {
	avail := a.TotalCredits - a.CreditsUsedThisWeek
	if avail < 0 {
		return 0
	}
	return avail
}

// NeedsReset reports whether the lazy weekly reset is due.
func (a CreditAccount) NeedsReset(now time.Time) bool {
	return now.Sub(a.LastResetAt) >= CreditResetPeriod
}

// CreditTransaction is an append-only ledger row. Never mutated or deleted.
type CreditTransaction struct {
	ID               int       `db:"id" json:"id"`
	UserID           int       `db:"user_id" json:"user_id"`
	Type             string    `db:"type" json:"type"`
	Amount           int       `db:"amount" json:"amount"`
	BalanceBefore    int       `db:"balance_before" json:"balance_before"`
	BalanceAfter     int       `db:"balance_after" json:"balance_after"`
	RelatedBookingID *int      `db:"related_booking_id" json:"related_booking_id,omitempty"`
	CreatedBy        *int      `db:"created_by" json:"created_by,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
