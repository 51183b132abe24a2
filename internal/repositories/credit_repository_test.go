package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"grwcomm/internal/models"
)

func TestGetOrCreateAppliesWeeklyReset(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCreditRepo(db)

	stale := models.CreditAccount{
		UserID:              7,
		TotalCredits:        5,
		BaseCredits:         3,
		BonusCredits:        2,
		CreditsUsedThisWeek: 3,
		LastResetAt:         time.Now().Add(-8 * 24 * time.Hour),
	}

	mock.ExpectBegin()
	expectEnsureAccount(mock, stale)
	mock.ExpectExec(`SET total_credits=\$2, base_credits=\$3`).
		WithArgs(7, 5, 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Before the reset 2 of 5 were spendable; after it all 5 are, so the
	// ledger records +3.
	mock.ExpectExec(`INSERT INTO credit_transactions`).
		WithArgs(7, models.CreditTxWeeklyReset, 3, 2, 5, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	account, err := repo.GetOrCreate(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, models.BaseWeeklyCredits+stale.BonusCredits, account.TotalCredits)
	require.Equal(t, 2, account.BonusCredits)
	require.Equal(t, 0, account.CreditsUsedThisWeek)
	require.Equal(t, 5, account.Available())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateFreshAccountUntouched(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCreditRepo(db)

	current := freshAccount(7)
	current.CreditsUsedThisWeek = 1

	mock.ExpectBegin()
	expectEnsureAccount(mock, current)
	mock.ExpectCommit()

	account, err := repo.GetOrCreate(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 2, account.Available())
	require.Equal(t, 1, account.CreditsUsedThisWeek)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCreditsBonusGrant(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCreditRepo(db)

	current := freshAccount(7)
	current.CreditsUsedThisWeek = 1

	mock.ExpectBegin()
	expectEnsureAccount(mock, current)
	mock.ExpectExec(`UPDATE credit_accounts SET total_credits=\$2, bonus_credits=\$3`).
		WithArgs(7, 8, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO credit_transactions`).
		WithArgs(7, models.CreditTxBonus, 5, 2, 7, nil, 9).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	account, err := repo.AddCredits(context.Background(), 7, 5, true, 9)
	require.NoError(t, err)
	require.Equal(t, 8, account.TotalCredits)
	require.Equal(t, 5, account.BonusCredits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCreditsPlainGrantLeavesBonusAlone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCreditRepo(db)

	mock.ExpectBegin()
	expectEnsureAccount(mock, freshAccount(7))
	mock.ExpectExec(`UPDATE credit_accounts SET total_credits=\$2, bonus_credits=\$3`).
		WithArgs(7, 4, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO credit_transactions`).
		WithArgs(7, models.CreditTxAdminGrant, 1, 3, 4, nil, 9).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	account, err := repo.AddCredits(context.Background(), 7, 1, false, 9)
	require.NoError(t, err)
	require.Equal(t, 4, account.TotalCredits)
	require.Equal(t, 0, account.BonusCredits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepWeeklyResetsTouchesOnlyStaleAccounts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCreditRepo(db)

	mock.ExpectQuery(`SELECT user_id FROM credit_accounts WHERE last_reset_at`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))

	stale := models.CreditAccount{
		UserID:       7,
		TotalCredits: 3,
		BaseCredits:  3,
		LastResetAt:  time.Now().Add(-9 * 24 * time.Hour),
	}
	mock.ExpectBegin()
	expectEnsureAccount(mock, stale)
	mock.ExpectExec(`SET total_credits=\$2, base_credits=\$3`).
		WithArgs(7, 3, 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO credit_transactions`).
		WithArgs(7, models.CreditTxWeeklyReset, 0, 3, 3, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	n, err := repo.SweepWeeklyResets(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
