package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"grwcomm/internal/models"
)

// RevelationRepository tracks one-way identity disclosures.
type RevelationRepository interface {
	HasRevealed(ctx context.Context, revealerID, revealedToID int, categoryID *int) (bool, error)
	Reveal(ctx context.Context, revealerID, revealedToID int, categoryID *int) (models.IdentityRevelation, bool, error)
}

// RevelationRepo is a sqlx implementation of RevelationRepository.
type RevelationRepo struct {
	db *sqlx.DB
}

// NewRevelationRepo constructs a RevelationRepo.
func NewRevelationRepo(db *sqlx.DB) *RevelationRepo {
	return &RevelationRepo{db: db}
}

const revelationColumns = `id, revealer_id, revealed_to_id, category_id, revealed_at`

// HasRevealed checks the unique (revealer, revealed_to, category) triple.
func (r *RevelationRepo) HasRevealed(ctx context.Context, revealerID, revealedToID int, categoryID *int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM identity_revelations
          WHERE revealer_id=$1 AND revealed_to_id=$2 AND category_id IS NOT DISTINCT FROM $3)`,
		revealerID, revealedToID, categoryID)
	return exists, err
}

// Reveal records the disclosure once. The second return value is false
// when the triple already existed; revelations are never revoked.
func (r *RevelationRepo) Reveal(ctx context.Context, revealerID, revealedToID int, categoryID *int) (models.IdentityRevelation, bool, error) {
	var existing models.IdentityRevelation
	err := r.db.GetContext(ctx, &existing,
		`SELECT `+revelationColumns+` FROM identity_revelations
         WHERE revealer_id=$1 AND revealed_to_id=$2 AND category_id IS NOT DISTINCT FROM $3`,
		revealerID, revealedToID, categoryID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.IdentityRevelation{}, false, err
	}

	var created models.IdentityRevelation
	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO identity_revelations (revealer_id, revealed_to_id, category_id)
         VALUES ($1, $2, $3) RETURNING `+revelationColumns,
		revealerID, revealedToID, categoryID).StructScan(&created)
	if isUniqueViolation(err) {
		// Lost a race with a concurrent reveal; the row exists now.
		if err := r.db.GetContext(ctx, &existing,
			`SELECT `+revelationColumns+` FROM identity_revelations
             WHERE revealer_id=$1 AND revealed_to_id=$2 AND category_id IS NOT DISTINCT FROM $3`,
			revealerID, revealedToID, categoryID); err != nil {
			return models.IdentityRevelation{}, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return models.IdentityRevelation{}, false, err
	}
	return created, true, nil
}
