package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"grwcomm/internal/models"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already in use")
)

// CategoryRepository manages a user's message categories.
type CategoryRepository interface {
	Create(ctx context.Context, cat models.MessageCategory) (models.MessageCategory, error)
	GetByID(ctx context.Context, categoryID int) (models.MessageCategory, error)
	ListByOwner(ctx context.Context, ownerID int, activeOnly bool) ([]models.MessageCategory, error)
	Update(ctx context.Context, cat models.MessageCategory) (models.MessageCategory, error)
	Delete(ctx context.Context, ownerID, categoryID int) error
}

// CategoryRepo is a sqlx implementation of CategoryRepository.
type CategoryRepo struct {
	db *sqlx.DB
}

// NewCategoryRepo constructs a CategoryRepo.
func NewCategoryRepo(db *sqlx.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

const categoryColumns = `id, owner_id, name, slot_limit, is_active, created_at`

// Create inserts a category owned by the user.
func (r *CategoryRepo) Create(ctx context.Context, cat models.MessageCategory) (models.MessageCategory, error) {
	var created models.MessageCategory
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO message_categories (owner_id, name, slot_limit, is_active)
         VALUES ($1, $2, $3, $4) RETURNING `+categoryColumns,
		cat.OwnerID, cat.Name, cat.SlotLimit, cat.IsActive,
	).StructScan(&created)
	if isUniqueViolation(err) {
		return models.MessageCategory{}, ErrCategoryExists
	}
	return created, err
}

// GetByID fetches a category.
func (r *CategoryRepo) GetByID(ctx context.Context, categoryID int) (models.MessageCategory, error) {
	var cat models.MessageCategory
	err := r.db.GetContext(ctx, &cat,
		`SELECT `+categoryColumns+` FROM message_categories WHERE id=$1`, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MessageCategory{}, ErrCategoryNotFound
	}
	return cat, err
}

// ListByOwner returns the categories a user exposes.
func (r *CategoryRepo) ListByOwner(ctx context.Context, ownerID int, activeOnly bool) ([]models.MessageCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM message_categories WHERE owner_id=$1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name ASC`
	var cats []models.MessageCategory
	err := r.db.SelectContext(ctx, &cats, query, ownerID)
	return cats, err
}

// Update stores name, slot limit and active flag; scoped to the owner.
func (r *CategoryRepo) Update(ctx context.Context, cat models.MessageCategory) (models.MessageCategory, error) {
	var updated models.MessageCategory
	err := r.db.QueryRowxContext(ctx,
		`UPDATE message_categories SET name=$3, slot_limit=$4, is_active=$5
         WHERE id=$1 AND owner_id=$2 RETURNING `+categoryColumns,
		cat.ID, cat.OwnerID, cat.Name, cat.SlotLimit, cat.IsActive,
	).StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MessageCategory{}, ErrCategoryNotFound
	}
	if isUniqueViolation(err) {
		return models.MessageCategory{}, ErrCategoryExists
	}
	return updated, err
}

// Delete removes a category. Existing bookings cascade away with it;
// messages keep their history with a nulled category reference.
func (r *CategoryRepo) Delete(ctx context.Context, ownerID, categoryID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM message_categories WHERE id=$1 AND owner_id=$2`, categoryID, ownerID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
