package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"grwcomm/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts user and profile persistence.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, userID int) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	BulkByIDs(ctx context.Context, ids []int) ([]models.User, error)
	GetProfile(ctx context.Context, userID int) (models.Profile, error)
	UpdateProfile(ctx context.Context, profile models.Profile) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, is_staff, is_superuser, is_active, created_at`

// Create inserts the user and an empty profile in one transaction.
func (r *UserRepo) Create(ctx context.Context, user models.User) (models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var created models.User
	if err := tx.QueryRowxContext(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name)
         VALUES ($1, $2, $3, $4, $5) RETURNING `+userColumns,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
	).StructScan(&created); err != nil {
		return models.User{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (user_id) VALUES ($1)`, created.ID); err != nil {
		return models.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}
	return created, nil
}

// GetByID fetches a single user.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByUsername fetches a user by login name.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// BulkByIDs fetches multiple users in one query.
func (r *UserRepo) BulkByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var users []models.User
	err = r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...)
	return users, err
}

// GetProfile fetches the profile for a user.
func (r *UserRepo) GetProfile(ctx context.Context, userID int) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile,
		`SELECT user_id, bio, location, name_visibility, is_verified, created_at, updated_at
         FROM profiles WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrUserNotFound
	}
	return profile, err
}

// UpdateProfile stores the mutable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, profile models.Profile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET bio=$2, location=$3, name_visibility=$4, is_verified=$5, updated_at=NOW()
         WHERE user_id=$1`,
		profile.UserID, profile.Bio, profile.Location, profile.NameVisibility, profile.IsVerified)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
