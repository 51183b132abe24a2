package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            is_staff BOOLEAN NOT NULL DEFAULT FALSE,
            is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS profiles (
            user_id INT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            bio TEXT NOT NULL DEFAULT '',
            location TEXT NOT NULL DEFAULT '',
            name_visibility TEXT NOT NULL DEFAULT 'full',
            is_verified BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS message_categories (
            id SERIAL PRIMARY KEY,
            owner_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            slot_limit INT NOT NULL DEFAULT 5 CHECK (slot_limit >= 0),
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(owner_id, name)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            sender_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            receiver_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            category_id INT REFERENCES message_categories(id) ON DELETE SET NULL,
            content TEXT NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            read_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (sender_id <> receiver_id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages (sender_id, receiver_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages (receiver_id, is_read, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS slot_bookings (
            id SERIAL PRIMARY KEY,
            sender_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            receiver_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            category_id INT NOT NULL REFERENCES message_categories(id) ON DELETE CASCADE,
            message_id INT REFERENCES messages(id) ON DELETE SET NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            expires_at TIMESTAMPTZ NOT NULL,
            UNIQUE(sender_id, receiver_id, category_id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_capacity ON slot_bookings (receiver_id, category_id, expires_at);`,
		`CREATE TABLE IF NOT EXISTS credit_accounts (
            user_id INT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            total_credits INT NOT NULL DEFAULT 3,
            base_credits INT NOT NULL DEFAULT 3,
            bonus_credits INT NOT NULL DEFAULT 0,
            credits_used_this_week INT NOT NULL DEFAULT 0,
            last_reset_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS credit_transactions (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            type TEXT NOT NULL,
            amount INT NOT NULL,
            balance_before INT NOT NULL,
            balance_after INT NOT NULL,
            related_booking_id INT REFERENCES slot_bookings(id) ON DELETE SET NULL,
            created_by INT REFERENCES users(id) ON DELETE SET NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_credit_tx_user ON credit_transactions (user_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS identity_revelations (
            id SERIAL PRIMARY KEY,
            revealer_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            revealed_to_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            category_id INT REFERENCES message_categories(id) ON DELETE CASCADE,
            revealed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_revelations_triple ON identity_revelations (revealer_id, revealed_to_id, category_id) WHERE category_id IS NOT NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_revelations_pair ON identity_revelations (revealer_id, revealed_to_id) WHERE category_id IS NULL;`,
		`CREATE TABLE IF NOT EXISTS message_reports (
            id SERIAL PRIMARY KEY,
            reporter_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            reported_user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            report_type TEXT NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS chat_blocks (
            id SERIAL PRIMARY KEY,
            reporter_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            blocked_user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            report_id INT REFERENCES message_reports(id) ON DELETE SET NULL,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            reviewed_by_admin BOOLEAN NOT NULL DEFAULT FALSE,
            admin_notes TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(reporter_id, blocked_user_id)
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
