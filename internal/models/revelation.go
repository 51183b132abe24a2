package models

import "time"

// IdentityRevelation records that a user disclosed their real name to a
// counterpart within one category scope. One-directional and permanent.
type IdentityRevelation struct {
	ID           int       `db:"id" json:"id"`
	RevealerID   int       `db:"revealer_id" json:"revealer_id"`
	RevealedToID int       `db:"revealed_to_id" json:"revealed_to_id"`
	CategoryID   *int      `db:"category_id" json:"category_id,omitempty"`
	RevealedAt   time.Time `db:"revealed_at" json:"revealed_at"`
}
