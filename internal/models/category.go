package models

import "time"

// MessageCategory is a named slot pool a receiver exposes (Coffee Chat,
// Mentorship, ...). Each category is owned by the receiving user; the name
// is unique per owner.
type MessageCategory struct {
	ID        int       `db:"id" json:"id"`
	OwnerID   int       `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	SlotLimit int       `db:"slot_limit" json:"slot_limit"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReceiverLimit returns the slot capacity the category grants to a given
// receiver. Categories only count for their owner and while active.
func (c MessageCategory) ReceiverLimit(receiverID int) int {
	if c.OwnerID != receiverID || !c.IsActive {
		return 0
	}
	return c.SlotLimit
}
