package models

import "time"

// BookingTTL is how long a slot booking holds its slot.
const BookingTTL = 72 * time.Hour

// DenyReason codes returned to callers when a send is refused. These are
// expected, user-recoverable outcomes, not errors.
type DenyReason string

const (
	ReasonAlreadySent     DenyReason = "ALREADY_SENT"
	ReasonSlotsFull       DenyReason = "SLOTS_FULL"
	ReasonInvalidCategory DenyReason = "INVALID_CATEGORY"
	ReasonNoCredits       DenyReason = "NO_CREDITS"
	ReasonSelfMessage     DenyReason = "SELF_MESSAGE"
	ReasonBlocked         DenyReason = "BLOCKED"
	ReasonNotFound        DenyReason = "NOT_FOUND"
)

// Decision is the outcome of a send permission check.
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
}

// Allow is the positive decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny builds a refusal with the given reason.
func Deny(reason DenyReason) Decision { return Decision{Allowed: false, Reason: reason} }

// SlotBooking reserves one of a receiver's category slots for a sender.
// At most one active booking may exist per (sender, receiver, category).
type SlotBooking struct {
	ID         int       `db:"id" json:"id"`
	SenderID   int       `db:"sender_id" json:"sender_id"`
	ReceiverID int       `db:"receiver_id" json:"receiver_id"`
	CategoryID int       `db:"category_id" json:"category_id"`
	MessageID  *int      `db:"message_id" json:"message_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
}

// IsExpired reports whether the booking no longer holds a slot. A booking
// expiring exactly at now is already expired: active means expires_at > now.
func (b SlotBooking) IsExpired(now time.Time) bool {
	return !b.ExpiresAt.After(now)
}

// SlotAvailability describes one category's capacity from the point of
// view of a prospective sender.
type SlotAvailability struct {
	Category       MessageCategory `json:"category"`
	TotalSlots     int             `json:"total_slots"`
	UsedSlots      int             `json:"used_slots"`
	AvailableSlots int             `json:"available_slots"`
	Status         string          `json:"status"`
}

// Availability statuses.
const (
	SlotStatusAvailable   = "available"
	SlotStatusFull        = "full"
	SlotStatusAlreadySent = "already_sent"
)
