package models

import "time"

// Message is a direct message between two users, optionally scoped to a
// category. Immutable after creation except for the read flags.
type Message struct {
	ID         int        `db:"id" json:"id"`
	SenderID   int        `db:"sender_id" json:"sender_id"`
	ReceiverID int        `db:"receiver_id" json:"receiver_id"`
	CategoryID *int       `db:"category_id" json:"category_id,omitempty"`
	Content    string     `db:"content" json:"content"`
	IsRead     bool       `db:"is_read" json:"is_read"`
	ReadAt     *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ConversationSummary is one row of a user's inbox: the latest exchange
// with a peer within one category scope.
type ConversationSummary struct {
	PeerID      int       `db:"peer_id" json:"peer_id"`
	CategoryID  *int      `db:"category_id" json:"category_id,omitempty"`
	LastMessage string    `db:"last_message" json:"last_message"`
	LastAt      time.Time `db:"last_at" json:"last_at"`
	UnreadCount int       `db:"unread_count" json:"unread_count"`
}

// ConversationEvent is broadcast through websockets to both participants.
type ConversationEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}
