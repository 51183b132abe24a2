package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"grwcomm/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, senderID, receiverID int, categoryID *int, content string) (models.Message, error)
	GetConversation(ctx context.Context, userID, peerID int, categoryID *int, limit int) ([]models.Message, error)
	ListConversations(ctx context.Context, userID int) ([]models.ConversationSummary, error)
	MarkConversationRead(ctx context.Context, userID, peerID int, categoryID *int) (int64, error)
	MarkMessageRead(ctx context.Context, messageID, receiverID int) error
	UnreadCount(ctx context.Context, userID int) (int, error)
	HasConversation(ctx context.Context, userA, userB int, categoryID *int) (bool, error)
	CountFrom(ctx context.Context, senderID, receiverID int, categoryID *int) (int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, sender_id, receiver_id, category_id, content, is_read, read_at, created_at`

// Create stores a direct message outside the booking path (replies).
func (r *MessageRepo) Create(ctx context.Context, senderID, receiverID int, categoryID *int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, category_id, content)
         VALUES ($1, $2, $3, $4) RETURNING `+messageColumns,
		senderID, receiverID, categoryID, content,
	).StructScan(&msg)
	return msg, err
}

// GetConversation returns messages between two users within one category
// scope in chronological order. A nil category selects uncategorized
// messages only.
func (r *MessageRepo) GetConversation(ctx context.Context, userID, peerID int, categoryID *int, limit int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM (
            SELECT ` + messageColumns + ` FROM messages
            WHERE ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))
              AND category_id IS NOT DISTINCT FROM $3
            ORDER BY created_at DESC
            LIMIT $4
        ) latest ORDER BY created_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userID, peerID, categoryID, limit)
	return msgs, err
}

// ListConversations groups a user's messages by peer and category and
// returns the latest message plus the unread count for each group.
func (r *MessageRepo) ListConversations(ctx context.Context, userID int) ([]models.ConversationSummary, error) {
	query := `SELECT m.peer_id, m.category_id, m.last_message, m.last_at,
            (SELECT COUNT(*) FROM messages u
              WHERE u.receiver_id=$1 AND u.sender_id=m.peer_id AND u.is_read=FALSE
                AND u.category_id IS NOT DISTINCT FROM m.category_id) AS unread_count
        FROM (
            SELECT DISTINCT ON (peer_id, category_id)
                   CASE WHEN sender_id=$1 THEN receiver_id ELSE sender_id END AS peer_id,
                   category_id,
                   content AS last_message,
                   created_at AS last_at
            FROM messages
            WHERE sender_id=$1 OR receiver_id=$1
            ORDER BY peer_id, category_id, created_at DESC
        ) m
        ORDER BY m.last_at DESC`
	var summaries []models.ConversationSummary
	err := r.db.SelectContext(ctx, &summaries, query, userID)
	return summaries, err
}

// MarkConversationRead flags all inbound messages in the scope as read and
// returns how many changed.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, userID, peerID int, categoryID *int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read=TRUE, read_at=NOW()
         WHERE receiver_id=$1 AND sender_id=$2 AND is_read=FALSE
           AND category_id IS NOT DISTINCT FROM $3`,
		userID, peerID, categoryID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkMessageRead flags one message as read; only the receiver may do so.
func (r *MessageRepo) MarkMessageRead(ctx context.Context, messageID, receiverID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read=TRUE, read_at=NOW()
         WHERE id=$1 AND receiver_id=$2 AND is_read=FALSE`,
		messageID, receiverID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM messages WHERE id=$1 AND receiver_id=$2)`,
			messageID, receiverID); err != nil {
			return err
		}
		if !exists {
			return ErrMessageNotFound
		}
	}
	return nil
}

// UnreadCount returns the user's total unread message count.
func (r *MessageRepo) UnreadCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE receiver_id=$1 AND is_read=FALSE`, userID)
	return count, err
}

// HasConversation reports whether any message exists between the pair in
// the given category scope, in either direction.
func (r *MessageRepo) HasConversation(ctx context.Context, userA, userB int, categoryID *int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM messages
          WHERE ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))
            AND category_id IS NOT DISTINCT FROM $3)`,
		userA, userB, categoryID)
	return exists, err
}

// CountFrom counts messages one user has sent to another in the scope.
func (r *MessageRepo) CountFrom(ctx context.Context, senderID, receiverID int, categoryID *int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages
         WHERE sender_id=$1 AND receiver_id=$2 AND category_id IS NOT DISTINCT FROM $3`,
		senderID, receiverID, categoryID)
	return count, err
}
