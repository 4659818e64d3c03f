package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"communication-service/internal/models"
)

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	AppendMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error)
	ListMessages(ctx context.Context, roomID int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// AppendMessage appends a message to the room's history. A per-room advisory
// lock held for the duration of the transaction serializes concurrent
// appends, so the stored order is exactly the append order.
func (r *MessageRepo) AppendMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(roomID)); err != nil {
		return models.Message{}, err
	}

	var msg models.Message
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO messages (room_id, sender_id, content) VALUES ($1, $2, $3)
         RETURNING id, room_id, sender_id, content, created_at`,
		roomID, senderID, content).
		Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.CreatedAt)
	if err != nil {
		return models.Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns the room's messages in append order.
func (r *MessageRepo) ListMessages(ctx context.Context, roomID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, room_id, sender_id, content, created_at FROM messages WHERE room_id=$1 ORDER BY id ASC`, roomID)
	return msgs, err
}
