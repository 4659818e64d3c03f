package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"communication-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository persists and exposes notifications for a recipient.
type NotificationRepository interface {
	Create(ctx context.Context, recipientID int, text string, kind string) (models.Notification, error)
	ListForRecipient(ctx context.Context, recipientID int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID int, recipientID int) error
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create stores a notification for a recipient.
func (r *NotificationRepo) Create(ctx context.Context, recipientID int, text string, kind string) (models.Notification, error) {
	var n models.Notification
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (recipient_id, text, kind) VALUES ($1, $2, $3)
         RETURNING id, recipient_id, text, kind, is_read, created_at`,
		recipientID, text, kind).
		Scan(&n.ID, &n.RecipientID, &n.Text, &n.Kind, &n.Read, &n.CreatedAt)
	return n, err
}

// ListForRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepo) ListForRecipient(ctx context.Context, recipientID int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.SelectContext(ctx, &notifications,
		`SELECT id, recipient_id, text, kind, is_read, created_at FROM notifications
         WHERE recipient_id=$1 ORDER BY created_at DESC, id DESC`, recipientID)
	return notifications, err
}

// MarkRead flags a notification as read for its recipient.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID int, recipientID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id=$1 AND recipient_id=$2`, notificationID, recipientID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
