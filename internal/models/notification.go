package models

import "time"

// Notification kinds emitted by this service.
const (
	NotificationKindMessage = "MESSAGE"
)

// Notification is a per-recipient note created by the message fan-out.
type Notification struct {
	ID          int       `db:"id" json:"id"`
	RecipientID int       `db:"recipient_id" json:"recipient_id"`
	Text        string    `db:"text" json:"text"`
	Kind        string    `db:"kind" json:"kind"`
	Read        bool      `db:"is_read" json:"read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
