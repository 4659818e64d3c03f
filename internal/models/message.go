package models

import "time"

// Message represents a single entry in a room's append-only history.
type Message struct {
	ID        int       `db:"id" json:"id"`
	RoomID    int       `db:"room_id" json:"room_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RoomEvent is broadcasted through websockets.
type RoomEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}
