package models

import "time"

// Room types supported by the platform.
const (
	RoomTypePrivate = "private"
	RoomTypeGroup   = "group"
)

// ChatRoom represents a chat room scoped to a course.
type ChatRoom struct {
	ID       int       `db:"id" json:"id"`
	Type     string    `db:"type" json:"type"`
	CourseID int       `db:"course_id" json:"course_id"`
	Title    string    `db:"title" json:"title,omitempty"`
	// ParticipantsKey is the normalized participant set (sorted, deduped,
	// dash-joined ids) backing the per-course uniqueness constraint.
	ParticipantsKey string    `db:"participants_key" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`

	// Participants is loaded from room_participants; not a table column.
	Participants []int `db:"-" json:"participants"`
}

// RoomSummary is the API-friendly list view of a room for a user.
type RoomSummary struct {
	RoomID       int       `json:"room_id"`
	Type         string    `json:"type"`
	CourseID     int       `json:"course_id"`
	Title        string    `json:"title,omitempty"`
	Participants []int     `json:"participants"`
	LastMessage  *Message  `json:"last_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NamedUser pairs a user id with its resolved display name.
type NamedUser struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MessageView is a message annotated with the sender's display name.
type MessageView struct {
	ID         int       `json:"id"`
	SenderID   int       `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// RoomView is the fully resolved read view of a room.
type RoomView struct {
	RoomID       int           `json:"room_id"`
	Type         string        `json:"type"`
	Title        string        `json:"title,omitempty"`
	CourseID     int           `json:"course_id"`
	CourseTitle  string        `json:"course_title"`
	Participants []NamedUser   `json:"participants"`
	Messages     []MessageView `json:"messages"`
	CreatedAt    time.Time     `json:"created_at"`
}
