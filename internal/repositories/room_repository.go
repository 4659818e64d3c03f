package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"communication-service/internal/models"
)

var (
	ErrRoomNotFound = errors.New("chat room not found")
	ErrRoomExists   = errors.New("chat room already exists")
)

// pgUniqueViolation is the Postgres error code raised by the
// UNIQUE(course_id, participants_key) constraint.
const pgUniqueViolation = "23505"

// RoomRepository abstracts chat room persistence.
type RoomRepository interface {
	CreateRoom(ctx context.Context, roomType string, courseID int, title string, participants []int) (models.ChatRoom, error)
	GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error)
	IsParticipant(ctx context.Context, roomID int, userID int) (bool, error)
	ListRoomsForUser(ctx context.Context, userID int) ([]models.RoomSummary, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// NormalizeParticipants collapses duplicates and sorts the participant ids.
func NormalizeParticipants(ids []int) []int {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// ParticipantsKey builds the normalized key enforcing per-course room
// uniqueness. Callers must pass an already normalized slice.
func ParticipantsKey(normalized []int) string {
	parts := make([]string, 0, len(normalized))
	for _, id := range normalized {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, "-")
}

// CreateRoom creates a room and its participant rows atomically. A second
// room with the same participant set in the same course fails with
// ErrRoomExists, including under concurrent creation attempts.
func (r *RoomRepo) CreateRoom(ctx context.Context, roomType string, courseID int, title string, participants []int) (models.ChatRoom, error) {
	normalized := NormalizeParticipants(participants)
	key := ParticipantsKey(normalized)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ChatRoom{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var room models.ChatRoom
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO chat_rooms (type, course_id, title, participants_key) VALUES ($1, $2, $3, $4)
         RETURNING id, type, course_id, title, participants_key, created_at`,
		roomType, courseID, title, key).
		Scan(&room.ID, &room.Type, &room.CourseID, &room.Title, &room.ParticipantsKey, &room.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			err = ErrRoomExists
		}
		return models.ChatRoom{}, err
	}

	for _, id := range normalized {
		if _, err = tx.ExecContext(ctx, `INSERT INTO room_participants (room_id, user_id) VALUES ($1, $2)`, room.ID, id); err != nil {
			return models.ChatRoom{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.ChatRoom{}, err
	}
	room.Participants = normalized
	return room, nil
}

// GetRoom fetches a room by id, including its participant set.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID int) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room,
		`SELECT id, type, course_id, title, participants_key, created_at FROM chat_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, ErrRoomNotFound
	}
	if err != nil {
		return models.ChatRoom{}, err
	}

	if err := r.db.SelectContext(ctx, &room.Participants,
		`SELECT user_id FROM room_participants WHERE room_id=$1 ORDER BY user_id ASC`, roomID); err != nil {
		return models.ChatRoom{}, err
	}
	return room, nil
}

// IsParticipant checks whether a user belongs to the room.
func (r *RoomRepo) IsParticipant(ctx context.Context, roomID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM room_participants WHERE room_id=$1 AND user_id=$2)`, roomID, userID)
	return exists, err
}

// ListRoomsForUser returns every room containing the user, each annotated
// with its last message. Rooms with recent messages come first; rooms with
// no messages yet sort last by creation time.
func (r *RoomRepo) ListRoomsForUser(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	type roomRow struct {
		ID           int            `db:"id"`
		Type         string         `db:"type"`
		CourseID     int            `db:"course_id"`
		Title        string         `db:"title"`
		CreatedAt    sql.NullTime   `db:"created_at"`
		MsgID        sql.NullInt64  `db:"msg_id"`
		MsgSenderID  sql.NullInt64  `db:"msg_sender_id"`
		MsgContent   sql.NullString `db:"msg_content"`
		MsgCreatedAt sql.NullTime   `db:"msg_created_at"`
	}

	var rows []roomRow
	query := `SELECT r.id, r.type, r.course_id, r.title, r.created_at,
            lm.id AS msg_id, lm.sender_id AS msg_sender_id, lm.content AS msg_content, lm.created_at AS msg_created_at
        FROM chat_rooms r
        INNER JOIN room_participants rp ON rp.room_id = r.id AND rp.user_id=$1
        LEFT JOIN LATERAL (
            SELECT id, sender_id, content, created_at FROM messages m WHERE m.room_id = r.id ORDER BY m.id DESC LIMIT 1
        ) lm ON TRUE
        ORDER BY lm.created_at DESC NULLS LAST, r.created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	roomIDs := make([]int, 0, len(rows))
	for _, row := range rows {
		roomIDs = append(roomIDs, row.ID)
	}
	participantsByRoom, err := r.participantsForRooms(ctx, roomIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.RoomSummary, 0, len(rows))
	for _, row := range rows {
		summary := models.RoomSummary{
			RoomID:       row.ID,
			Type:         row.Type,
			CourseID:     row.CourseID,
			Title:        row.Title,
			Participants: participantsByRoom[row.ID],
			CreatedAt:    row.CreatedAt.Time,
		}
		if row.MsgID.Valid {
			summary.LastMessage = &models.Message{
				ID:        int(row.MsgID.Int64),
				RoomID:    row.ID,
				SenderID:  int(row.MsgSenderID.Int64),
				Content:   row.MsgContent.String,
				CreatedAt: row.MsgCreatedAt.Time,
			}
		}
		result = append(result, summary)
	}
	return result, nil
}

func (r *RoomRepo) participantsForRooms(ctx context.Context, roomIDs []int) (map[int][]int, error) {
	byRoom := make(map[int][]int, len(roomIDs))
	if len(roomIDs) == 0 {
		return byRoom, nil
	}

	var rows []struct {
		RoomID int `db:"room_id"`
		UserID int `db:"user_id"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT room_id, user_id FROM room_participants WHERE room_id = ANY($1) ORDER BY user_id ASC`,
		pq.Array(roomIDs))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		byRoom[row.RoomID] = append(byRoom[row.RoomID], row.UserID)
	}
	return byRoom, nil
}
