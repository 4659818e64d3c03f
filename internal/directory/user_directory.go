// Package directory exposes the user and course collaborators the
// communication core depends on. The platform keeps both in the shared
// database, so the adapters here are plain sqlx lookups, but the core only
// ever sees the interfaces.
package directory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrUserNotFound = errors.New("user not found")

// UserDirectory resolves user facts and owns the user-side chat
// back-references.
type UserDirectory interface {
	ResolveName(ctx context.Context, userID int) (string, error)
	BulkNames(ctx context.Context, userIDs []int) (map[int]string, error)
	AttachChat(ctx context.Context, userID int, roomID int) error
}

// UserDir is a sqlx implementation of UserDirectory.
type UserDir struct {
	db *sqlx.DB
}

// NewUserDir constructs a UserDir.
func NewUserDir(db *sqlx.DB) *UserDir {
	return &UserDir{db: db}
}

// ResolveName returns the user's display name.
func (d *UserDir) ResolveName(ctx context.Context, userID int) (string, error) {
	var name string
	err := d.db.GetContext(ctx, &name, `SELECT name FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return name, err
}

// BulkNames resolves several users in one query. Unknown ids are simply
// absent from the result.
func (d *UserDir) BulkNames(ctx context.Context, userIDs []int) (map[int]string, error) {
	names := make(map[int]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}

	var rows []struct {
		ID   int    `db:"id"`
		Name string `db:"name"`
	}
	err := d.db.SelectContext(ctx, &rows, `SELECT id, name FROM users WHERE id = ANY($1)`, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// AttachChat records the room in the user's chat list. Repeated calls are
// no-ops.
func (d *UserDir) AttachChat(ctx context.Context, userID int, roomID int) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO user_chats (user_id, room_id) VALUES ($1, $2) ON CONFLICT (user_id, room_id) DO NOTHING`,
		userID, roomID)
	return err
}
