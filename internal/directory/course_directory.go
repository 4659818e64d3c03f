package directory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrCourseNotFound = errors.New("course not found")

// CourseDirectory resolves course facts and owns the course-side chat
// back-references.
type CourseDirectory interface {
	Exists(ctx context.Context, courseID int) (bool, error)
	ResolveTitle(ctx context.Context, courseID int) (string, error)
	AttachChat(ctx context.Context, courseID int, roomID int) error
}

// CourseDir is a sqlx implementation of CourseDirectory.
type CourseDir struct {
	db *sqlx.DB
}

// NewCourseDir constructs a CourseDir.
func NewCourseDir(db *sqlx.DB) *CourseDir {
	return &CourseDir{db: db}
}

// Exists reports whether the course is known to the platform.
func (d *CourseDir) Exists(ctx context.Context, courseID int) (bool, error) {
	var exists bool
	err := d.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM courses WHERE id=$1)`, courseID)
	return exists, err
}

// ResolveTitle returns the course title.
func (d *CourseDir) ResolveTitle(ctx context.Context, courseID int) (string, error) {
	var title string
	err := d.db.GetContext(ctx, &title, `SELECT title FROM courses WHERE id=$1`, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCourseNotFound
	}
	return title, err
}

// AttachChat records the room in the course's chat list. Repeated calls are
// no-ops.
func (d *CourseDir) AttachChat(ctx context.Context, courseID int, roomID int) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO course_chats (course_id, room_id) VALUES ($1, $2) ON CONFLICT (course_id, room_id) DO NOTHING`,
		courseID, roomID)
	return err
}
