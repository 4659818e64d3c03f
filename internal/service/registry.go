// Package service holds the communication core: room lifecycle, message
// appends, notification fan-out, read projections and the access guard. All
// collaborators are constructor-passed interfaces.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"communication-service/internal/directory"
	"communication-service/internal/models"
	"communication-service/internal/observability"
	"communication-service/internal/repositories"
)

// Registry creates chat rooms with per-course deduplication.
type Registry struct {
	rooms   repositories.RoomRepository
	users   directory.UserDirectory
	courses directory.CourseDirectory
}

// NewRegistry constructs a Registry.
func NewRegistry(rooms repositories.RoomRepository, users directory.UserDirectory, courses directory.CourseDirectory) *Registry {
	return &Registry{rooms: rooms, users: users, courses: courses}
}

// CreateRoom creates a room for the given participant set. A room with the
// same participant set in the same course fails with
// repositories.ErrRoomExists; the storage constraint closes the
// check-then-insert race, so concurrent duplicates cannot both succeed.
func (r *Registry) CreateRoom(ctx context.Context, roomType string, participants []int, courseID int, title string) (models.ChatRoom, error) {
	if roomType != models.RoomTypePrivate && roomType != models.RoomTypeGroup {
		return models.ChatRoom{}, fmt.Errorf("%w: unknown room type %q", ErrValidation, roomType)
	}
	normalized := repositories.NormalizeParticipants(participants)
	if len(normalized) == 0 {
		return models.ChatRoom{}, fmt.Errorf("%w: participants must not be empty", ErrValidation)
	}

	exists, err := r.courses.Exists(ctx, courseID)
	if err != nil {
		return models.ChatRoom{}, err
	}
	if !exists {
		return models.ChatRoom{}, directory.ErrCourseNotFound
	}

	names, err := r.users.BulkNames(ctx, normalized)
	if err != nil {
		return models.ChatRoom{}, err
	}
	for _, id := range normalized {
		if _, ok := names[id]; !ok {
			return models.ChatRoom{}, fmt.Errorf("%w: participant %d", directory.ErrUserNotFound, id)
		}
	}

	room, err := r.rooms.CreateRoom(ctx, roomType, courseID, title, normalized)
	if err != nil {
		return models.ChatRoom{}, err
	}
	observability.IncRoomCreated()

	// Back-references are best effort: the room exists once its own record
	// is durable, and the directory adds are idempotent retries.
	for _, id := range room.Participants {
		if err := r.users.AttachChat(ctx, id, room.ID); err != nil {
			log.Warn().Err(err).Int("user_id", id).Int("room_id", room.ID).Msg("user chat back-reference update failed")
		}
	}
	if err := r.courses.AttachChat(ctx, courseID, room.ID); err != nil {
		log.Warn().Err(err).Int("course_id", courseID).Int("room_id", room.ID).Msg("course chat back-reference update failed")
	}

	return room, nil
}
