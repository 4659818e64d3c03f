package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"communication-service/internal/directory"
	"communication-service/internal/models"
	"communication-service/internal/repositories"
)

// Projector assembles read views of rooms. It never mutates stored state.
type Projector struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	users    directory.UserDirectory
	courses  directory.CourseDirectory
}

// NewProjector constructs a Projector.
func NewProjector(rooms repositories.RoomRepository, messages repositories.MessageRepository, users directory.UserDirectory, courses directory.CourseDirectory) *Projector {
	return &Projector{rooms: rooms, messages: messages, users: users, courses: courses}
}

// RoomHistory returns the room's full history with participant and sender
// display names and the course title resolved. A name that cannot be
// resolved becomes a placeholder instead of failing the whole view.
func (p *Projector) RoomHistory(ctx context.Context, roomID int) (models.RoomView, error) {
	room, err := p.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return models.RoomView{}, err
	}

	msgs, err := p.messages.ListMessages(ctx, roomID)
	if err != nil {
		return models.RoomView{}, err
	}

	ids := make([]int, 0, len(room.Participants))
	seen := map[int]struct{}{}
	for _, id := range room.Participants {
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			ids = append(ids, m.SenderID)
		}
	}

	names, err := p.users.BulkNames(ctx, ids)
	if err != nil {
		return models.RoomView{}, err
	}

	courseTitle, err := p.courses.ResolveTitle(ctx, room.CourseID)
	if err != nil {
		if !errors.Is(err, directory.ErrCourseNotFound) {
			return models.RoomView{}, err
		}
		log.Warn().Int("course_id", room.CourseID).Msg("course title resolution failed, using placeholder")
		courseTitle = "Unknown Course"
	}

	view := models.RoomView{
		RoomID:      room.ID,
		Type:        room.Type,
		Title:       room.Title,
		CourseID:    room.CourseID,
		CourseTitle: courseTitle,
		CreatedAt:   room.CreatedAt,
	}
	for _, id := range room.Participants {
		view.Participants = append(view.Participants, models.NamedUser{ID: id, Name: displayName(names, id)})
	}
	view.Messages = make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		view.Messages = append(view.Messages, models.MessageView{
			ID:         m.ID,
			SenderID:   m.SenderID,
			SenderName: displayName(names, m.SenderID),
			Content:    m.Content,
			CreatedAt:  m.CreatedAt,
		})
	}
	return view, nil
}

// RoomsForUser returns every room containing the user, annotated with its
// last message. Rooms with recent activity come first.
func (p *Projector) RoomsForUser(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	return p.rooms.ListRoomsForUser(ctx, userID)
}

func displayName(names map[int]string, userID int) string {
	if name, ok := names[userID]; ok {
		return name
	}
	return unknownUserName
}
