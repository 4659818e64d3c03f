package service

import (
	"context"

	"communication-service/internal/repositories"
)

// Guard is the authorization primitive gating room access.
type Guard struct {
	rooms repositories.RoomRepository
}

// NewGuard constructs a Guard.
func NewGuard(rooms repositories.RoomRepository) *Guard {
	return &Guard{rooms: rooms}
}

// IsParticipant reports whether the user belongs to the room. Unknown rooms
// fail with repositories.ErrRoomNotFound.
func (g *Guard) IsParticipant(ctx context.Context, roomID int, userID int) (bool, error) {
	room, err := g.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	return containsUser(room.Participants, userID), nil
}
