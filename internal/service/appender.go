package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"communication-service/internal/models"
	"communication-service/internal/observability"
	"communication-service/internal/repositories"
)

// Fanout is the notification trigger invoked after a durable append.
type Fanout interface {
	NotifyNewMessage(ctx context.Context, room models.ChatRoom, msg models.Message)
}

// Appender appends messages to a room and triggers the notification fan-out.
type Appender struct {
	rooms        repositories.RoomRepository
	messages     repositories.MessageRepository
	fanout       Fanout
	fanoutBudget time.Duration
}

// NewAppender constructs an Appender. fanoutBudget bounds how long a single
// append call may spend on notification fan-out.
func NewAppender(rooms repositories.RoomRepository, messages repositories.MessageRepository, fanout Fanout, fanoutBudget time.Duration) *Appender {
	return &Appender{rooms: rooms, messages: messages, fanout: fanout, fanoutBudget: fanoutBudget}
}

// AppendMessage appends a message to the room's history. Once it returns
// successfully the message is durably part of the room in append order;
// fan-out runs afterwards within its budget and can never undo or fail the
// append.
func (a *Appender) AppendMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, fmt.Errorf("%w: content must not be empty", ErrValidation)
	}

	room, err := a.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return models.Message{}, err
	}
	if !containsUser(room.Participants, senderID) {
		return models.Message{}, fmt.Errorf("%w: sender %d is not a room participant", ErrValidation, senderID)
	}

	msg, err := a.messages.AppendMessage(ctx, roomID, senderID, content)
	if err != nil {
		return models.Message{}, err
	}
	observability.IncMessageAppended()

	// Detached from the request context so a caller hang-up cannot cancel
	// deliveries mid-flight; the budget still bounds the whole fan-out.
	fanoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.fanoutBudget)
	defer cancel()
	a.fanout.NotifyNewMessage(fanoutCtx, room, msg)

	return msg, nil
}

func containsUser(participants []int, userID int) bool {
	for _, id := range participants {
		if id == userID {
			return true
		}
	}
	return false
}
