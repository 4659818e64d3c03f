package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"communication-service/internal/directory"
	"communication-service/internal/models"
	"communication-service/internal/observability"
)

// unknownUserName is the placeholder used when a display name cannot be
// resolved.
const unknownUserName = "Unknown User"

// NotificationSink delivers a single notification to a recipient.
type NotificationSink interface {
	Deliver(ctx context.Context, recipientID int, text string, kind string) error
}

// NotificationFanout delivers one notification per non-sender participant of
// a new message. Deliveries run with bounded parallelism and a per-delivery
// timeout; one recipient failing never blocks the rest.
type NotificationFanout struct {
	users           directory.UserDirectory
	sink            NotificationSink
	maxParallel     int
	deliveryTimeout time.Duration
}

// NewNotificationFanout constructs a NotificationFanout.
func NewNotificationFanout(users directory.UserDirectory, sink NotificationSink, maxParallel int, deliveryTimeout time.Duration) *NotificationFanout {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &NotificationFanout{users: users, sink: sink, maxParallel: maxParallel, deliveryTimeout: deliveryTimeout}
}

// NotifyNewMessage notifies every room participant except the sender.
func (f *NotificationFanout) NotifyNewMessage(ctx context.Context, room models.ChatRoom, msg models.Message) {
	senderName, err := f.users.ResolveName(ctx, msg.SenderID)
	if err != nil {
		log.Warn().Err(err).Int("sender_id", msg.SenderID).Msg("sender name resolution failed, using placeholder")
		senderName = unknownUserName
	}

	title := room.Title
	if title == "" {
		title = "the course chat"
	}
	text := fmt.Sprintf("%s sent a message in %s.", senderName, title)

	sem := make(chan struct{}, f.maxParallel)
	var wg sync.WaitGroup
	for _, participant := range room.Participants {
		if participant == msg.SenderID {
			continue
		}
		wg.Add(1)
		go func(recipient int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			deliverCtx, cancel := context.WithTimeout(ctx, f.deliveryTimeout)
			defer cancel()
			if err := f.sink.Deliver(deliverCtx, recipient, text, models.NotificationKindMessage); err != nil {
				observability.IncNotificationFailure()
				log.Warn().Err(err).Int("recipient_id", recipient).Int("room_id", room.ID).Int("message_id", msg.ID).Msg("notification delivery failed")
				return
			}
			observability.IncNotificationDelivered()
		}(participant)
	}
	wg.Wait()
}
