// Package notifications implements the delivery sink the fan-out writes to.
package notifications

import (
	"context"

	"github.com/rs/zerolog/log"

	"communication-service/internal/rabbitmq"
	"communication-service/internal/repositories"
)

// StoreSink persists each notification and publishes a best-effort event for
// downstream delivery surfaces. Delivery is acknowledged once the row is
// durable; a failed publish is logged, never surfaced.
type StoreSink struct {
	repo       repositories.NotificationRepository
	publisher  rabbitmq.Publisher
	routingKey string
}

// NewStoreSink constructs a StoreSink.
func NewStoreSink(repo repositories.NotificationRepository, publisher rabbitmq.Publisher, routingKey string) *StoreSink {
	return &StoreSink{repo: repo, publisher: publisher, routingKey: routingKey}
}

// Deliver stores the notification and announces it on the bus.
func (s *StoreSink) Deliver(ctx context.Context, recipientID int, text string, kind string) error {
	n, err := s.repo.Create(ctx, recipientID, text, kind)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.routingKey, n); err != nil {
			log.Warn().Err(err).Int("notification_id", n.ID).Msg("notification event publish failed")
		}
	}
	return nil
}
