package relay

import (
	"context"
	"log"
	"time"

	"github.com/srgjo27/concert-reservation/internal/core/ports"
)

// OutboxRelay drains persisted event records to the broker. A message is only
// marked published after the broker accepts it, so a crash between the two
// replays the message: consumers get at-least-once delivery.
type OutboxRelay struct {
	outbox    ports.OutboxRepository
	publisher ports.EventPublisher
	logger    *log.Logger
	batchSize int
}

func NewOutboxRelay(outbox ports.OutboxRepository, publisher ports.EventPublisher, logger *log.Logger) *OutboxRelay {
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		batchSize: 100,
	}
}

func (r *OutboxRelay) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Printf("Outbox relay started: forwarding events every %s...", interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("Outbox relay stopped.")
			return
		case <-ticker.C:
			r.RelayOnce(ctx)
		}
	}
}

// RelayOnce forwards one batch. Per-message failures are logged and skipped;
// the row stays unpublished and is retried on the next pass.
func (r *OutboxRelay) RelayOnce(ctx context.Context) {
	messages, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		r.logger.Printf("Error fetching outbox messages: %v", err)
		return
	}

	for _, msg := range messages {
		if err := r.publisher.Publish(ctx, msg.Topic, msg.Payload); err != nil {
			r.logger.Printf("Failed to publish outbox message %s: %v", msg.ID, err)
			continue
		}

		if err := r.outbox.MarkPublished(ctx, msg.ID); err != nil {
			r.logger.Printf("Failed to mark outbox message %s published: %v", msg.ID, err)
		}
	}
}
