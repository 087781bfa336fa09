// Package events publishes disclosure lifecycle events to Redis Streams so
// other consumers (dashboards, downstream feeds) can react to new filings.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/idxwatch/internal/logger"
	"github.com/jonesrussell/idxwatch/internal/models"
)

// StreamName is the Redis stream disclosure events are appended to.
const StreamName = "idxwatch:disclosures"

// EventTypeDisclosureCreated marks a newly ingested disclosure.
const EventTypeDisclosureCreated = "disclosure.created"

// asyncPublishTimeout is the context timeout for async publish operations.
const asyncPublishTimeout = 5 * time.Second

// DisclosureEvent is the payload appended to the stream.
type DisclosureEvent struct {
	EventID   uuid.UUID         `json:"event_id"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   models.Disclosure `json:"payload"`
}

// Publisher publishes disclosure events. A nil *Publisher is a valid no-op,
// so callers never need to branch on whether Redis is configured.
type Publisher struct {
	client *redis.Client
	log    logger.Logger
}

func NewPublisher(client *redis.Client, log logger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{
		client: client,
		log:    log,
	}
}

// Publish appends the event to the stream.
func (p *Publisher) Publish(ctx context.Context, event DisclosureEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]any{
			"event": string(payload),
		},
	})
	if publishErr := result.Err(); publishErr != nil {
		return fmt.Errorf("publish to stream: %w", publishErr)
	}

	p.log.Debug("Published disclosure event",
		logger.String("event_type", event.EventType),
		logger.String("disclosure_id", event.Payload.ID),
		logger.String("stream_id", result.Val()),
	)
	return nil
}

// PublishCreated publishes a disclosure.created event asynchronously.
// Best effort: failures are logged, never surfaced to the ingest path.
func (p *Publisher) PublishCreated(d models.Disclosure) {
	if p == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		event := DisclosureEvent{
			EventType: EventTypeDisclosureCreated,
			Payload:   d,
		}
		if err := p.Publish(ctx, event); err != nil {
			p.log.Error("Async event publish failed",
				logger.String("disclosure_id", d.ID),
				logger.Error(err),
			)
		}
	}()
}
