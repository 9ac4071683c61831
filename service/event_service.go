package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultIngestEventsKey = "model-ingest-events"

type eventPusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// IngestEvent is appended to the events list for every new catalog row.
type IngestEvent struct {
	ModelID      string    `json:"model_id"`
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Architecture string    `json:"architecture"`
	StorageKey   string    `json:"storage_key"`
	IngestedAt   time.Time `json:"ingested_at"`
}

// EventPublisher pushes ingest events onto a redis list. A nil publisher or
// one without a client drops events silently.
type EventPublisher struct {
	client eventPusher
	key    string
	logger *slog.Logger
}

func NewEventPublisher(client eventPusher, key string, logger *slog.Logger) *EventPublisher {
	if strings.TrimSpace(key) == "" {
		key = DefaultIngestEventsKey
	}
	return &EventPublisher{
		client: client,
		key:    key,
		logger: serviceLogger(logger).With("service", "EventPublisher"),
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event IngestEvent) error {
	if p == nil || p.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal ingest event failed: %w", err)
	}
	if err := p.client.RPush(ctx, p.key, payload).Err(); err != nil {
		return fmt.Errorf("rpush %s failed: %w", p.key, err)
	}
	p.logger.Debug("ingest event published", "key", p.key, "model_id", event.ModelID)
	return nil
}
