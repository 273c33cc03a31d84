// Package events publishes job lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	TypeJobDiscovered    = "job.discovered"
	TypeJobStatusChanged = "job.status_changed"
	TypeJobScored        = "job.scored"

	DefaultChannel = "job-research.events"
)

// Event is the envelope sent to subscribers.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	JobID      string    `json:"job_id"`
	Company    string    `json:"company,omitempty"`
	Title      string    `json:"title,omitempty"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	Score      *int      `json:"score,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// New returns an event with a fresh id and the current time.
func New(eventType, jobID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		JobID:     jobID,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher delivers events. Delivery failures are never returned to callers.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Redis publishes events as JSON on a pub/sub channel.
type Redis struct {
	client  redisPublisher
	closer  io.Closer
	channel string
	logger  *zap.Logger
}

// NewRedis parses redisURL, verifies connectivity and returns a publisher on channel.
func NewRedis(ctx context.Context, redisURL, channel string, logger *zap.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	r := NewRedisWithClient(client, channel, logger)
	r.closer = client
	return r, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client redisPublisher, channel string, logger *zap.Logger) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, channel: channel, logger: logger}
}

func (r *Redis) Publish(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		r.logger.Warn("failed to encode event", zap.String("type", e.Type), zap.Error(err))
		return
	}

	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.Warn("failed to publish event",
			zap.String("type", e.Type),
			zap.String("job_id", e.JobID),
			zap.Error(err),
		)
		return
	}

	r.logger.Debug("event published", zap.String("type", e.Type), zap.String("id", e.ID))
}

// Close releases the connection opened by NewRedis.
func (r *Redis) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
