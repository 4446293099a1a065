package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// maxStreamLen caps each session stream. Trimming is approximate.
const maxStreamLen = 1000

// Publisher records status events for other readers (dashboards, the CLI).
type Publisher interface {
	Publish(ctx context.Context, ev StatusEvent) error
	Close() error
}

type redisPublisher struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewRedisPublisher(client *redis.Client, prefix string, logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisPublisher{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (p *redisPublisher) Publish(ctx context.Context, ev StatusEvent) error {
	stream := StreamName(p.prefix, ev.SessionID)
	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: ev.fields(),
	}).Err(); err != nil {
		return fmt.Errorf("publish status event: %w", err)
	}

	p.logger.DebugContext(ctx, "published status event", "stream", stream, "type", ev.Type, "job_id", ev.JobID, "status", ev.Status)
	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}

// NopPublisher drops every event. Used when no Redis is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, StatusEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }
