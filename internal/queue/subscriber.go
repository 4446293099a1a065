package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type SubscriberConfig struct {
	Prefix string        // Stream name prefix, one stream per session
	Block  time.Duration // How long one XREAD blocks before a keepalive
	Count  int64         // Max entries per read
}

// EventHandler receives each event in stream order. Returning an error stops Tail.
type EventHandler func(ctx context.Context, ev StatusEvent) error

// IdleHandler is called when a blocking read returns nothing.
type IdleHandler func(ctx context.Context) error

type Subscriber struct {
	client *redis.Client
	cfg    SubscriberConfig
}

func NewSubscriber(client *redis.Client, cfg SubscriberConfig) *Subscriber {
	if cfg.Block <= 0 {
		cfg.Block = 25 * time.Second
	}
	if cfg.Count <= 0 {
		cfg.Count = 100
	}
	return &Subscriber{client: client, cfg: cfg}
}

// Tail follows one session's stream from lastID ("0" replays, "$" only new
// entries) until ctx is done or a handler fails.
func (s *Subscriber) Tail(ctx context.Context, sessionID int64, lastID string, onEvent EventHandler, onIdle IdleHandler) error {
	if lastID == "" {
		lastID = "$"
	}
	stream := StreamName(s.cfg.Prefix, sessionID)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := s.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{stream, lastID},
			Block:   s.cfg.Block,
			Count:   s.cfg.Count,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				if onIdle != nil {
					if err := onIdle(ctx); err != nil {
						return err
					}
				}
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read status stream: %w", err)
		}

		for _, streamRes := range res {
			for _, msg := range streamRes.Messages {
				lastID = msg.ID
				ev, err := decodeEvent(msg.ID, msg.Values)
				if err != nil {
					slog.WarnContext(ctx, "skipping malformed status event", "stream", stream, "error", err)
					continue
				}
				if err := onEvent(ctx, ev); err != nil {
					return err
				}
			}
		}
	}
}
