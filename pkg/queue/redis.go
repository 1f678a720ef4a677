package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisURL     = "redis://localhost:6379"
	DefaultStreamPrefix = "doorway:interactions:"
)

// Redis is a queue backend which appends messages to Redis streams,
// one stream per application. Workers consume them with XREADGROUP.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis connects to a Redis server, and checks the connection.
func NewRedis(ctx context.Context, url, streamPrefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{rdb: rdb, prefix: streamPrefix}, nil
}

// StreamKey returns the name of an application's Redis stream.
func (q *Redis) StreamKey(appID string) string {
	return q.prefix + appID
}

func (q *Redis) Enqueue(ctx context.Context, m Message) error {
	if m.ApplicationID == "" {
		return ErrNoApplicationID
	}

	err := q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.StreamKey(m.ApplicationID),
		Values: map[string]any{
			"id":          m.ID,
			"body":        string(m.Body),
			"received_at": m.ReceivedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add message to Redis stream: %w", err)
	}

	return nil
}

func (q *Redis) Close() error {
	return q.rdb.Close()
}
