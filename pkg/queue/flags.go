package queue

import (
	"context"
	"fmt"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

const (
	BackendNone   = "none"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"

	DefaultSQLitePath = "doorway-queue.db"
)

// Flags defines CLI flags to select and configure a queue backend. These flags can
// also be set using environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "queue-backend",
			Usage: fmt.Sprintf("queue for interactions that need asynchronous handling (%q, %q, or %q)", BackendSQLite, BackendRedis, BackendNone),
			Value: BackendSQLite,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("DOORWAY_QUEUE_BACKEND"),
				toml.TOML("queue.backend", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "queue-sqlite-path",
			Usage: "SQLite database file of the queue",
			Value: DefaultSQLitePath,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("DOORWAY_QUEUE_SQLITE_PATH"),
				toml.TOML("queue.sqlite_path", configFilePath),
			),
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  "queue-redis-url",
			Usage: "Redis server URL of the queue",
			Value: DefaultRedisURL,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("REDIS_URL"),
				toml.TOML("queue.redis_url", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "queue-redis-stream-prefix",
			Usage: "prefix of Redis stream names, followed by the application ID",
			Value: DefaultStreamPrefix,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("DOORWAY_QUEUE_REDIS_STREAM_PREFIX"),
				toml.TOML("queue.redis_stream_prefix", configFilePath),
			),
		},
	}
}

// New initializes the queue backend that is selected by CLI flags.
func New(ctx context.Context, cmd *cli.Command) (Queue, error) {
	switch b := cmd.String("queue-backend"); b {
	case BackendNone:
		return Discard{}, nil
	case BackendRedis:
		return NewRedis(ctx, cmd.String("queue-redis-url"), cmd.String("queue-redis-stream-prefix"))
	case BackendSQLite:
		return OpenSQLite(ctx, cmd.String("queue-sqlite-path"))
	default:
		return nil, fmt.Errorf("unsupported queue backend: %q", b)
	}
}
