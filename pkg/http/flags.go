package http

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

const (
	DefaultPort        = 14480
	DefaultPath        = "/interactions"
	DefaultMaxBodySize = 1 << 20 // 1 MiB.
)

// Flags defines CLI flags to configure the HTTP server. These flags can also
// be set using environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "webhook-port",
			Usage: "local port number for the HTTP webhook server",
			Value: DefaultPort,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("DOORWAY_WEBHOOK_PORT"),
				toml.TOML("http.webhook_port", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "webhook-path",
			Usage: "URL path of the interactions endpoint",
			Value: DefaultPath,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("DOORWAY_WEBHOOK_PATH"),
				toml.TOML("http.webhook_path", configFilePath),
			),
		},
		&cli.IntFlag{
			Name:  "max-body-size",
			Usage: "maximum size of request bodies, in bytes",
			Value: DefaultMaxBodySize,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("DOORWAY_MAX_BODY_SIZE"),
				toml.TOML("http.max_body_size", configFilePath),
			),
		},
		&cli.DurationFlag{
			Name:  "max-timestamp-skew",
			Usage: "reject signed requests with older or newer timestamps (0 = disabled)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("DOORWAY_MAX_TIMESTAMP_SKEW"),
				toml.TOML("http.max_timestamp_skew", configFilePath),
			),
		},
	}
}
