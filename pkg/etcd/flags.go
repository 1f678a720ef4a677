package etcd

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

const (
	DefaultKeyPrefix = "/doorway/"
)

// Flags defines CLI flags to configure an etcd gRPC client. These flags can also
// be set using environment variables and the application's configuration file.
// The client is used only if at least one endpoint URL is specified.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "etcd-endpoint-urls",
			Usage: "optional etcd server endpoint URLs (e.g. http://localhost:2379)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ETCD_ENDPOINTS"),
				toml.TOML("etcd.endpoint_urls", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "etcd-key-prefix",
			Usage: "prefix of configuration keys in etcd",
			Value: DefaultKeyPrefix,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ETCD_KEY_PREFIX"),
				toml.TOML("etcd.key_prefix", configFilePath),
			),
		},
	}
}
