package config

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// Flags defines CLI flags to configure additional sources of configuration
// values, beyond environment variables. These flags can also be set using
// environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config-values-file",
			Usage: "optional YAML file with public keys and canned command responses",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("DOORWAY_CONFIG_VALUES_FILE"),
				toml.TOML("config.values_file", configFilePath),
			),
			TakesFile: true,
		},
	}
}
