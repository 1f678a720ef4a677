package thrippy

import (
	"crypto/tls"
	"fmt"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Flags defines CLI flags to configure a Thrippy gRPC client. These flags can also
// be set using environment variables and the application's configuration file.
// The client is used only if both the server address and the link ID are specified.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "thrippy-server-addr",
			Usage: "optional Thrippy gRPC server address",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_SERVER_ADDR"),
				toml.TOML("thrippy.server_addr", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "thrippy-server-ca-cert",
			Usage: "Thrippy server's CA certificate file (default: system roots)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_SERVER_CA_CERT"),
				toml.TOML("thrippy.server_ca_cert", configFilePath),
			),
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  "thrippy-link-id",
			Usage: "Thrippy link whose secrets contain configuration values",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_LINK_ID"),
				toml.TOML("thrippy.link_id", configFilePath),
			),
		},
	}
}

// SecureCreds initializes gRPC client credentials for Thrippy, based on CLI flags.
// Connections are insecure only in development mode.
func SecureCreds(cmd *cli.Command) (credentials.TransportCredentials, error) {
	if cmd.Bool("dev") {
		return insecureCreds(), nil
	}

	if path := cmd.String("thrippy-server-ca-cert"); path != "" {
		creds, err := credentials.NewClientTLSFromFile(path, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load Thrippy server CA certificate: %w", err)
		}
		return creds, nil
	}

	return credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12}), nil
}

func insecureCreds() credentials.TransportCredentials {
	return insecure.NewCredentials()
}
