package http

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/doorway/pkg/config"
	"github.com/tzrikka/doorway/pkg/etcd"
	"github.com/tzrikka/doorway/pkg/thrippy"
)

// Start initializes Doorway's HTTP server, backend clients, and logging.
func Start(ctx context.Context, cmd *cli.Command) error {
	initLog(cmd.Bool("dev"))

	s, err := newHTTPServer(ctx, cmd)
	if err != nil {
		log.Err(err).Send()
		return err
	}
	defer s.close()

	return s.run()
}

// initLog initializes the logger for the Doorway server,
// based on whether it's running in development mode or not.
func initLog(devMode bool) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if !devMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Caller().Logger()
		return
	}

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05.000",
	}).With().Caller().Logger()

	log.Warn().Msg("********** DEV MODE - UNSAFE IN PRODUCTION! **********")
}

// configLookup chains all the configured sources of configuration values:
// environment variables first, then an optional file, etcd, and Thrippy.
// It also returns backend clients that need to be closed on shutdown.
func configLookup(cmd *cli.Command) (config.Chain, []io.Closer, error) {
	chain := config.Chain{config.Env{}}
	var closers []io.Closer

	if path := cmd.String("config-values-file"); path != "" {
		m, err := config.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", path).Int("keys", len(m)).Msg("loaded config values file")
		chain = append(chain, m)
	}

	c, err := etcd.Client(cmd)
	if err != nil {
		return nil, nil, err
	}
	if c != nil {
		log.Info().Strs("endpoints", c.Endpoints()).Msg("looking up config values in etcd")
		chain = append(chain, etcd.NewLookup(c, cmd.String("etcd-key-prefix")))
		closers = append(closers, c)
	}

	addr, linkID := cmd.String("thrippy-server-addr"), cmd.String("thrippy-link-id")
	if addr != "" && linkID != "" {
		creds, err := thrippy.SecureCreds(cmd)
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		t, err := thrippy.NewLookup(addr, creds, linkID)
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		log.Info().Str("addr", addr).Str("link_id", linkID).Msg("looking up config values in Thrippy")
		chain = append(chain, t)
		closers = append(closers, t)
	}

	return chain, closers, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close backend client")
		}
	}
}
