// Package etcd looks up configuration values in an etcd cluster.
package etcd

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	timeout = 3 * time.Second
)

// Lookup resolves configuration keys to the values of
// etcd keys with the same name, under a common prefix.
type Lookup struct {
	kv     clientv3.KV
	prefix string
}

func NewLookup(kv clientv3.KV, prefix string) *Lookup {
	return &Lookup{kv: kv, prefix: prefix}
}

// Client initializes an etcd client based on the given CLI flags.
// It returns nil if no endpoint URLs are configured.
func Client(cmd *cli.Command) (*clientv3.Client, error) {
	urls := cmd.StringSlice("etcd-endpoint-urls")
	if len(urls) == 0 {
		return nil, nil
	}

	return clientv3.New(clientv3.Config{
		Endpoints:   urls,
		DialTimeout: timeout,
	})
}

func (e *Lookup) Lookup(ctx context.Context, key string) string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := e.kv.Get(ctx, e.prefix+key)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", e.prefix+key).Msg("failed to get etcd key")
		return ""
	}
	if len(resp.Kvs) == 0 {
		return ""
	}

	return string(resp.Kvs[0].Value)
}
