// Package config resolves named configuration values, such as application
// public keys and canned command responses, from one or more sources.
package config

import (
	"context"
	"os"
	"strings"
)

// Lookup resolves configuration keys to values. Missing keys, as well
// as backend errors (which implementations should log), resolve to "".
type Lookup interface {
	Lookup(ctx context.Context, key string) string
}

// Env looks up keys in the process's environment variables.
type Env struct{}

func (Env) Lookup(_ context.Context, key string) string {
	return os.Getenv(key)
}

// Map looks up keys in a static map.
type Map map[string]string

func (m Map) Lookup(_ context.Context, key string) string {
	return m[key]
}

// Chain looks up keys in multiple sources, in order,
// and returns the first value which isn't blank.
type Chain []Lookup

func (c Chain) Lookup(ctx context.Context, key string) string {
	for _, l := range c {
		if v := l.Lookup(ctx, key); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
