// Package thrippy looks up configuration values in the secrets
// of a [Thrippy] link, such as application public keys.
//
// [Thrippy]: https://github.com/tzrikka/thrippy
package thrippy

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	thrippypb "github.com/tzrikka/thrippy-api/thrippy/v1"
)

const (
	timeout = 3 * time.Second
)

// Connection creates a gRPC client connection to the given Thrippy server address.
// It supports both secure and insecure connections, based on the given credentials.
func Connection(addr string, creds credentials.TransportCredentials) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
}

// LinkSecrets returns the saved secrets of a given Thrippy link.
// This function reports gRPC errors, but if the link is not found it returns nothing.
func LinkSecrets(ctx context.Context, grpcAddr string, creds credentials.TransportCredentials, linkID string) (map[string]string, error) {
	conn, err := Connection(grpcAddr, creds)
	if err != nil {
		zerolog.Ctx(ctx).Error().Stack().Err(err).Send()
		return nil, err
	}
	defer conn.Close()

	return linkSecrets(ctx, thrippypb.NewThrippyServiceClient(conn), linkID)
}

func linkSecrets(ctx context.Context, c thrippypb.ThrippyServiceClient, linkID string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.GetCredentials(ctx, thrippypb.GetCredentialsRequest_builder{
		LinkId: proto.String(linkID),
	}.Build())
	if err != nil {
		if status.Code(err) != codes.NotFound {
			zerolog.Ctx(ctx).Error().Stack().Err(err).Send()
			return nil, err
		}
		return nil, nil
	}

	return resp.GetCredentials(), nil
}

// Lookup resolves configuration keys to secrets of a single Thrippy link.
// Secrets are fetched on every lookup, so rotations take effect immediately,
// but all lookups share a single gRPC connection.
type Lookup struct {
	conn   *grpc.ClientConn
	client thrippypb.ThrippyServiceClient
	linkID string
}

// NewLookup creates the gRPC client connection of a [Lookup].
// It doesn't connect yet, so it doesn't fail if the server is unavailable.
func NewLookup(addr string, creds credentials.TransportCredentials, linkID string) (*Lookup, error) {
	conn, err := Connection(addr, creds)
	if err != nil {
		return nil, err
	}
	return &Lookup{conn: conn, client: thrippypb.NewThrippyServiceClient(conn), linkID: linkID}, nil
}

func (t *Lookup) Lookup(ctx context.Context, key string) string {
	m, err := linkSecrets(ctx, t.client, t.linkID)
	if err != nil {
		return "" // Already logged in [linkSecrets].
	}
	return m[key]
}

func (t *Lookup) Close() error {
	return t.conn.Close()
}
