package thrippy

import (
	"context"
	"errors"
	"net"
	"reflect"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	thrippypb "github.com/tzrikka/thrippy-api/thrippy/v1"
)

type server struct {
	thrippypb.UnimplementedThrippyServiceServer
	resp *thrippypb.GetCredentialsResponse
	err  error
}

func (s *server) GetCredentials(_ context.Context, _ *thrippypb.GetCredentialsRequest) (*thrippypb.GetCredentialsResponse, error) {
	return s.resp, s.err
}

func startServer(t *testing.T, resp *thrippypb.GetCredentialsResponse, err error) string {
	t.Helper()

	lis, lisErr := net.Listen("tcp", "127.0.0.1:0")
	if lisErr != nil {
		t.Fatal(lisErr)
	}

	s := grpc.NewServer()
	thrippypb.RegisterThrippyServiceServer(s, &server{resp: resp, err: err})
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	return lis.Addr().String()
}

func TestLinkSecrets(t *testing.T) {
	tests := []struct {
		name    string
		resp    *thrippypb.GetCredentialsResponse
		respErr error
		want    map[string]string
		wantErr bool
	}{
		{
			name: "nil",
		},
		{
			name:    "grpc_error",
			respErr: errors.New("error"),
			wantErr: true,
		},
		{
			name: "no_secrets",
			resp: thrippypb.GetCredentialsResponse_builder{}.Build(),
		},
		{
			name:    "link_not_found",
			respErr: status.Error(codes.NotFound, "link not found"),
		},
		{
			name: "happy_path",
			resp: thrippypb.GetCredentialsResponse_builder{
				Credentials: map[string]string{"aaa": "111", "bbb": "222"},
			}.Build(),
			want: map[string]string{"aaa": "111", "bbb": "222"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := startServer(t, tt.resp, tt.respErr)

			got, err := LinkSecrets(t.Context(), addr, insecureCreds(), "link ID")
			if (err != nil) != tt.wantErr {
				t.Errorf("LinkSecrets() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LinkSecrets() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		resp    *thrippypb.GetCredentialsResponse
		respErr error
		key     string
		want    string
	}{
		{
			name: "found",
			resp: thrippypb.GetCredentialsResponse_builder{
				Credentials: map[string]string{"APP_PUBLICKEY_123": "abcd"},
			}.Build(),
			key:  "APP_PUBLICKEY_123",
			want: "abcd",
		},
		{
			name: "missing_key",
			resp: thrippypb.GetCredentialsResponse_builder{
				Credentials: map[string]string{"APP_PUBLICKEY_123": "abcd"},
			}.Build(),
			key: "APP_PUBLICKEY_456",
		},
		{
			name:    "link_not_found",
			respErr: status.Error(codes.NotFound, "link not found"),
			key:     "APP_PUBLICKEY_123",
		},
		{
			name:    "grpc_error",
			respErr: errors.New("error"),
			key:     "APP_PUBLICKEY_123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := startServer(t, tt.resp, tt.respErr)

			l, err := NewLookup(addr, insecureCreds(), "link ID")
			if err != nil {
				t.Fatal(err)
			}
			defer l.Close()

			if got := l.Lookup(t.Context(), tt.key); got != tt.want {
				t.Errorf("Lookup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLookupReusesConnection(t *testing.T) {
	addr := startServer(t, thrippypb.GetCredentialsResponse_builder{
		Credentials: map[string]string{"APP_PUBLICKEY_123": "abcd"},
	}.Build(), nil)

	l, err := NewLookup(addr, insecureCreds(), "link ID")
	if err != nil {
		t.Fatal(err)
	}

	for range 3 {
		if got := l.Lookup(t.Context(), "APP_PUBLICKEY_123"); got != "abcd" {
			t.Errorf("Lookup() = %q, want %q", got, "abcd")
		}
	}

	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if got := l.Lookup(t.Context(), "APP_PUBLICKEY_123"); got != "" {
		t.Errorf("Lookup() after Close() = %q, want empty", got)
	}
}
