package interactions

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"filippo.io/edwards25519"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/tzrikka/doorway/pkg/config"
)

const (
	TimestampHeader = "X-Signature-Timestamp"
	SignatureHeader = "X-Signature-Ed25519"

	PublicKeyPrefix = "APP_PUBLICKEY_"

	// Requests addressed to this host and port are never verified, to allow
	// local testing without real Discord signatures. The host and port are
	// taken from the client-controlled Host header, so a server reachable
	// by untrusted clients should sit behind a proxy that rewrites it.
	localDevHost = "localhost"
	localDevPort = 7071
)

// Verifier authenticates interaction requests with the public key
// of the application that they claim to be addressed to.
type Verifier struct {
	Lookup config.Lookup

	// MaxTimestampSkew rejects requests whose timestamp header is further
	// than this from the current time. Zero disables this check.
	MaxTimestampSkew time.Duration

	// DevMode only lowers the severity of the local development bypass
	// log, which is an error in production.
	DevMode bool

	now func() time.Time
}

// Verify implements
// https://discord.com/developers/docs/interactions/receiving-and-responding#security-and-authorization.
// The body must be the raw request body, already read from r.
func (v *Verifier) Verify(ctx context.Context, r *http.Request, body []byte, appID string) error {
	l := zerolog.Ctx(ctx)

	if IsLocalDev(r) {
		e := l.Error()
		if v.DevMode {
			e = l.Warn()
		}
		e.Str("host", r.Host).Msg("skipping signature verification for local development host")
		return nil
	}

	key, err := v.publicKey(ctx, appID)
	if err != nil {
		l.Warn().Err(err).Msg("bad request: no usable public key")
		return err
	}

	ts, sig := r.Header.Get(TimestampHeader), r.Header.Get(SignatureHeader)
	if ts == "" || sig == "" {
		l.Warn().Bool("has_timestamp", ts != "").Bool("has_signature", sig != "").
			Msg("unauthorized: missing header")
		return ErrMissingAuthHeaders
	}

	if err := v.checkTimestamp(ts); err != nil {
		l.Warn().Err(err).Str("header", TimestampHeader).Str("got", ts).
			Msg("unauthorized: stale header value")
		return err
	}

	// discordgo reads the body from the request itself.
	signed := r.Clone(ctx)
	signed.Body = io.NopCloser(bytes.NewReader(body))
	if !discordgo.VerifyInteraction(signed, key) {
		l.Warn().Str("signature", sig).Str("timestamp", ts).Msg("signature verification failed")
		return ErrInvalidSignature
	}

	return nil
}

// IsLocalDev reports whether the request is addressed to the local
// development host and port, based on its declared Host header.
func IsLocalDev(r *http.Request) bool {
	host, port, err := net.SplitHostPort(r.Host)
	if err != nil {
		return false
	}
	return strings.EqualFold(host, localDevHost) && port == strconv.Itoa(localDevPort)
}

func (v *Verifier) publicKey(ctx context.Context, appID string) (ed25519.PublicKey, error) {
	s := strings.TrimSpace(v.Lookup.Lookup(ctx, PublicKeyPrefix+appID))
	if s == "" {
		return nil, ErrMissingCredential
	}

	key, err := ParsePublicKey(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingCredential, err)
	}

	return key, nil
}

// ParsePublicKey decodes a hex-encoded Ed25519 public key, as displayed
// in the Discord developer portal, and checks that it's a valid curve point.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex encoding: %w", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid key length: got %d bytes, want %d", len(b), ed25519.PublicKeySize)
	}
	if _, err := new(edwards25519.Point).SetBytes(b); err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return ed25519.PublicKey(b), nil
}

func (v *Verifier) checkTimestamp(ts string) error {
	if v.MaxTimestampSkew <= 0 {
		return nil
	}

	secs, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp", ErrInvalidSignature)
	}

	now := time.Now
	if v.now != nil {
		now = v.now
	}

	if d := now().Sub(time.Unix(secs, 0)); d.Abs() > v.MaxTimestampSkew {
		return fmt.Errorf("%w: timestamp is %s away", ErrInvalidSignature, d)
	}

	return nil
}
