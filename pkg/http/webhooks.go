package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/doorway/pkg/config"
	"github.com/tzrikka/doorway/pkg/interactions"
	"github.com/tzrikka/doorway/pkg/queue"
)

const (
	timeout = 3 * time.Second

	contentLengthHeader = "Content-Length"
	contentTypeHeader   = "Content-Type"
	contentTypeJSON     = "application/json; charset=utf-8"
)

type httpServer struct {
	httpPort    int    // To initialize the HTTP server.
	path        string // Of the interactions endpoint.
	maxBodySize int64

	lookup   config.Lookup
	verifier *interactions.Verifier
	queue    queue.Queue
	closers  []io.Closer
}

func newHTTPServer(ctx context.Context, cmd *cli.Command) (*httpServer, error) {
	maxBodySize := int64(cmd.Int("max-body-size"))
	if err := checkMaxBodySize(maxBodySize); err != nil {
		return nil, err
	}

	lookup, closers, err := configLookup(cmd)
	if err != nil {
		return nil, err
	}

	q, err := queue.New(ctx, cmd)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	log.Info().Str("backend", cmd.String("queue-backend")).Msg("initialized interactions queue")

	return &httpServer{
		httpPort:    cmd.Int("webhook-port"),
		path:        cmd.String("webhook-path"),
		maxBodySize: maxBodySize,

		lookup: lookup,
		verifier: &interactions.Verifier{
			Lookup:           lookup,
			MaxTimestampSkew: cmd.Duration("max-timestamp-skew"),
			DevMode:          cmd.Bool("dev"),
		},
		queue:   q,
		closers: append(closers, q),
	}, nil
}

// run starts an HTTP server to expose the interactions webhook.
// This is blocking, to keep the Doorway server running.
func (s *httpServer) run() error {
	server := &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(s.httpPort)),
		Handler:      s.routes(),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	log.Info().Msgf("HTTP server listening on port %d, path %s", s.httpPort, s.path)
	err := server.ListenAndServe()
	if err != nil {
		log.Err(err).Send()
		return err
	}

	return nil
}

func (s *httpServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get(s.path, s.webhookHandler)
	r.Post(s.path, s.webhookHandler)
	r.Get("/healthz", healthHandler)

	return r
}

func (s *httpServer) close() {
	closeAll(s.closers)
}

// checkMaxBodySize rejects limits that [readBody] can't enforce.
func checkMaxBodySize(n int64) error {
	if n <= 0 || n == math.MaxInt64 {
		return fmt.Errorf("invalid max body size: %d bytes", n)
	}
	return nil
}

// webhookHandler authenticates and answers Discord interactions. Commands
// without a canned response, or with a passthru flag, are also queued.
func (s *httpServer) webhookHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	l := log.With().Str("http_method", r.Method).Str("url_path", r.URL.EscapedPath()).
		Str("request_id", middleware.GetReqID(r.Context())).Logger()
	l.Info().Msg("received HTTP request")

	body, ok := readBody(w, r, s.maxBodySize, l)
	if !ok {
		// Logging and HTTP status code setting already done in [readBody].
		return
	}
	l.Trace().Bytes("body", body).Send()

	i, err := interactions.ParsePayload(l, body)
	if err != nil {
		w.WriteHeader(interactions.StatusCode(err))
		return
	}

	l = l.With().Str("application_id", i.ApplicationID).Int("interaction_type", i.Type).Logger()
	ctx := l.WithContext(r.Context())

	if err := s.verifier.Verify(ctx, r, body, i.ApplicationID); err != nil {
		w.WriteHeader(interactions.StatusCode(err))
		return
	}

	// https://discord.com/developers/docs/interactions/receiving-and-responding#receiving-an-interaction
	if i.Type == interactions.InteractionPing {
		l.Debug().Msg("replied to ping")
		respond(w, l, interactions.Pong())
		return
	}

	res := interactions.Resolve(ctx, s.lookup, i.Data)
	respond(w, l, res.Response)

	if res.Queue {
		s.enqueue(ctx, l, i.ApplicationID, body)
	}
}

// readBody reads the request body, up to the given size limit.
func readBody(w http.ResponseWriter, r *http.Request, limit int64, l zerolog.Logger) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		l.Warn().Err(err).Msg("failed to read request body")
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}

	if int64(len(body)) > limit {
		l.Warn().Int64("limit", limit).Msg("bad request: payload too large")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return nil, false
	}

	return body, true
}

// respond writes and flushes the full response, so the client
// doesn't wait for anything else that the handler does afterwards.
func respond(w http.ResponseWriter, l zerolog.Logger, resp interactions.Response) {
	b, err := json.Marshal(resp)
	if err != nil {
		l.Err(err).Msg("failed to encode HTTP response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.Header().Set(contentLengthHeader, strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		l.Err(err).Msg("failed to write HTTP response")
		return
	}

	if err := http.NewResponseController(w).Flush(); err != nil {
		l.Warn().Err(err).Msg("failed to flush HTTP response")
	}
	l.Debug().Int("response_type", resp.Type).Msg("sent HTTP response")
}

// enqueue forwards the raw request body to the queue. Failures are logged,
// but do not affect the HTTP response, which was already flushed in [respond].
func (s *httpServer) enqueue(ctx context.Context, l zerolog.Logger, appID string, body []byte) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	m := queue.NewMessage(appID, body)
	if err := s.queue.Enqueue(ctx, m); err != nil {
		l.Err(err).Str("message_id", m.ID).Msg("failed to queue interaction")
		return
	}

	l.Debug().Str("message_id", m.ID).Msg("queued interaction")
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
