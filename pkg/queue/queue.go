// Package queue forwards raw interaction payloads to asynchronous workers,
// partitioned by the Discord application they are addressed to.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

var ErrNoApplicationID = errors.New("message has no application ID")

// Message is a raw interaction payload, as received over HTTP.
type Message struct {
	ID            string
	ApplicationID string
	Body          []byte
	ReceivedAt    time.Time
}

func NewMessage(appID string, body []byte) Message {
	return Message{
		ID:            shortuuid.New(),
		ApplicationID: appID,
		Body:          body,
		ReceivedAt:    time.Now().UTC(),
	}
}

// Queue is implemented by all the supported queue backends.
type Queue interface {
	Enqueue(ctx context.Context, m Message) error
	Close() error
}

// Discard drops all messages. It is used when no queue backend is configured.
type Discard struct{}

func (Discard) Enqueue(_ context.Context, m Message) error {
	if m.ApplicationID == "" {
		return ErrNoApplicationID
	}
	return nil
}

func (Discard) Close() error {
	return nil
}
