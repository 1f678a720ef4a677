package queue

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	q, err := OpenSQLite(t.Context(), filepath.Join(t.TempDir(), "queue", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })

	return q
}

func TestSQLiteRoundTrip(t *testing.T) {
	q := openTestSQLite(t)
	ctx := t.Context()

	m1 := NewMessage("app1", []byte(`{"id":"1"}`))
	m2 := NewMessage("app1", []byte(`{"id":"2"}`))
	m2.ReceivedAt = m1.ReceivedAt.Add(time.Second)
	m3 := NewMessage("app2", []byte(`{"id":"3"}`))

	for _, m := range []Message{m2, m1, m3} {
		require.NoError(t, q.Enqueue(ctx, m))
	}

	got, err := q.Dequeue(ctx, "app1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m1.ID, got.ID)
	assert.Equal(t, "app1", got.ApplicationID)
	assert.Equal(t, m1.Body, got.Body)
	assert.True(t, m1.ReceivedAt.Equal(got.ReceivedAt))

	got, err = q.Dequeue(ctx, "app1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m2.ID, got.ID)

	got, err = q.Dequeue(ctx, "app1")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = q.Dequeue(ctx, "app2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m3.ID, got.ID)
}

func TestSQLiteConcurrentEnqueue(t *testing.T) {
	q := openTestSQLite(t)
	ctx := t.Context()

	const n = 200
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- q.Enqueue(ctx, NewMessage("app", []byte(fmt.Sprint(i))))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	count := 0
	for {
		m, err := q.Dequeue(ctx, "app")
		require.NoError(t, err)
		if m == nil {
			break
		}
		count++
	}
	assert.Equal(t, n, count)
}

func TestSQLiteDedupe(t *testing.T) {
	q := openTestSQLite(t)
	ctx := t.Context()
	body := []byte(`{"id":"1"}`)

	require.NoError(t, q.Enqueue(ctx, NewMessage("app1", body)))
	require.NoError(t, q.Enqueue(ctx, NewMessage("app1", body)))
	require.NoError(t, q.Enqueue(ctx, NewMessage("app2", body)))

	got, err := q.Dequeue(ctx, "app1")
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = q.Dequeue(ctx, "app1")
	require.NoError(t, err)
	assert.Nil(t, got, "duplicate body should be stored only once per application")

	got, err = q.Dequeue(ctx, "app2")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSQLiteAck(t *testing.T) {
	q := openTestSQLite(t)
	ctx := t.Context()

	m := NewMessage("app1", []byte("body"))
	require.NoError(t, q.Enqueue(ctx, m))
	assert.Error(t, q.Ack(ctx, m.ID), "unclaimed messages can't be acked")

	got, err := q.Dequeue(ctx, "app1")
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, q.Ack(ctx, got.ID))
	assert.Error(t, q.Ack(ctx, got.ID))

	// Acked messages are deleted, so the same body can be queued again.
	require.NoError(t, q.Enqueue(ctx, NewMessage("app1", []byte("body"))))
	got, err = q.Dequeue(ctx, "app1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSQLiteNoApplicationID(t *testing.T) {
	q := openTestSQLite(t)
	assert.ErrorIs(t, q.Enqueue(t.Context(), NewMessage("", []byte("body"))), ErrNoApplicationID)
}

func TestOpenSQLiteEmptyPath(t *testing.T) {
	_, err := OpenSQLite(t.Context(), "")
	assert.Error(t, err)
}

func TestDedupeKey(t *testing.T) {
	a := DedupeKey([]byte("a"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, DedupeKey([]byte("a")))
	assert.NotEqual(t, a, DedupeKey([]byte("b")))
}
