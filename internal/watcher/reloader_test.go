package watcher

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macontouch/notebook/internal/sse"
)

type stubOwn struct{ own atomic.Bool }

func (s *stubOwn) IsOwnWrite(string) bool { return s.own.Load() }

type countingReindexer struct{ calls atomic.Int32 }

func (c *countingReindexer) Reindex(context.Context) (int, error) {
	c.calls.Add(1)
	return 3, nil
}

type chanEmitter chan any

func (c chanEmitter) Emit(e any) { c <- e }

func TestReloader_HandlesExternalEditsOnly(t *testing.T) {
	w, err := New(slog.New(slog.DiscardHandler), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	own := &stubOwn{}
	reindexer := &countingReindexer{}
	emitted := make(chanEmitter, 4)
	r := NewReloader(w, own, reindexer, emitted, slog.New(slog.DiscardHandler))

	ctx := context.Background()

	own.own.Store(true)
	r.handle(ctx, Event{Type: EventChanged, Path: "/d/data.json"})
	assert.Zero(t, reindexer.calls.Load())

	own.own.Store(false)
	r.handle(ctx, Event{Type: EventChanged, Path: "/d/data.json"})
	assert.Equal(t, int32(1), reindexer.calls.Load())

	select {
	case e := <-emitted:
		ev, ok := e.(sse.Event)
		require.True(t, ok)
		assert.Equal(t, sse.EventCatalogReloaded, ev.Type)
		assert.Equal(t, sse.CatalogReloadedData{Total: 3}, ev.Data)
	case <-time.After(time.Second):
		t.Fatal("no event emitted")
	}

	// Removal always reloads even if the checker would claim ownership.
	own.own.Store(true)
	r.handle(ctx, Event{Type: EventRemoved, Path: "/d/data.json"})
	assert.Equal(t, int32(2), reindexer.calls.Load())
}

func TestReloader_RunStopsWithContext(t *testing.T) {
	w, err := New(slog.New(slog.DiscardHandler), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	r := NewReloader(w, nil, &countingReindexer{}, nil, slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
