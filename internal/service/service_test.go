package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/macontouch/notebook/internal/media/images"
	"github.com/macontouch/notebook/internal/sse"
	"github.com/macontouch/notebook/internal/store"
	"github.com/macontouch/notebook/internal/validation"
)

// recordingEmitter collects emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := event.(sse.Event); ok {
		r.events = append(r.events, e)
	}
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	files, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	st := store.New(files, nil, slog.New(slog.DiscardHandler))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func setupTestCatalog(t *testing.T) (*CatalogService, *store.Store, *recordingEmitter) {
	t.Helper()
	st := setupTestStore(t)
	exports, err := images.NewStorage(t.TempDir(), "exports")
	require.NoError(t, err)
	rec := &recordingEmitter{}
	svc := NewCatalogService(st, validation.New(), rec, nil, exports, englishTag, slog.New(slog.DiscardHandler))
	return svc, st, rec
}

// testImageURI returns a two-tone PNG data URI.
func testImageURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.RGBA{R: 230, G: 120, B: 20, A: 255}
			if y > h/2 {
				c = color.RGBA{R: 10, G: 90, B: 160, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return images.EncodeDataURI("image/png", buf.Bytes())
}
