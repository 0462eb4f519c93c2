package watcher

import (
	"context"
	"log/slog"

	"github.com/macontouch/notebook/internal/sse"
	"github.com/macontouch/notebook/internal/store"
)

// OwnWriteChecker tells whether a document file still holds our last write.
type OwnWriteChecker interface {
	IsOwnWrite(key string) bool
}

// Reindexer rebuilds derived state from the stored catalog.
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// Reloader reacts to external edits of the catalog document by rebuilding
// the search index and announcing a catalog.reloaded event.
type Reloader struct {
	watcher   *Watcher
	own       OwnWriteChecker
	reindexer Reindexer
	emitter   store.EventEmitter
	logger    *slog.Logger
}

// NewReloader creates a reloader consuming w's events.
func NewReloader(w *Watcher, own OwnWriteChecker, reindexer Reindexer, emitter store.EventEmitter, logger *slog.Logger) *Reloader {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	return &Reloader{watcher: w, own: own, reindexer: reindexer, emitter: emitter, logger: logger}
}

// Run handles events until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-r.watcher.Errors():
			r.logger.Warn("file watcher error", "error", err)
		case event := <-r.watcher.Events():
			r.handle(ctx, event)
		}
	}
}

func (r *Reloader) handle(ctx context.Context, event Event) {
	if event.Type == EventChanged && r.own != nil && r.own.IsOwnWrite(store.KeyCatalog) {
		r.logger.Debug("ignoring own catalog write", "path", event.Path)
		return
	}

	total, err := r.reindexer.Reindex(ctx)
	if err != nil {
		r.logger.Error("catalog reload failed", "path", event.Path, "event", event.Type.String(), "error", err)
		return
	}

	r.logger.Info("catalog reloaded after external edit", "path", event.Path, "event", event.Type.String(), "entries", total)
	r.emitter.Emit(sse.NewCatalogReloadedEvent(total))
}
