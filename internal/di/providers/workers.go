package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/macontouch/notebook/internal/config"
	"github.com/macontouch/notebook/internal/logger"
	"github.com/macontouch/notebook/internal/service"
	"github.com/macontouch/notebook/internal/watcher"
)

// FileWatcherHandle wraps the data directory watcher with shutdown capability.
// Watcher is nil when watching is disabled.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher watches data.json for edits made by other processes and
// reloads the search index when one lands.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Storage.WatchData {
		log.Info("Data directory watching disabled by configuration")
		return &FileWatcherHandle{}, nil
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	w, err := watcher.New(log.Component("watcher"), watcher.Options{
		Files: []string{"data.json"},
	})
	if err != nil {
		return nil, err
	}

	if err := w.Watch(storeHandle.Files.Dir()); err != nil {
		_ = w.Stop()
		return nil, err
	}

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("File watcher error", "error", err)
		}
	}()

	reloader := watcher.NewReloader(w, storeHandle.Files, searchService, sseHandle.Manager, log.Component("watcher"))
	go reloader.Run(ctx)

	log.Info("File watcher started", "path", storeHandle.Files.Dir())

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}
