package providers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/macontouch/notebook/internal/config"
	"github.com/macontouch/notebook/internal/logger"
	"github.com/macontouch/notebook/internal/service"
	"github.com/macontouch/notebook/internal/sse"
	"github.com/macontouch/notebook/internal/store"
	"github.com/macontouch/notebook/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Component("sse"))

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability. Files is the
// backend holding data.json so the watcher can tell our writes from others.
type StoreHandle struct {
	*store.Store
	Files *store.FileBackend
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store. The catalog and version marker
// always live as JSON files; categories and profile use the configured backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	files, err := store.NewFileBackend(cfg.Storage.DataPath)
	if err != nil {
		return nil, err
	}

	kv, err := openKVBackend(cfg.Storage, files, log.Component("store"))
	if err != nil {
		_ = files.Close()
		return nil, err
	}

	log.Info("Store initialized",
		"path", cfg.Storage.DataPath,
		"kv_backend", cfg.Storage.KVBackend,
	)

	return &StoreHandle{Store: store.New(files, kv, log.Component("store")), Files: files}, nil
}

func openKVBackend(cfg config.StorageConfig, files *store.FileBackend, log *slog.Logger) (store.Backend, error) {
	switch cfg.KVBackend {
	case config.BackendBadger:
		kv, err := store.OpenBadger(filepath.Join(cfg.DataPath, "kv"), log)
		if err != nil {
			return nil, fmt.Errorf("open badger backend: %w", err)
		}
		return kv, nil
	case config.BackendSQLite:
		kv, err := sqlite.Open(filepath.Join(cfg.DataPath, "notebook.db"), log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return kv, nil
	default:
		return files, nil
	}
}

// Bootstrap contains the first-run result.
type Bootstrap struct {
	SeededCategories bool
}

// ProvideBootstrap installs the default categories on a fresh data directory.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	log := do.MustInvoke[*logger.Logger](i)
	categories := do.MustInvoke[*service.CategoryService](i)

	seeded, err := categories.SeedDefaults(context.Background())
	if err != nil {
		return nil, fmt.Errorf("seed default categories: %w", err)
	}
	if seeded {
		log.Info("Default categories installed")
	}

	return &Bootstrap{SeededCategories: seeded}, nil
}
