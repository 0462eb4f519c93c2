package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/macontouch/notebook/internal/config"
	"github.com/macontouch/notebook/internal/logger"
	"github.com/macontouch/notebook/internal/search"
	"github.com/macontouch/notebook/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index. It stays in memory
// unless SEARCH_PERSIST is set.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := search.Options{Logger: log.Component("search")}
	if cfg.Storage.SearchPersist {
		opts.DataPath = cfg.Storage.DataPath
	}

	index, err := search.NewIndex(opts)
	if err != nil {
		return nil, err
	}

	docCount, _ := index.Count()
	log.Info("Search index initialized", "documents", docCount, "persistent", cfg.Storage.SearchPersist)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.Index, storeHandle.Store, log.Component("search")), nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when its
// document count disagrees with the stored catalog.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()
	entries, err := storeHandle.Catalog.LoadAll(ctx)
	if err != nil {
		log.Warn("Skipping initial reindex, catalog unreadable", "error", err)
		return
	}

	docCount, _ := searchService.DocumentCount()
	if docCount == uint64(len(entries)) {
		return
	}

	log.Info("Search index out of date, triggering reindex",
		"documents", docCount,
		"entries", len(entries),
	)

	go func() {
		if n, err := searchService.Reindex(context.Background()); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			log.Info("Initial search reindex completed", "documents", n)
		}
	}()
}
