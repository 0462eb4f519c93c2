package service

import (
	"context"
	"log/slog"

	"github.com/macontouch/notebook/internal/domain"
	"github.com/macontouch/notebook/internal/search"
	"github.com/macontouch/notebook/internal/store"
)

// Indexer keeps a search index in step with the catalog.
type Indexer interface {
	Put(e *domain.Entry) error
	Remove(name string) error
	Rebuild(entries []domain.Entry) error
}

type noopIndexer struct{}

func (noopIndexer) Put(*domain.Entry) error      { return nil }
func (noopIndexer) Remove(string) error          { return nil }
func (noopIndexer) Rebuild([]domain.Entry) error { return nil }

// SearchResult is a ranked entry.
type SearchResult struct {
	Entry domain.Entry `json:"entry"`
	Score float64      `json:"score"`
}

// SearchService answers free-text queries over the catalog. It implements
// Indexer so the other services can keep the index current.
type SearchService struct {
	index  *search.Index
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, st *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, store: st, logger: logger}
}

// Put implements Indexer.
func (s *SearchService) Put(e *domain.Entry) error {
	return s.index.Put(e)
}

// Remove implements Indexer.
func (s *SearchService) Remove(name string) error {
	return s.index.Remove(name)
}

// Rebuild implements Indexer.
func (s *SearchService) Rebuild(entries []domain.Entry) error {
	return s.index.Rebuild(entries)
}

// Reindex rebuilds the index from the stored catalog.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	entries, err := s.store.Catalog.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.Rebuild(entries); err != nil {
		return 0, err
	}
	s.logger.Info("search index rebuilt", "entries", len(entries))
	return len(entries), nil
}

// Search returns matching entries, best first. Hits whose entry vanished
// between indexing and lookup are skipped.
func (s *SearchService) Search(ctx context.Context, text, category string, limit int) ([]SearchResult, error) {
	hits, err := s.index.Search(text, category, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []SearchResult{}, nil
	}

	entries, err := s.store.Catalog.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int, len(entries))
	for i := range entries {
		if _, seen := byName[entries[i].Name]; !seen {
			byName[entries[i].Name] = i
		}
	}

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		i, ok := byName[h.Name]
		if !ok {
			s.logger.Debug("search hit without entry", "name", h.Name)
			continue
		}
		results = append(results, SearchResult{Entry: entries[i], Score: h.Score})
	}
	return results, nil
}

// DocumentCount reports how many entries are indexed.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.Count()
}
