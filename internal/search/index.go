// Package search maintains a full-text index over catalog entries.
package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/macontouch/notebook/internal/domain"
)

// DefaultLimit caps results when the caller passes no limit.
const DefaultLimit = 20

// Index wraps a Bleve index keyed by entry name.
// All methods are safe for concurrent use.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex // Exclusive during Rebuild
}

// Options configures the index. An empty DataPath keeps it in memory.
type Options struct {
	DataPath string
	Logger   *slog.Logger
}

// Hit is one search result.
type Hit struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// NewIndex creates or opens the index. An on-disk index whose mapping version
// differs from the current one, or that fails to open, is recreated.
func NewIndex(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.DataPath == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &Index{index: idx, logger: logger}, nil
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")
	versionPath := filepath.Join(opts.DataPath, "search.version")

	var idx bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		existing, readErr := os.ReadFile(versionPath)
		if readErr == nil && string(existing) == mappingVersion {
			idx, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
				idx = nil
			}
		} else {
			logger.Info("search mapping changed, recreating index", "new_version", mappingVersion)
		}
		if idx == nil {
			if err := os.RemoveAll(indexPath); err != nil {
				return nil, fmt.Errorf("remove old index: %w", err)
			}
		}
	}

	if idx == nil {
		var err error
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created search index", "path", indexPath)
	}

	return &Index{index: idx, path: indexPath, logger: logger}, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

func toDoc(e *domain.Entry) map[string]any {
	return map[string]any{
		"name":        e.Name,
		"name_exact":  strings.ToLower(e.Name),
		"description": e.Description,
		"category":    e.Category,
		"liked":       float64(e.Liked),
	}
}

// Put indexes or replaces one entry.
func (s *Index) Put(e *domain.Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(e.Name, toDoc(e))
}

// Remove drops an entry by name.
func (s *Index) Remove(name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(name)
}

// Count returns the number of indexed entries.
func (s *Index) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index contents with entries.
func (s *Index) Rebuild(entries []domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale := make(map[string]struct{})
	ids, err := s.allIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		stale[id] = struct{}{}
	}

	const batchSize = 500
	batch := s.index.NewBatch()
	for i := range entries {
		delete(stale, entries[i].Name)
		if err := batch.Index(entries[i].Name, toDoc(&entries[i])); err != nil {
			return fmt.Errorf("batch index %s: %w", entries[i].Name, err)
		}
		if batch.Size() >= batchSize {
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("commit batch: %w", err)
			}
			batch = s.index.NewBatch()
		}
	}
	for id := range stale {
		batch.Delete(id)
	}
	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.logger.Debug("search index rebuilt", "entries", len(entries), "removed", len(stale))
	return nil
}

// allIDs lists every indexed document id. Callers hold mu.
func (s *Index) allIDs() ([]string, error) {
	count, err := s.index.DocCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("list indexed entries: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Search matches text against names and descriptions. Name matches and name
// prefixes rank above description matches. category narrows results to one
// code unless it is empty or domain.CategoryAll.
func (s *Index) Search(text, category string, limit int) ([]Hit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	nameMatch := bleve.NewMatchQuery(text)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3)

	namePrefix := bleve.NewPrefixQuery(strings.ToLower(text))
	namePrefix.SetField("name_exact")
	namePrefix.SetBoost(2)

	descMatch := bleve.NewMatchQuery(text)
	descMatch.SetField("description")

	var q query.Query = bleve.NewDisjunctionQuery(nameMatch, namePrefix, descMatch)
	if category != "" && category != domain.CategoryAll {
		cat := bleve.NewTermQuery(category)
		cat.SetField("category")
		q = bleve.NewConjunctionQuery(q, cat)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"category"}

	s.mu.RLock()
	res, err := s.index.Search(req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		cat, _ := h.Fields["category"].(string)
		hits = append(hits, Hit{Name: h.ID, Category: cat, Score: h.Score})
	}
	return hits, nil
}
