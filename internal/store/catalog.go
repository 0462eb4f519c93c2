package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/macontouch/notebook/internal/domain"
)

// CatalogStore persists the entry list (data.json).
type CatalogStore struct {
	doc *Document[[]domain.Entry]
}

// LoadAll returns every stored entry; an empty list if nothing is stored.
func (c *CatalogStore) LoadAll(ctx context.Context) ([]domain.Entry, error) {
	return c.doc.Load(ctx)
}

// SaveAll replaces the whole list.
func (c *CatalogStore) SaveAll(ctx context.Context, entries []domain.Entry) error {
	if entries == nil {
		entries = []domain.Entry{}
	}
	return c.doc.Save(ctx, entries)
}

// Update runs fn on the list under the catalog lock and saves the result.
func (c *CatalogStore) Update(ctx context.Context, fn func(entries *[]domain.Entry) error) ([]domain.Entry, error) {
	return c.doc.Update(ctx, fn)
}

func emptyEntries() []domain.Entry {
	return []domain.Entry{}
}

func checkEntries(entries *[]domain.Entry) error {
	if *entries == nil {
		*entries = []domain.Entry{}
		return nil
	}
	var errs []error
	for i := range *entries {
		if err := (*entries)[i].Check(); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
