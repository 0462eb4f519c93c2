package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/macontouch/notebook/internal/domain"
)

// CategoryStore persists the category list.
type CategoryStore struct {
	doc *Document[[]domain.Category]
}

// LoadAll returns every category; an empty list if nothing is stored.
func (c *CategoryStore) LoadAll(ctx context.Context) ([]domain.Category, error) {
	return c.doc.Load(ctx)
}

// SaveAll replaces the whole list.
func (c *CategoryStore) SaveAll(ctx context.Context, cats []domain.Category) error {
	if cats == nil {
		cats = []domain.Category{}
	}
	return c.doc.Save(ctx, cats)
}

// Update runs fn on the list under the category lock and saves the result.
func (c *CategoryStore) Update(ctx context.Context, fn func(cats *[]domain.Category) error) ([]domain.Category, error) {
	return c.doc.Update(ctx, fn)
}

func emptyCategories() []domain.Category {
	return []domain.Category{}
}

func checkCategories(cats *[]domain.Category) error {
	if *cats == nil {
		*cats = []domain.Category{}
		return nil
	}
	var errs []error
	for i := range *cats {
		if err := (*cats)[i].Check(); err != nil {
			errs = append(errs, fmt.Errorf("category %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
