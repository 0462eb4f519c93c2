package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/macontouch/notebook/internal/domain"
	domainerrors "github.com/macontouch/notebook/internal/errors"
	"github.com/macontouch/notebook/internal/sse"
	"github.com/macontouch/notebook/internal/store"
	"github.com/macontouch/notebook/internal/validation"
)

// CategoryRequest creates or replaces a category.
type CategoryRequest struct {
	Name      string `json:"category" validate:"notblank,max=100"`
	Code      string `json:"denotedby" validate:"catcode,max=20"`
	PinToHome bool   `json:"pintohome,omitempty"`
}

// CategoryService manages the category list.
type CategoryService struct {
	store     *store.Store
	validator *validation.Validator
	emitter   store.EventEmitter
	index     Indexer
	logger    *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(st *store.Store, v *validation.Validator, emitter store.EventEmitter, index Indexer, logger *slog.Logger) *CategoryService {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	if index == nil {
		index = noopIndexer{}
	}
	return &CategoryService{store: st, validator: v, emitter: emitter, index: index, logger: logger}
}

// List returns every category in stored order.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.store.Categories.LoadAll(ctx)
}

// Pinned returns the categories shown on the home screen.
func (s *CategoryService) Pinned(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.store.Categories.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	pinned := make([]domain.Category, 0, len(cats))
	for _, c := range cats {
		if c.PinToHome {
			pinned = append(pinned, c)
		}
	}
	return pinned, nil
}

// Add appends a category. Name and code must both be unused.
func (s *CategoryService) Add(ctx context.Context, req CategoryRequest) (*domain.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	c := domain.Category{Name: req.Name, Code: req.Code, PinToHome: req.PinToHome}

	_, err := s.store.Categories.Update(ctx, func(cats *[]domain.Category) error {
		if err := checkCategoryUnique(*cats, c, -1); err != nil {
			return err
		}
		*cats = append(*cats, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(sse.NewCategoryEvent(sse.EventCategoryCreated, c))
	s.logger.Info("category added", "name", c.Name, "code", c.Code)
	return &c, nil
}

// Update replaces the category called originalName. A code change is
// applied to every entry that used the old code.
func (s *CategoryService) Update(ctx context.Context, originalName string, req CategoryRequest) (*domain.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	next := domain.Category{Name: req.Name, Code: req.Code, PinToHome: req.PinToHome}

	var moved []domain.Entry
	err := s.store.UpdateCategoriesAndCatalog(ctx, func(cats *[]domain.Category, entries *[]domain.Entry) (bool, error) {
		i := domain.IndexOfCategory(*cats, originalName)
		if i < 0 {
			return false, domainerrors.NotFoundf("category %q not found", originalName)
		}
		if err := checkCategoryUnique(*cats, next, i); err != nil {
			return false, err
		}

		oldCode := (*cats)[i].Code
		(*cats)[i] = next
		if oldCode == next.Code {
			return false, nil
		}
		for j := range *entries {
			if (*entries)[j].Category == oldCode {
				(*entries)[j].Category = next.Code
				moved = append(moved, (*entries)[j])
			}
		}
		return len(moved) > 0, nil
	})
	if err != nil {
		return nil, err
	}

	for i := range moved {
		if err := s.index.Put(&moved[i]); err != nil {
			s.logger.Warn("search index update failed", "name", moved[i].Name, "error", err)
		}
		s.emitter.Emit(sse.NewEntryUpdatedEvent(&moved[i], moved[i].Name))
	}
	s.emitter.Emit(sse.NewCategoryEvent(sse.EventCategoryUpdated, next))
	s.logger.Info("category updated", "name", next.Name, "previous_name", originalName, "entries_moved", len(moved))
	return &next, nil
}

// Delete removes the category called name. Entries keep their code.
func (s *CategoryService) Delete(ctx context.Context, name string) error {
	_, err := s.store.Categories.Update(ctx, func(cats *[]domain.Category) error {
		i := domain.IndexOfCategory(*cats, name)
		if i < 0 {
			return errUnchanged
		}
		*cats = append((*cats)[:i], (*cats)[i+1:]...)
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}

	s.emitter.Emit(sse.NewCategoryDeletedEvent(name))
	s.logger.Info("category deleted", "name", name)
	return nil
}

// SeedDefaults installs the default categories when none exist. It reports
// whether anything was written.
func (s *CategoryService) SeedDefaults(ctx context.Context) (bool, error) {
	_, err := s.store.Categories.Update(ctx, func(cats *[]domain.Category) error {
		if len(*cats) > 0 {
			return errUnchanged
		}
		*cats = domain.DefaultCategories()
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.Info("default categories installed")
	return true, nil
}

// checkCategoryUnique rejects c when another category (not at skip) already
// uses its name or code.
func checkCategoryUnique(cats []domain.Category, c domain.Category, skip int) error {
	for i := range cats {
		if i == skip {
			continue
		}
		if cats[i].Name == c.Name {
			return domainerrors.DuplicateNamef("category %q already exists", c.Name)
		}
		if cats[i].Code == c.Code {
			return domainerrors.DuplicateNamef("category code %q is already used by %q", c.Code, cats[i].Name)
		}
	}
	return nil
}
