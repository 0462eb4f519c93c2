// Package store persists the catalog, version marker, categories and user
// profile as JSON documents on pluggable backends.
package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/macontouch/notebook/internal/domain"
	domainerrors "github.com/macontouch/notebook/internal/errors"
)

// Document keys.
const (
	KeyCatalog    = "data"
	KeyVersion    = "version"
	KeyCategories = "categories"
	KeyProfile    = "user"
)

// EventEmitter is the interface for emitting SSE events.
// Services use it to broadcast changes without depending on the SSE package.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// Store groups the four documents. The catalog and version marker live on the
// docs backend; categories and profile live on the kv backend, which may be
// the same backend.
type Store struct {
	Catalog    *CatalogStore
	Versions   *VersionStore
	Categories *CategoryStore
	Profile    *ProfileStore

	docs   Backend
	kv     Backend
	logger *slog.Logger
}

// New wires the documents onto the given backends.
func New(docs, kv Backend, logger *slog.Logger) *Store {
	if kv == nil {
		kv = docs
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		Catalog:    &CatalogStore{doc: newDocument(docs, KeyCatalog, emptyEntries, checkEntries)},
		Versions:   &VersionStore{doc: newDocument(docs, KeyVersion, zeroVersion, checkVersion)},
		Categories: &CategoryStore{doc: newDocument(kv, KeyCategories, emptyCategories, checkCategories)},
		Profile:    &ProfileStore{doc: newDocument(kv, KeyProfile, emptyProfile, nil)},
		docs:       docs,
		kv:         kv,
		logger:     logger,
	}
}

// Close closes both backends.
func (s *Store) Close() error {
	s.logger.Info("Closing store")
	err := s.docs.Close()
	if s.kv != s.docs {
		err = errors.Join(err, s.kv.Close())
	}
	return err
}

// SyncCatalog applies a merge to the catalog and the version marker as one
// unit. fn receives the current entries and marker and returns their
// replacements. If writing the marker fails the catalog is restored, so
// callers see either both documents updated or neither.
func (s *Store) SyncCatalog(ctx context.Context, fn func(entries []domain.Entry, v domain.VersionMarker) ([]domain.Entry, domain.VersionMarker, error)) ([]domain.Entry, error) {
	cat, ver := s.Catalog.doc, s.Versions.doc
	cat.mu.Lock()
	defer cat.mu.Unlock()
	ver.mu.Lock()
	defer ver.mu.Unlock()

	entries, _, err := cat.load(ctx)
	if err != nil {
		return nil, err
	}
	marker, _, err := ver.load(ctx)
	if err != nil {
		return nil, err
	}

	merged, next, err := fn(entries, marker)
	if err != nil {
		return nil, err
	}

	before, err := cat.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := cat.save(ctx, merged); err != nil {
		return nil, err
	}
	if err := ver.save(ctx, next); err != nil {
		if rerr := cat.restore(ctx, before); rerr != nil {
			s.logger.Error("catalog rollback failed", "error", rerr)
			return nil, errors.Join(err, domainerrors.Storage(rerr, "rollback catalog"))
		}
		return nil, err
	}
	return merged, nil
}

// UpdateCategoriesAndCatalog changes categories and entries together, used
// when a category code is renamed and entries must follow. fn reports whether
// it touched the entries; if not, only categories are written. Lock order is
// categories then catalog.
func (s *Store) UpdateCategoriesAndCatalog(ctx context.Context, fn func(cats *[]domain.Category, entries *[]domain.Entry) (entriesChanged bool, err error)) error {
	cd, ed := s.Categories.doc, s.Catalog.doc
	cd.mu.Lock()
	defer cd.mu.Unlock()
	ed.mu.Lock()
	defer ed.mu.Unlock()

	cats, _, err := cd.load(ctx)
	if err != nil {
		return err
	}
	entries, _, err := ed.load(ctx)
	if err != nil {
		return err
	}

	entriesChanged, err := fn(&cats, &entries)
	if err != nil {
		return err
	}
	if !entriesChanged {
		return cd.save(ctx, cats)
	}

	before, err := ed.snapshot(ctx)
	if err != nil {
		return err
	}
	if err := ed.save(ctx, entries); err != nil {
		return err
	}
	if err := cd.save(ctx, cats); err != nil {
		if rerr := ed.restore(ctx, before); rerr != nil {
			s.logger.Error("catalog rollback failed", "error", rerr)
			return errors.Join(err, domainerrors.Storage(rerr, "rollback catalog"))
		}
		return err
	}
	return nil
}
