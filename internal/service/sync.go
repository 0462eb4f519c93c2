package service

import (
	"context"
	"log/slog"

	"github.com/macontouch/notebook/internal/domain"
	domainerrors "github.com/macontouch/notebook/internal/errors"
	"github.com/macontouch/notebook/internal/sse"
	"github.com/macontouch/notebook/internal/store"
)

// SnapshotFetcher retrieves the remote catalog snapshot.
type SnapshotFetcher interface {
	Fetch(ctx context.Context) (*domain.Snapshot, error)
}

// SyncResult describes a completed merge.
type SyncResult struct {
	Entries       []domain.Entry `json:"entries"`
	Added         int            `json:"added"`
	LocalVersion  int            `json:"localVersion"` // Marker before the merge
	RemoteVersion int            `json:"remoteVersion"`
}

// SyncService merges the remote snapshot into the local catalog.
type SyncService struct {
	store   *store.Store
	fetcher SnapshotFetcher
	index   Indexer
	emitter store.EventEmitter
	logger  *slog.Logger
}

// NewSyncService creates a new sync service.
func NewSyncService(st *store.Store, fetcher SnapshotFetcher, index Indexer, emitter store.EventEmitter, logger *slog.Logger) *SyncService {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	if index == nil {
		index = noopIndexer{}
	}
	return &SyncService{
		store:   st,
		fetcher: fetcher,
		index:   index,
		emitter: emitter,
		logger:  logger,
	}
}

// MergeEntries appends every remote entry whose name is not yet in the
// merged list. The first remote entry wins over later duplicates. local is
// never modified.
func MergeEntries(local, remote []domain.Entry) (merged []domain.Entry, added int) {
	names := domain.EntryNames(local)
	merged = make([]domain.Entry, len(local), len(local)+len(remote))
	copy(merged, local)
	for _, e := range remote {
		if _, ok := names[e.Name]; ok {
			continue
		}
		names[e.Name] = struct{}{}
		merged = append(merged, e)
		added++
	}
	return merged, added
}

// Sync fetches the remote snapshot and merges it. A fetch failure leaves
// storage untouched; the catalog and version marker are written together.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	snap, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.logger.Warn("sync fetch failed", "error", err)
		return nil, err
	}
	if err := snap.Check(); err != nil {
		s.logger.Warn("sync rejected snapshot", "error", err)
		return nil, domainerrors.Network(err, "invalid snapshot")
	}

	result := &SyncResult{RemoteVersion: snap.Version}
	entries, err := s.store.SyncCatalog(ctx, func(local []domain.Entry, v domain.VersionMarker) ([]domain.Entry, domain.VersionMarker, error) {
		result.LocalVersion = v.Version
		merged, added := MergeEntries(local, snap.Data)
		result.Added = added
		return merged, domain.VersionMarker{Version: snap.Version}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Entries = entries

	if err := s.index.Rebuild(entries); err != nil {
		s.logger.Warn("search index rebuild failed", "error", err)
	}
	s.emitter.Emit(sse.NewSyncCompletedEvent(sse.SyncCompletedData{
		Added:         result.Added,
		Total:         len(entries),
		LocalVersion:  result.LocalVersion,
		RemoteVersion: result.RemoteVersion,
	}))

	s.logger.Info("catalog synced",
		"added", result.Added,
		"total", len(entries),
		"local_version", result.LocalVersion,
		"remote_version", result.RemoteVersion,
	)
	return result, nil
}

// CheckVersions reports the local marker and the remote snapshot version
// without touching the catalog.
func (s *SyncService) CheckVersions(ctx context.Context) (*domain.Versions, error) {
	snap, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	marker, err := s.store.Versions.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Versions{Local: marker.Version, Remote: snap.Version}, nil
}

// LocalSnapshot returns the local catalog in the remote document shape, so
// one instance can act as another's remote.
func (s *SyncService) LocalSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	marker, err := s.store.Versions.Load(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Catalog.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{Version: marker.Version, Data: entries}, nil
}
