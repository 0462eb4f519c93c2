package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/macontouch/notebook/internal/domain"
)

func (s *Server) registerSyncRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "syncCatalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync",
		Summary:     "Sync with remote",
		Description: "Fetches the remote snapshot and appends entries whose names are not present locally",
		Tags:        []string{"Sync"},
	}, s.handleSync)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkVersions",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/versions",
		Summary:     "Check versions",
		Description: "Compares the local version marker with the remote snapshot version",
		Tags:        []string{"Sync"},
	}, s.handleCheckVersions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSnapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/snapshot",
		Summary:     "Local snapshot",
		Description: "Returns the catalog as {version, data} so this instance can act as a remote",
		Tags:        []string{"Sync"},
	}, s.handleSnapshot)
}

// === DTOs ===

// SyncInput contains parameters for a sync.
type SyncInput struct {
	IncludeEntries bool `query:"include_entries" doc:"Return the merged catalog in the response"`
}

// SyncResponse summarises a merge.
type SyncResponse struct {
	Added         int            `json:"added" doc:"Entries appended from the remote"`
	Total         int            `json:"total" doc:"Catalog size after the merge"`
	LocalVersion  int            `json:"localVersion" doc:"Version marker before the merge"`
	RemoteVersion int            `json:"remoteVersion" doc:"Remote snapshot version, now stored locally"`
	Entries       []domain.Entry `json:"entries,omitempty" doc:"Merged catalog when include_entries is set"`
}

// SyncOutput wraps the sync response for Huma.
type SyncOutput struct {
	Body SyncResponse
}

// VersionsResponse contains local and remote versions.
type VersionsResponse struct {
	LocalVersion    int  `json:"localVersion" doc:"Remote version last merged locally"`
	RemoteVersion   int  `json:"remoteVersion" doc:"Current remote snapshot version"`
	UpdateAvailable bool `json:"updateAvailable" doc:"Remote is ahead of local"`
}

// VersionsOutput wraps the versions response for Huma.
type VersionsOutput struct {
	Body VersionsResponse
}

// SnapshotOutput wraps the snapshot for Huma.
type SnapshotOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         domain.Snapshot
}

// === Handlers ===

func (s *Server) handleSync(ctx context.Context, input *SyncInput) (*SyncOutput, error) {
	result, err := s.services.Sync.Sync(ctx)
	if err != nil {
		return nil, err
	}

	resp := SyncResponse{
		Added:         result.Added,
		Total:         len(result.Entries),
		LocalVersion:  result.LocalVersion,
		RemoteVersion: result.RemoteVersion,
	}
	if input.IncludeEntries {
		resp.Entries = result.Entries
	}
	return &SyncOutput{Body: resp}, nil
}

func (s *Server) handleCheckVersions(ctx context.Context, _ *struct{}) (*VersionsOutput, error) {
	v, err := s.services.Sync.CheckVersions(ctx)
	if err != nil {
		return nil, err
	}
	return &VersionsOutput{Body: VersionsResponse{
		LocalVersion:    v.Local,
		RemoteVersion:   v.Remote,
		UpdateAvailable: v.UpdateAvailable(),
	}}, nil
}

func (s *Server) handleSnapshot(ctx context.Context, _ *struct{}) (*SnapshotOutput, error) {
	snap, err := s.services.Sync.LocalSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &SnapshotOutput{CacheControl: CacheNoStore, Body: *snap}, nil
}
