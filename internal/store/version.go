package store

import (
	"context"
	"errors"

	"github.com/macontouch/notebook/internal/domain"
)

// VersionStore persists the local version marker (version.json).
type VersionStore struct {
	doc *Document[domain.VersionMarker]
}

// Load returns the marker. On first access {version:0} is written and returned.
func (v *VersionStore) Load(ctx context.Context) (domain.VersionMarker, error) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	marker, found, err := v.doc.load(ctx)
	if err != nil {
		return marker, err
	}
	if !found {
		if err := v.doc.save(ctx, marker); err != nil {
			return marker, err
		}
	}
	return marker, nil
}

// Save replaces the marker.
func (v *VersionStore) Save(ctx context.Context, marker domain.VersionMarker) error {
	return v.doc.Save(ctx, marker)
}

func zeroVersion() domain.VersionMarker {
	return domain.VersionMarker{}
}

func checkVersion(m *domain.VersionMarker) error {
	if m.Version < 0 {
		return errors.New("negative version")
	}
	return nil
}
