package domain

import (
	"errors"
	"fmt"
)

// VersionMarker records the remote snapshot version last merged locally.
type VersionMarker struct {
	Version int `json:"version"`
}

// Snapshot is the remote catalog document.
type Snapshot struct {
	Version int     `json:"version"`
	Data    []Entry `json:"data"`
}

// Versions pairs the local marker with the remote snapshot version.
type Versions struct {
	Local  int `json:"localVersion"`
	Remote int `json:"remoteVersion"`
}

// UpdateAvailable reports whether the remote is ahead of the local marker.
func (v Versions) UpdateAvailable() bool {
	return v.Remote > v.Local
}

// Check validates the version and every entry of the snapshot.
func (s *Snapshot) Check() error {
	var errs []error
	if s.Version < 0 {
		errs = append(errs, fmt.Errorf("negative version %d", s.Version))
	}
	for i := range s.Data {
		if err := s.Data[i].Check(); err != nil {
			errs = append(errs, fmt.Errorf("data[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
