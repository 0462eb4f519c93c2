package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by a Backend when a key has never been written
// or was deleted.
var ErrKeyNotFound = errors.New("key not found")

// Backend persists opaque document bytes under short keys such as "data" or
// "categories". Implementations must make Put atomic: a concurrent or
// subsequent Get observes either the old or the new value, never a mix.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
