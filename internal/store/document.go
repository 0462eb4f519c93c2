package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	domainerrors "github.com/macontouch/notebook/internal/errors"
)

// schemaVersion tags every document this package writes.
const schemaVersion = 1

// envelope is the on-disk shape: {"schema":1,"data":...}.
type envelope struct {
	Schema int             `json:"schema"`
	Data   json.RawMessage `json:"data"`
}

// Document is one JSON value of type T persisted under a backend key.
// All access is serialized through mu, so a load-modify-save done with
// Update can never lose a concurrent write.
type Document[T any] struct {
	mu      sync.Mutex
	backend Backend
	key     string
	empty   func() T
	check   func(*T) error
}

func newDocument[T any](backend Backend, key string, empty func() T, check func(*T) error) *Document[T] {
	return &Document[T]{backend: backend, key: key, empty: empty, check: check}
}

// Key returns the backend key.
func (d *Document[T]) Key() string {
	return d.key
}

// Load returns the stored value, or the empty value when nothing is stored.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, _, err := d.load(ctx)
	return v, err
}

// Save replaces the stored value.
func (d *Document[T]) Save(ctx context.Context, v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(ctx, v)
}

// Update loads the value, lets fn modify it and saves the result, all under
// the document lock. If fn returns an error nothing is written.
func (d *Document[T]) Update(ctx context.Context, fn func(v *T) error) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, _, err := d.load(ctx)
	if err != nil {
		return v, err
	}
	if err := fn(&v); err != nil {
		return v, err
	}
	if err := d.save(ctx, v); err != nil {
		return v, err
	}
	return v, nil
}

// load reads and decodes the document. found is false when the key is absent.
// Callers hold d.mu.
func (d *Document[T]) load(ctx context.Context) (v T, found bool, err error) {
	raw, err := d.backend.Get(ctx, d.key)
	if errors.Is(err, ErrKeyNotFound) {
		return d.empty(), false, nil
	}
	if err != nil {
		return d.empty(), false, domainerrors.Storage(err, "read "+d.key)
	}

	v, err = d.decode(raw)
	if err != nil {
		return d.empty(), true, err
	}
	return v, true, nil
}

func (d *Document[T]) decode(raw []byte) (T, error) {
	v := d.empty()

	payload, err := unwrapEnvelope(raw)
	if err != nil {
		return v, domainerrors.Storage(err, "decode "+d.key)
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return d.empty(), domainerrors.Storage(err, "decode "+d.key)
	}
	if d.check != nil {
		if err := d.check(&v); err != nil {
			return d.empty(), domainerrors.Storage(err, "invalid "+d.key)
		}
	}
	return v, nil
}

// save encodes v inside an envelope and writes it. Callers hold d.mu.
func (d *Document[T]) save(ctx context.Context, v T) error {
	raw, err := encodeEnvelope(v)
	if err != nil {
		return domainerrors.Storage(err, "encode "+d.key)
	}
	if err := d.backend.Put(ctx, d.key, raw); err != nil {
		return domainerrors.Storage(err, "write "+d.key)
	}
	return nil
}

// snapshot captures the raw bytes currently stored so a failed multi-document
// write can be undone. Callers hold d.mu.
func (d *Document[T]) snapshot(ctx context.Context) (rawState, error) {
	raw, err := d.backend.Get(ctx, d.key)
	if errors.Is(err, ErrKeyNotFound) {
		return rawState{}, nil
	}
	if err != nil {
		return rawState{}, domainerrors.Storage(err, "read "+d.key)
	}
	return rawState{data: raw, exists: true}, nil
}

// restore writes back a snapshot. Callers hold d.mu.
func (d *Document[T]) restore(ctx context.Context, s rawState) error {
	if !s.exists {
		return d.backend.Delete(ctx, d.key)
	}
	return d.backend.Put(ctx, d.key, s.data)
}

type rawState struct {
	data   []byte
	exists bool
}

func encodeEnvelope(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Schema: schemaVersion, Data: data})
}

// unwrapEnvelope returns the payload of a tagged document. Documents written
// before tagging (a bare array or object without a "schema" key) are
// returned as is.
func unwrapEnvelope(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}
	if trimmed[0] != '{' {
		return trimmed, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, err
	}
	schemaRaw, tagged := fields["schema"]
	if !tagged {
		return trimmed, nil
	}

	var schema int
	if err := json.Unmarshal(schemaRaw, &schema); err != nil {
		return nil, fmt.Errorf("schema tag: %w", err)
	}
	if schema != schemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d", schema)
	}
	data, ok := fields["data"]
	if !ok {
		return nil, errors.New("tagged document without data")
	}
	return data, nil
}
