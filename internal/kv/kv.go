// Package kv persists named JSON values in a durable key-value backend.
//
// Backends store raw bytes; Save and Load handle the JSON encoding so that
// every backend holds the same serialized shape for a key.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys.
const (
	KeyCurrentUser   = "currentUser"
	KeyShips         = "ships"
	KeyComponents    = "components"
	KeyJobs          = "jobs"
	KeyNotifications = "notifications"
)

// ErrMalformed wraps a stored value that cannot be decoded.
var ErrMalformed = errors.New("malformed stored value")

// Store is a durable key-value slot map. Get reports absence with ok=false.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Save serializes v as JSON into key.
func Save(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Load decodes key into v. It returns false when the key is absent and an
// error wrapping ErrMalformed when the stored bytes are not valid for v.
func Load(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

type prefixed struct {
	Store
	prefix string
}

// WithPrefix namespaces every key of s, letting several fleets share one backend.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return prefixed{Store: s, prefix: prefix}
}

func (p prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p prefixed) Put(ctx context.Context, key string, value []byte) error {
	return p.Store.Put(ctx, p.prefix+key, value)
}

func (p prefixed) Delete(ctx context.Context, key string) error {
	return p.Store.Delete(ctx, p.prefix+key)
}
