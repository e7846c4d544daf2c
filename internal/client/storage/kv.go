// Package storage is the client's durable key-value storage, the terminal
// counterpart of browser localStorage.
//
// Two implementations satisfy Store: SQLiteStore (a single "kv" table managed
// by goose migrations) and MemoryStore (tests, or when no database path is
// configured).
//
// Get returns (nil, nil) for a missing key, so callers treat absence and an
// empty value the same way.
package storage

import "context"

// KV is the minimal get/set/delete capability.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is a KV that can apply several writes all-or-nothing.
type Store interface {
	KV
	// Update runs fn against a transactional view of the store. Writes made
	// through kv become visible only if fn returns nil.
	Update(ctx context.Context, fn func(ctx context.Context, kv KV) error) error
}
