// Package cache implements the bounded result cache backing the Query
// Engine (C8) and the Context Assembler's context/session cache (C9).
//
// Grounded on the teacher's internal/cache/manager.go (an in-process
// patrickmn/go-cache TTL store) and internal/cache/redis_client.go (an
// optional remote store for multi-instance deployments), generalized
// from sketch-specific load/save methods to a plain byte-value Store
// interface any caller can key and serialize however it likes.
package cache

import "context"

// Store is a bounded key-value cache with TTL semantics. Values are
// opaque bytes; callers encode/decode their own payloads.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Flush(ctx context.Context) error
}
