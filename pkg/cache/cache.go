// Package cache provides a small artifact cache for rendered diagrams.
//
// Rendering is deterministic: the same table and options always produce the
// same artifact (modulo the run id, which is metadata). The HTTP server uses
// this to answer repeated render requests from disk instead of recomputing
// the layout.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache stores rendered artifacts by key.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// RenderKey derives a cache key for a render request from the input data,
// the pipeline options, and the output format. Two requests that would
// produce the same artifact hash to the same key.
func RenderKey(input []byte, opts any, format string) string {
	optsData, _ := json.Marshal(opts)
	h := sha256.New()
	h.Write(input)
	h.Write([]byte{0})
	h.Write(optsData)
	h.Write([]byte{0})
	h.Write([]byte(format))
	return "render:" + hex.EncodeToString(h.Sum(nil))
}

// Hash computes the SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
