package ports

import (
	"context"
	"time"
)

// KVStore is the persistence behind browser sessions. Keys are namespaced
// by the caller; a ttl of zero means no expiry.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Take reads and deletes key in one step.
	Take(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// Sealer encrypts values before they reach a KVStore.
type Sealer interface {
	Seal(plaintext []byte) (string, error)
	Open(sealed string) ([]byte, error)
}
