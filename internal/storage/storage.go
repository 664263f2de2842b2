package storage

import "context"

// KV is the persistence primitive the store writes its snapshots to.
// Values are opaque strings; keys are owned exclusively by this process.
// Get reports whether the key existed so callers can distinguish an
// absent key from an empty value.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
