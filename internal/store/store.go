package store

import "context"

// Store is a string key-value store used to persist small session state.
type Store interface {
	// Load returns the value for key; ok is false when the key was never saved.
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	Save(ctx context.Context, key, value string) error
	Close() error
}
