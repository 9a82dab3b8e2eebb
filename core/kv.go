package core

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned by KVStore.Get when nothing is stored under the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrMalformedValue is returned when a stored value cannot be read back (bad signature, bad encoding).
	ErrMalformedValue = errors.New("malformed stored value")
)

// KVStore is a flat key/value persistence layer, the server side twin of the browser's localStorage.
// Writes to different keys are independent: there is no transaction spanning two keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
