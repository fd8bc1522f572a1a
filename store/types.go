package store

import (
	"context"

	"eserial/internal/errs"
)

// ErrNotFound is matched by errors.Is when a key has no value.
var ErrNotFound = errs.ErrNotFound

//go:generate mockgen -destination=mocks/store.mock.go -package=mocks . Store
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	// Get returns ErrNotFound when key holds nothing.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, key string) error
}
