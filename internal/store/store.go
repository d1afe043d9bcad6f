package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no value exists for a key.
	ErrNotFound = errors.New("no value for key")

	// ErrUnavailable is returned when the backing store cannot be used.
	ErrUnavailable = errors.New("storage unavailable")
)

// Storage is a string key-value capability. Implementations distinguish a
// missing key (ErrNotFound) from an unusable store (ErrUnavailable).
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
