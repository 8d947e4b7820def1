package storage

import (
	"context"
	"errors"
)

// Storage is the local key/value persistence behind the shopper state.
// Consumers define what they store under each key; the storage only keeps bytes.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrNotFound = errors.New("key not found")

// Keys of the persisted shopper state.
const (
	KeyToken  = "token"
	KeyUser   = "user"
	KeyCart   = "cart"
	KeyOrders = "orders"
)
