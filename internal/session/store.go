package session

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("session key not found")

// Store is a per-visitor durable key/value store. Values survive across
// requests until the session expires.
type Store interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error
}
