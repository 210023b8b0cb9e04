package storage

import "context"

// Well-known keys of client-local storage.
const (
	KeySessionID   = "session_id"
	KeyAccessToken = "access_token"
)

// Repository is durable client-local key/value storage. Get returns
// domain.ErrNotFound for missing keys.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
