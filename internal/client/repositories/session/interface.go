// Package session stores the bearer token and cached user profile between
// runs, so a still-valid session survives a client restart.
package session

import (
	"context"
)

// Well-known keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Clear wipes every session key, e.g. on logout.
	Clear(ctx context.Context) error
}
