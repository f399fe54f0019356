// Package metadata is the client's local key/value store. It persists the
// theme preference and the signed-in session between runs.
package metadata

import (
	"context"
)

// Repository is a byte-valued key/value store. Get returns
// common.ErrorNotFound (wrapped) for absent keys.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
