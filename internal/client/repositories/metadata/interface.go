// Package metadata is the client's local key/value store. It backs the
// session slot (the persisted identity) and the persisted auth tokens.
package metadata

import (
	"context"
)

// Repository is a small key/value table. Get returns (nil, nil) for a missing
// key, Set fully overwrites, and Delete of a missing key is not an error.
// List and Clear serve the CLI "forget" command.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

var _ Repository = (*SQLiteRepository)(nil)
