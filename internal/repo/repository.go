package repo

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when the key has never been written.
var ErrNotFound = errors.New("repo: key not found")

// KV is single-document key-value persistence. Values are whole JSON
// documents; there are no transactions or partial updates, and the last
// Put wins.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
