// Package blobs stores file content by key. Keys are produced by the
// naming package; stores treat them as opaque.
package blobs

import "context"

// Store is a key to bytes object store.
//
// Get returns common.ErrNotFound for a missing key. Delete of a missing key
// succeeds. Transient backend failures are wrapped in common.ErrUnavailable.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
