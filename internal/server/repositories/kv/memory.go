package kv

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophalbum/internal/common"
)

// MemoryTable is a goroutine-safe map table. Records are cloned on the way
// in and on the way out so callers never alias stored state.
type MemoryTable[T any] struct {
	codec Codec[T]
	mu    sync.RWMutex
	rows  map[string]*T
}

func NewMemoryTable[T any](codec Codec[T]) *MemoryTable[T] {
	return &MemoryTable[T]{codec: codec, rows: make(map[string]*T)}
}

func (t *MemoryTable[T]) Get(ctx context.Context, key string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.rows[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, common.ErrNotFound)
	}
	return t.codec.Clone(v), nil
}

// Put replaces the record under its key in one step.
func (t *MemoryTable[T]) Put(ctx context.Context, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c := t.codec.Clone(v)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows[t.codec.Key(c)] = c
	return nil
}

// Replace overwrites an existing record. A missing key is
// common.ErrNotFound and nothing is written.
func (t *MemoryTable[T]) Replace(ctx context.Context, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c := t.codec.Clone(v)
	k := t.codec.Key(c)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[k]; !ok {
		return fmt.Errorf("key %q: %w", k, common.ErrNotFound)
	}
	t.rows[k] = c
	return nil
}

// Delete is idempotent.
func (t *MemoryTable[T]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.rows, key)
	return nil
}

// Scan returns up to limit matching records with keys greater than cursor
// and the cursor of the next page, empty when there is none.
func (t *MemoryTable[T]) Scan(ctx context.Context, match Match[T], cursor string, limit int) ([]*T, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.rows))
	for k := range t.rows {
		if k > cursor {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var page []*T
	for i, k := range keys {
		v := t.rows[k]
		if !match.accepts(v) {
			continue
		}
		page = append(page, t.codec.Clone(v))
		if limit > 0 && len(page) == limit {
			if i == len(keys)-1 {
				return page, "", nil
			}
			return page, k, nil
		}
	}
	return page, "", nil
}
