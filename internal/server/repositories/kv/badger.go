package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophalbum/internal/common"
)

// BadgerTable stores JSON encoded records under prefix+key.
//
// Put is a single Set inside db.Update, so a reader sees either the old or
// the new value and never a missing key.
type BadgerTable[T any] struct {
	db     *badger.DB
	prefix string
	codec  Codec[T]
}

func NewBadgerTable[T any](db *badger.DB, prefix string, codec Codec[T]) *BadgerTable[T] {
	return &BadgerTable[T]{db: db, prefix: prefix, codec: codec}
}

func (t *BadgerTable[T]) key(k string) []byte {
	return []byte(t.prefix + k)
}

func (t *BadgerTable[T]) Get(ctx context.Context, key string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out *T
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(t.key(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v, err := t.decode(val)
			out = v
			return err
		})
	})
	if err != nil {
		return nil, classifyBadger(fmt.Errorf("get %s%s: %w", t.prefix, key, err))
	}
	return out, nil
}

func (t *BadgerTable[T]) Put(ctx context.Context, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c := t.codec.Clone(v)
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	err = t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(t.key(t.codec.Key(c)), data)
	})
	if err != nil {
		return classifyBadger(fmt.Errorf("put %s%s: %w", t.prefix, t.codec.Key(c), err))
	}
	return nil
}

// Replace writes v only if its key is present. The existence check and
// the Set share one transaction; a delete committed in between makes the
// commit fail with badger.ErrConflict.
func (t *BadgerTable[T]) Replace(ctx context.Context, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c := t.codec.Clone(v)
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	k := t.key(t.codec.Key(c))
	err = t.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(k); err != nil {
			return err
		}
		return txn.Set(k, data)
	})
	if err != nil {
		return classifyBadger(fmt.Errorf("replace %s: %w", k, err))
	}
	return nil
}

// Delete is idempotent: badger does not complain about missing keys.
func (t *BadgerTable[T]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(t.key(key))
	})
	if err != nil {
		return classifyBadger(fmt.Errorf("delete %s%s: %w", t.prefix, key, err))
	}
	return nil
}

// Scan walks the prefix in key order starting after cursor.
func (t *BadgerTable[T]) Scan(ctx context.Context, match Match[T], cursor string, limit int) ([]*T, string, error) {
	var (
		page []*T
		next string
	)

	err := t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(t.prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		start := t.key(cursor)
		for it.Seek(start); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			k := string(item.Key()[len(t.prefix):])
			if cursor != "" && k <= cursor {
				continue
			}

			if limit > 0 && len(page) == limit {
				// one more record exists past a full page
				next = t.codec.Key(page[len(page)-1])
				return nil
			}

			var v *T
			if err := item.Value(func(val []byte) error {
				var derr error
				v, derr = t.decode(val)
				return derr
			}); err != nil {
				return err
			}
			if match.accepts(v) {
				page = append(page, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", classifyBadger(fmt.Errorf("scan %s: %w", t.prefix, err))
	}
	return page, next, nil
}

func (t *BadgerTable[T]) decode(val []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(val, &v); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &v, nil
}

func classifyBadger(err error) error {
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%v: %w", err, common.ErrNotFound)
	case errors.Is(err, badger.ErrConflict):
		return fmt.Errorf("%v: %w", err, common.ErrUnavailable)
	default:
		return err
	}
}
