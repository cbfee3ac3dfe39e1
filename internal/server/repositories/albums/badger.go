package albums

import (
	"context"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/kv"
)

const KeyPrefix = "album/"

// BadgerRepository stores albums as JSON under album/<album_id>.
type BadgerRepository struct {
	t *kv.BadgerTable[models.Album]
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{t: kv.NewBadgerTable[models.Album](db, KeyPrefix, codec{})}
}

func (r *BadgerRepository) Get(ctx context.Context, albumID string) (*models.Album, error) {
	return r.t.Get(ctx, albumID)
}

func (r *BadgerRepository) Put(ctx context.Context, album *models.Album) error {
	return r.t.Put(ctx, album)
}

func (r *BadgerRepository) Replace(ctx context.Context, album *models.Album) error {
	return r.t.Replace(ctx, album)
}

func (r *BadgerRepository) Delete(ctx context.Context, albumID string) error {
	return r.t.Delete(ctx, albumID)
}

func (r *BadgerRepository) Scan(ctx context.Context, filter Filter, cursor string, limit int) ([]*models.Album, string, error) {
	return r.t.Scan(ctx, filter.Match, cursor, limit)
}
