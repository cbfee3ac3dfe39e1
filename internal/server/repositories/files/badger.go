package files

import (
	"context"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/kv"
)

// KeyPrefix namespaces file records inside a shared badger database.
const KeyPrefix = "file/"

// BadgerRepository stores files as JSON under file/<file_id>. Scans walk
// the whole prefix and filter in process.
type BadgerRepository struct {
	t *kv.BadgerTable[models.File]
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{t: kv.NewBadgerTable[models.File](db, KeyPrefix, codec{})}
}

func (r *BadgerRepository) Get(ctx context.Context, fileID string) (*models.File, error) {
	return r.t.Get(ctx, fileID)
}

func (r *BadgerRepository) Put(ctx context.Context, file *models.File) error {
	return r.t.Put(ctx, file)
}

func (r *BadgerRepository) Replace(ctx context.Context, file *models.File) error {
	return r.t.Replace(ctx, file)
}

func (r *BadgerRepository) Delete(ctx context.Context, fileID string) error {
	return r.t.Delete(ctx, fileID)
}

func (r *BadgerRepository) Scan(ctx context.Context, filter Filter, cursor string, limit int) ([]*models.File, string, error) {
	return r.t.Scan(ctx, filter.Match, cursor, limit)
}
