package albums

import (
	"context"

	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/kv"
)

type MemoryRepository struct {
	t *kv.MemoryTable[models.Album]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{t: kv.NewMemoryTable[models.Album](codec{})}
}

func (r *MemoryRepository) Get(ctx context.Context, albumID string) (*models.Album, error) {
	return r.t.Get(ctx, albumID)
}

func (r *MemoryRepository) Put(ctx context.Context, album *models.Album) error {
	return r.t.Put(ctx, album)
}

func (r *MemoryRepository) Replace(ctx context.Context, album *models.Album) error {
	return r.t.Replace(ctx, album)
}

func (r *MemoryRepository) Delete(ctx context.Context, albumID string) error {
	return r.t.Delete(ctx, albumID)
}

func (r *MemoryRepository) Scan(ctx context.Context, filter Filter, cursor string, limit int) ([]*models.Album, string, error) {
	return r.t.Scan(ctx, filter.Match, cursor, limit)
}
