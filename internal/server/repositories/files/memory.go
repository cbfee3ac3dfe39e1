package files

import (
	"context"

	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/kv"
)

// MemoryRepository keeps files in process memory. Used by tests and the
// memory backend.
type MemoryRepository struct {
	t *kv.MemoryTable[models.File]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{t: kv.NewMemoryTable[models.File](codec{})}
}

func (r *MemoryRepository) Get(ctx context.Context, fileID string) (*models.File, error) {
	return r.t.Get(ctx, fileID)
}

func (r *MemoryRepository) Put(ctx context.Context, file *models.File) error {
	return r.t.Put(ctx, file)
}

func (r *MemoryRepository) Replace(ctx context.Context, file *models.File) error {
	return r.t.Replace(ctx, file)
}

func (r *MemoryRepository) Delete(ctx context.Context, fileID string) error {
	return r.t.Delete(ctx, fileID)
}

func (r *MemoryRepository) Scan(ctx context.Context, filter Filter, cursor string, limit int) ([]*models.File, string, error) {
	return r.t.Scan(ctx, filter.Match, cursor, limit)
}
