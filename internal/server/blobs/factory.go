package blobs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophalbum/internal/server/config"
)

// New builds the store selected by cfg.BlobBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.BlobBackend {
	case config.BackendS3:
		return NewS3Store(ctx, cfg)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}
