// Package repomanager selects and opens the metadata backend named in the
// config and vends its file and album repositories.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophalbum/internal/logging"
	"github.com/dmitrijs2005/gophalbum/internal/server/config"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/albums"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/files"
)

type RepositoryManager interface {
	Files() files.Repository
	Albums() albums.Repository
	// Close releases the underlying connection or database handle.
	Close() error
}

// New opens the backend selected by cfg.MetadataBackend.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (RepositoryManager, error) {
	switch cfg.MetadataBackend {
	case config.BackendPostgres:
		return OpenPostgres(ctx, cfg.DatabaseDSN)
	case config.BackendBadger:
		return OpenBadger(cfg.BadgerDir, logger)
	case config.BackendMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown metadata backend %q", cfg.MetadataBackend)
	}
}
