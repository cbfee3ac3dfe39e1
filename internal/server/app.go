// Package server wires the configured stores, services and HTTP endpoint
// into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophalbum/internal/logging"
	"github.com/dmitrijs2005/gophalbum/internal/server/blobs"
	"github.com/dmitrijs2005/gophalbum/internal/server/config"
	"github.com/dmitrijs2005/gophalbum/internal/server/httpapi"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophalbum/internal/server/services"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	repomanager  repomanager.RepositoryManager
	fileService  *services.FileService
	albumService *services.AlbumService
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	rm, err := repomanager.New(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("metadata store init error: %w", err)
	}

	bs, err := blobs.New(ctx, c)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	return &App{
		config:       c,
		logger:       logger,
		repomanager:  rm,
		fileService:  services.NewFileService(rm, bs, c, logger),
		albumService: services.NewAlbumService(rm, c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger, app.fileService, app.albumService,
		app.config.SecretKey, app.config.RequestTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is canceled, a termination signal arrives or the
// server fails, then releases the metadata store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "metadata", app.config.MetadataBackend, "blobs", app.config.BlobBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "metadata store close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
