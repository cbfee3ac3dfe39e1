// Package httpapi exposes the file and album services over HTTP with gin.
// Every route except /health requires a bearer JWT carrying the caller's
// subject and email.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophalbum/internal/logging"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/gin-gonic/gin"
)

// FileService is the subset of services.FileService used by the handlers.
type FileService interface {
	Create(ctx context.Context, id models.Identity, in *models.File) (*models.File, error)
	Fetch(ctx context.Context, id models.Identity, fileID string) (*models.File, error)
	List(ctx context.Context, id models.Identity) (*models.FileList, error)
	Edit(ctx context.Context, id models.Identity, patch *models.FilePatch) (*models.File, error)
	Delete(ctx context.Context, id models.Identity, fileID string) error
}

// AlbumService is the subset of services.AlbumService used by the handlers.
type AlbumService interface {
	CreateAlbum(ctx context.Context, id models.Identity, in *models.Album) (*models.Album, error)
	FetchAlbum(ctx context.Context, id models.Identity, albumID string) (*models.Album, error)
	EditAlbum(ctx context.Context, id models.Identity, patch *models.AlbumPatch) (*models.Album, error)
	DeleteAlbum(ctx context.Context, id models.Identity, albumID string) error
}

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address   string
	files     FileService
	albums    AlbumService
	logger    logging.Logger
	jwtSecret []byte
	timeout   time.Duration
}

func NewHTTPServer(a string, l logging.Logger, fs FileService, as AlbumService, secretKey string, requestTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		files:     fs,
		albums:    as,
		jwtSecret: []byte(secretKey),
		timeout:   requestTimeout,
	}
}

// Handler builds the gin engine with all routes registered.
func (s *HTTPServer) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.deadline())

	r.GET("/health", s.health)

	api := r.Group("/")
	api.Use(s.authenticate())

	api.POST("/file", s.createFile)
	api.GET("/file/:file_id", s.fetchFile)
	api.GET("/files", s.listFiles)
	api.PUT("/file", s.editFile)
	api.DELETE("/file/:file_id", s.deleteFile)
	api.DELETE("/file", s.deleteFile)

	api.POST("/album", s.createAlbum)
	api.GET("/album/:album_id", s.fetchAlbum)
	api.PUT("/album", s.editAlbum)
	api.DELETE("/album/:album_id", s.deleteAlbum)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
