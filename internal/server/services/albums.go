package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/gophalbum/internal/common"
	"github.com/dmitrijs2005/gophalbum/internal/logging"
	"github.com/dmitrijs2005/gophalbum/internal/server/access"
	"github.com/dmitrijs2005/gophalbum/internal/server/config"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/albums"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/repomanager"
)

// AlbumService manages albums. Membership lives on File.AlbumID, so
// deleting an album leaves its files in place.
type AlbumService struct {
	files    files.Repository
	albums   albums.Repository
	logger   logging.Logger
	retry    retrier
	pageSize int

	now   func() time.Time
	newID func() string
}

func NewAlbumService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AlbumService {
	return &AlbumService{
		files:    m.Files(),
		albums:   m.Albums(),
		logger:   logger.With("module", "albums"),
		retry:    newRetrier(cfg.StoreRetryAttempts, cfg.StoreRetryBaseDelay),
		pageSize: cfg.ScanPageSize,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    newID,
	}
}

func (s *AlbumService) CreateAlbum(ctx context.Context, id models.Identity, in *models.Album) (*models.Album, error) {
	if id.Subject == "" {
		return nil, fmt.Errorf("missing subject: %w", common.ErrForbidden)
	}
	if in == nil || in.Name == "" {
		return nil, fmt.Errorf("name is required: %w", common.ErrInvalidRequest)
	}

	now := s.now()
	a := &models.Album{
		AlbumID:          s.newID(),
		OwnerSubject:     id.Subject,
		Name:             in.Name,
		CreatedAt:        now,
		UpdatedAt:        now,
		SharedWithEmails: normalizeEmails(in.SharedWithEmails),
	}

	if err := s.retry.do(ctx, func(ctx context.Context) error {
		return s.albums.Put(ctx, a)
	}); err != nil {
		return nil, fmt.Errorf("failed to store album: %w", err)
	}

	s.logger.Info(ctx, "album created", "album_id", a.AlbumID, "owner", a.OwnerSubject)
	return a, nil
}

// FetchAlbum returns the album with FileIDs resolved from the files table.
func (s *AlbumService) FetchAlbum(ctx context.Context, id models.Identity, albumID string) (*models.Album, error) {
	a, err := s.get(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if !access.CanReadAlbum(a, id.Subject, id.Email) {
		return nil, errDenied
	}
	if err := s.resolveMembers(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AlbumService) EditAlbum(ctx context.Context, id models.Identity, patch *models.AlbumPatch) (*models.Album, error) {
	if patch == nil || patch.AlbumID == "" {
		return nil, fmt.Errorf("album_id is required: %w", common.ErrInvalidRequest)
	}

	cur, err := s.get(ctx, patch.AlbumID)
	if err != nil {
		return nil, err
	}
	if !access.CanWriteAlbum(cur, id.Subject) {
		return nil, fmt.Errorf("only the owner may edit: %w", common.ErrForbidden)
	}
	if patch.OwnerSubject != nil && *patch.OwnerSubject != cur.OwnerSubject {
		return nil, fmt.Errorf("owner_subject can not be changed: %w", common.ErrForbidden)
	}

	merged := cur.Clone()
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("name can not be empty: %w", common.ErrInvalidRequest)
		}
		merged.Name = *patch.Name
	}
	if patch.SharedWithEmails != nil {
		merged.SharedWithEmails = normalizeEmails(*patch.SharedWithEmails)
	}
	merged.UpdatedAt = s.now()

	err = s.retry.do(ctx, func(ctx context.Context) error {
		return s.albums.Replace(ctx, merged)
	})
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("album %s was deleted: %w", merged.AlbumID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store album: %w", err)
	}
	if err := s.resolveMembers(ctx, merged); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "album updated", "album_id", merged.AlbumID)
	return merged, nil
}

// DeleteAlbum removes the album record. Member files keep their AlbumID;
// readers treat the missing album as no album.
func (s *AlbumService) DeleteAlbum(ctx context.Context, id models.Identity, albumID string) error {
	a, err := s.get(ctx, albumID)
	if err != nil {
		return err
	}
	if !access.CanWriteAlbum(a, id.Subject) {
		return fmt.Errorf("only the owner may delete: %w", common.ErrForbidden)
	}

	if err := s.retry.do(ctx, func(ctx context.Context) error {
		return s.albums.Delete(ctx, albumID)
	}); err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}

	s.logger.Info(ctx, "album deleted", "album_id", albumID)
	return nil
}

func (s *AlbumService) get(ctx context.Context, albumID string) (*models.Album, error) {
	if albumID == "" {
		return nil, fmt.Errorf("album_id is required: %w", common.ErrInvalidRequest)
	}
	return withRetry(ctx, s.retry, func(ctx context.Context) (*models.Album, error) {
		return s.albums.Get(ctx, albumID)
	})
}

func (s *AlbumService) resolveMembers(ctx context.Context, a *models.Album) error {
	members, err := scanAll(ctx, s.retry, s.pageSize, func(ctx context.Context, cursor string, limit int) ([]*models.File, string, error) {
		return s.files.Scan(ctx, files.Filter{AlbumID: a.AlbumID}, cursor, limit)
	})
	if err != nil {
		return err
	}

	a.FileIDs = make([]string, 0, len(members))
	for _, f := range members {
		a.FileIDs = append(a.FileIDs, f.FileID)
	}
	slices.Sort(a.FileIDs)
	return nil
}
