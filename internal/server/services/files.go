// Package services contains the server-side business logic. FileService
// implements create, fetch, list, edit and delete of files on top of the
// metadata repositories and the blob store; AlbumService manages albums.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophalbum/internal/common"
	"github.com/dmitrijs2005/gophalbum/internal/logging"
	"github.com/dmitrijs2005/gophalbum/internal/server/access"
	"github.com/dmitrijs2005/gophalbum/internal/server/blobs"
	"github.com/dmitrijs2005/gophalbum/internal/server/config"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/dmitrijs2005/gophalbum/internal/server/naming"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/albums"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/repomanager"
)

// errDenied is returned for every failed read check so the message does
// not reveal whether the file exists.
var errDenied = fmt.Errorf("access denied: %w", common.ErrForbidden)

// FileService owns the file lifecycle. It holds no mutable state of its
// own; concurrent edits to the same file are last-writer-wins.
type FileService struct {
	files    files.Repository
	albums   albums.Repository
	blobs    blobs.Store
	logger   logging.Logger
	retry    retrier
	pageSize int

	now   func() time.Time
	newID func() string
}

// NewFileService constructs a FileService using repositories from m, the
// blob store and server config.
func NewFileService(m repomanager.RepositoryManager, b blobs.Store, cfg *config.Config, logger logging.Logger) *FileService {
	return &FileService{
		files:    m.Files(),
		albums:   m.Albums(),
		blobs:    b,
		logger:   logger.With("module", "files"),
		retry:    newRetrier(cfg.StoreRetryAttempts, cfg.StoreRetryBaseDelay),
		pageSize: cfg.ScanPageSize,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    newID,
	}
}

// Create stores the content of in under a fresh file id and persists its
// metadata. The blob is written first: a failure in between leaves an
// orphaned blob, never a record pointing at missing content.
func (s *FileService) Create(ctx context.Context, id models.Identity, in *models.File) (*models.File, error) {
	if id.Subject == "" {
		return nil, fmt.Errorf("missing subject: %w", common.ErrForbidden)
	}
	if in == nil || len(in.InlineData) == 0 {
		return nil, fmt.Errorf("data is required: %w", common.ErrInvalidRequest)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("name is required: %w", common.ErrInvalidRequest)
	}
	if in.SizeBytes < 0 {
		return nil, fmt.Errorf("negative size_bytes: %w", common.ErrInvalidRequest)
	}
	if in.AlbumID != "" {
		if err := s.checkAlbumTarget(ctx, in.AlbumID, id.Subject); err != nil {
			return nil, err
		}
	}

	now := s.now()
	f := &models.File{
		FileID:           s.newID(),
		OwnerSubject:     id.Subject,
		Name:             in.Name,
		ContentType:      in.ContentType,
		SizeBytes:        in.SizeBytes,
		CreatedAt:        now,
		UpdatedAt:        now,
		SharedWithEmails: normalizeEmails(in.SharedWithEmails),
		AlbumID:          in.AlbumID,
	}
	if f.ContentType == "" {
		f.ContentType = DefaultContentType
	}
	if f.SizeBytes == 0 {
		f.SizeBytes = int64(len(in.InlineData))
	}
	f.BlobKey = naming.BlobKey(id.Email, f.Name, f.ContentType, f.FileID)

	if err := s.retry.do(ctx, func(ctx context.Context) error {
		return s.blobs.Put(ctx, f.BlobKey, in.InlineData)
	}); err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}

	if err := s.retry.do(ctx, func(ctx context.Context) error {
		return s.files.Put(ctx, f)
	}); err != nil {
		s.logger.Warn(ctx, "orphaned blob after failed metadata write", "blob_key", f.BlobKey, "error", err)
		return nil, fmt.Errorf("failed to store metadata: %w", err)
	}

	s.logger.Info(ctx, "file created", "file_id", f.FileID, "owner", f.OwnerSubject)
	return f, nil
}

// Fetch returns the file with its content attached as InlineData.
func (s *FileService) Fetch(ctx context.Context, id models.Identity, fileID string) (*models.File, error) {
	if fileID == "" {
		return nil, fmt.Errorf("file_id is required: %w", common.ErrInvalidRequest)
	}

	f, err := s.getFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	var album *models.Album
	if f.AlbumID != "" && !access.CanRead(f, nil, id.Subject, id.Email) {
		album, err = s.getAlbum(ctx, f.AlbumID)
		switch {
		case errors.Is(err, common.ErrNotFound):
			album = nil
		case err != nil:
			return nil, err
		}
	}
	if !access.CanRead(f, album, id.Subject, id.Email) {
		return nil, errDenied
	}

	if f.BlobKey == "" {
		s.logger.Error(ctx, "file record without blob key", "file_id", f.FileID)
		return nil, fmt.Errorf("file %s has no blob key: %w", f.FileID, common.ErrCorruptRecord)
	}

	data, err := withRetry(ctx, s.retry, func(ctx context.Context) ([]byte, error) {
		return s.blobs.Get(ctx, f.BlobKey)
	})
	if errors.Is(err, common.ErrNotFound) {
		return nil, s.missingContent(ctx, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	f.InlineData = data
	return f, nil
}

// missingContent decides what a missing blob means. If the record is gone
// too, the file was deleted concurrently and the caller gets NotFound. If
// the record is still there it points at nothing, which is corruption.
func (s *FileService) missingContent(ctx context.Context, f *models.File) error {
	if _, err := s.getFile(ctx, f.FileID); err != nil {
		return err
	}
	s.logger.Error(ctx, "file record points at missing blob", "file_id", f.FileID, "blob_key", f.BlobKey)
	return fmt.Errorf("file %s: blob %s missing: %w", f.FileID, f.BlobKey, common.ErrCorruptRecord)
}

// List returns the caller's own files and, separately, the files shared
// with the caller's email directly or through an album. Shared files are
// deduplicated by file id. The three scans are not a consistent snapshot.
func (s *FileService) List(ctx context.Context, id models.Identity) (*models.FileList, error) {
	out := &models.FileList{MyFiles: []*models.File{}, SharedFiles: []*models.File{}}

	if id.Subject != "" {
		mine, err := s.scanFiles(ctx, files.Filter{OwnerSubject: id.Subject})
		if err != nil {
			return nil, err
		}
		sortFiles(mine)
		out.MyFiles = mine
	}

	if id.Email == "" {
		return out, nil
	}

	seen := make(map[string]struct{})
	addShared := func(fs []*models.File) {
		for _, f := range fs {
			if id.Subject != "" && f.OwnerSubject == id.Subject {
				continue
			}
			if _, ok := seen[f.FileID]; ok {
				continue
			}
			seen[f.FileID] = struct{}{}
			out.SharedFiles = append(out.SharedFiles, f)
		}
	}

	direct, err := s.scanFiles(ctx, files.Filter{SharedWithEmail: id.Email})
	if err != nil {
		return nil, err
	}
	addShared(direct)

	sharedAlbums, err := s.scanAlbums(ctx, albums.Filter{SharedWithEmail: id.Email})
	if err != nil {
		return nil, err
	}
	for _, a := range sharedAlbums {
		members, err := s.scanFiles(ctx, files.Filter{AlbumID: a.AlbumID})
		if err != nil {
			return nil, err
		}
		addShared(members)
	}

	sortFiles(out.SharedFiles)
	return out, nil
}

// Edit applies patch to the stored file as a field-wise shallow merge and
// replaces the record in place. Only the owner may edit, and ownership can
// not be reassigned.
func (s *FileService) Edit(ctx context.Context, id models.Identity, patch *models.FilePatch) (*models.File, error) {
	if patch == nil || patch.FileID == "" {
		return nil, fmt.Errorf("file_id is required: %w", common.ErrInvalidRequest)
	}

	cur, err := s.getFile(ctx, patch.FileID)
	if err != nil {
		return nil, err
	}
	if !access.CanWrite(cur, id.Subject) {
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
	if patch.ContentType != nil {
		merged.ContentType = *patch.ContentType
		if merged.ContentType == "" {
			merged.ContentType = DefaultContentType
		}
	}
	if patch.SizeBytes != nil {
		if *patch.SizeBytes < 0 {
			return nil, fmt.Errorf("negative size_bytes: %w", common.ErrInvalidRequest)
		}
		merged.SizeBytes = *patch.SizeBytes
	}
	if patch.SharedWithEmails != nil {
		merged.SharedWithEmails = normalizeEmails(*patch.SharedWithEmails)
	}
	if patch.AlbumID != nil && *patch.AlbumID != cur.AlbumID {
		if *patch.AlbumID != "" {
			if err := s.checkAlbumTarget(ctx, *patch.AlbumID, id.Subject); err != nil {
				return nil, err
			}
		}
		merged.AlbumID = *patch.AlbumID
	}

	if patch.InlineData != nil {
		if merged.BlobKey == "" {
			merged.BlobKey = naming.BlobKey(id.Email, merged.Name, merged.ContentType, merged.FileID)
		}
		if err := s.retry.do(ctx, func(ctx context.Context) error {
			return s.blobs.Put(ctx, merged.BlobKey, patch.InlineData)
		}); err != nil {
			return nil, fmt.Errorf("failed to store content: %w", err)
		}
		if patch.SizeBytes == nil {
			merged.SizeBytes = int64(len(patch.InlineData))
		}
	}

	merged.UpdatedAt = s.now()

	// a concurrent Delete must not be undone
	err = s.retry.do(ctx, func(ctx context.Context) error {
		return s.files.Replace(ctx, merged)
	})
	if errors.Is(err, common.ErrNotFound) {
		if patch.InlineData != nil {
			s.discardBlob(ctx, merged.FileID, merged.BlobKey)
		}
		return nil, fmt.Errorf("file %s was deleted: %w", merged.FileID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store metadata: %w", err)
	}

	s.logger.Info(ctx, "file updated", "file_id", merged.FileID)
	return merged, nil
}

// Delete removes the record first and then makes a best-effort attempt on
// the blob. A leftover blob is wasted storage, never a dangling reference.
func (s *FileService) Delete(ctx context.Context, id models.Identity, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("file_id is required: %w", common.ErrInvalidRequest)
	}

	f, err := s.getFile(ctx, fileID)
	if err != nil {
		return err
	}
	if !access.CanWrite(f, id.Subject) {
		return fmt.Errorf("only the owner may delete: %w", common.ErrForbidden)
	}

	if err := s.retry.do(ctx, func(ctx context.Context) error {
		return s.files.Delete(ctx, fileID)
	}); err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	if f.BlobKey != "" {
		s.discardBlob(ctx, fileID, f.BlobKey)
	}

	s.logger.Info(ctx, "file deleted", "file_id", fileID)
	return nil
}

// discardBlob deletes key on a best-effort basis; failures are only logged.
func (s *FileService) discardBlob(ctx context.Context, fileID, key string) {
	if err := s.retry.do(ctx, func(ctx context.Context) error {
		return s.blobs.Delete(ctx, key)
	}); err != nil {
		s.logger.Warn(ctx, "failed to delete blob", "file_id", fileID, "blob_key", key, "error", err)
	}
}

// checkAlbumTarget verifies a file may be placed into albumID.
func (s *FileService) checkAlbumTarget(ctx context.Context, albumID, subject string) error {
	a, err := s.getAlbum(ctx, albumID)
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("album %s does not exist: %w", albumID, common.ErrInvalidRequest)
	}
	if err != nil {
		return err
	}
	if !access.CanWriteAlbum(a, subject) {
		return fmt.Errorf("album %s belongs to another user: %w", albumID, common.ErrForbidden)
	}
	return nil
}

func (s *FileService) getFile(ctx context.Context, fileID string) (*models.File, error) {
	return withRetry(ctx, s.retry, func(ctx context.Context) (*models.File, error) {
		return s.files.Get(ctx, fileID)
	})
}

func (s *FileService) getAlbum(ctx context.Context, albumID string) (*models.Album, error) {
	return withRetry(ctx, s.retry, func(ctx context.Context) (*models.Album, error) {
		return s.albums.Get(ctx, albumID)
	})
}

func (s *FileService) scanFiles(ctx context.Context, filter files.Filter) ([]*models.File, error) {
	return scanAll(ctx, s.retry, s.pageSize, func(ctx context.Context, cursor string, limit int) ([]*models.File, string, error) {
		return s.files.Scan(ctx, filter, cursor, limit)
	})
}

func (s *FileService) scanAlbums(ctx context.Context, filter albums.Filter) ([]*models.Album, error) {
	return scanAll(ctx, s.retry, s.pageSize, func(ctx context.Context, cursor string, limit int) ([]*models.Album, string, error) {
		return s.albums.Scan(ctx, filter, cursor, limit)
	})
}

type scanFunc[T any] func(ctx context.Context, cursor string, limit int) ([]*T, string, error)

// scanAll follows cursors until the last page. Each page is retried on
// its own.
func scanAll[T any](ctx context.Context, r retrier, pageSize int, scan scanFunc[T]) ([]*T, error) {
	type page struct {
		items []*T
		next  string
	}

	var (
		out    = []*T{}
		cursor string
	)
	for {
		p, err := withRetry(ctx, r, func(ctx context.Context) (page, error) {
			items, next, err := scan(ctx, cursor, pageSize)
			return page{items: items, next: next}, err
		})
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		out = append(out, p.items...)
		if p.next == "" {
			return out, nil
		}
		cursor = p.next
	}
}
