// Package files persists File metadata records. Implementations never
// store InlineData.
package files

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/gophalbum/internal/server/models"
)

// Filter is the portable scan predicate. Set fields are AND-ed, empty
// fields are ignored.
type Filter struct {
	OwnerSubject    string
	SharedWithEmail string
	AlbumID         string
}

// Match evaluates the filter in process. Backends with native indexes may
// translate the filter instead, with identical results.
func (f Filter) Match(file *models.File) bool {
	if f.OwnerSubject != "" && file.OwnerSubject != f.OwnerSubject {
		return false
	}
	if f.SharedWithEmail != "" && !slices.Contains(file.SharedWithEmails, f.SharedWithEmail) {
		return false
	}
	if f.AlbumID != "" && file.AlbumID != f.AlbumID {
		return false
	}
	return true
}

// Repository is the File table of the metadata store.
//
// Get returns common.ErrNotFound for a missing id. Put replaces the record
// in place, creating it when absent. Replace only overwrites an existing
// record and returns common.ErrNotFound otherwise. Delete of a missing id
// succeeds. Scan returns one page of
// matches in file_id order after cursor plus the next cursor ("" when
// done); a record written just before a scan may be missing from it.
type Repository interface {
	Get(ctx context.Context, fileID string) (*models.File, error)
	Put(ctx context.Context, file *models.File) error
	Replace(ctx context.Context, file *models.File) error
	Delete(ctx context.Context, fileID string) error
	Scan(ctx context.Context, filter Filter, cursor string, limit int) ([]*models.File, string, error)
}

type codec struct{}

func (codec) Key(f *models.File) string         { return f.FileID }
func (codec) Clone(f *models.File) *models.File { return f.WithoutData() }
