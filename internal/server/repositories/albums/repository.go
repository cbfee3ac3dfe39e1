// Package albums persists Album metadata records. FileIDs is derived from
// the files table on read and is never stored.
package albums

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/gophalbum/internal/server/models"
)

// Filter is the portable album scan predicate.
type Filter struct {
	OwnerSubject    string
	SharedWithEmail string
}

func (f Filter) Match(a *models.Album) bool {
	if f.OwnerSubject != "" && a.OwnerSubject != f.OwnerSubject {
		return false
	}
	if f.SharedWithEmail != "" && !slices.Contains(a.SharedWithEmails, f.SharedWithEmail) {
		return false
	}
	return true
}

// Repository is the Album table of the metadata store. It follows the
// same contract as files.Repository.
type Repository interface {
	Get(ctx context.Context, albumID string) (*models.Album, error)
	Put(ctx context.Context, album *models.Album) error
	Replace(ctx context.Context, album *models.Album) error
	Delete(ctx context.Context, albumID string) error
	Scan(ctx context.Context, filter Filter, cursor string, limit int) ([]*models.Album, string, error)
}

type codec struct{}

func (codec) Key(a *models.Album) string { return a.AlbumID }
func (codec) Clone(a *models.Album) *models.Album {
	c := a.Clone()
	c.FileIDs = nil
	return c
}
