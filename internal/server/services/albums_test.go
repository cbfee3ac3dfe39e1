package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophalbum/internal/common"
	"github.com/dmitrijs2005/gophalbum/internal/logging"
	"github.com/dmitrijs2005/gophalbum/internal/server/config"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/albums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAlbum(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a, err := e.albums.CreateAlbum(ctx, alice, &models.Album{Name: "Trip", OwnerSubject: "ignored", SharedWithEmails: []string{bob.Email, bob.Email}})
	require.NoError(t, err)
	assert.NotEmpty(t, a.AlbumID)
	assert.Equal(t, alice.Subject, a.OwnerSubject)
	assert.Equal(t, []string{bob.Email}, a.SharedWithEmails)

	_, err = e.albums.CreateAlbum(ctx, alice, &models.Album{})
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	_, err = e.albums.CreateAlbum(ctx, models.Identity{}, &models.Album{Name: "x"})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestFetchAlbum_ResolvesMembers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.album(t, alice, "Trip", bob.Email)
	f1 := e.create(t, alice, &models.File{Name: "1", AlbumID: a.AlbumID})
	f2 := e.create(t, alice, &models.File{Name: "2", AlbumID: a.AlbumID})
	f3 := e.create(t, alice, &models.File{Name: "3", AlbumID: a.AlbumID})
	e.create(t, alice, &models.File{Name: "loose"})

	got, err := e.albums.FetchAlbum(ctx, alice, a.AlbumID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f1.FileID, f2.FileID, f3.FileID}, got.FileIDs)

	got, err = e.albums.FetchAlbum(ctx, bob, a.AlbumID)
	require.NoError(t, err)
	assert.Len(t, got.FileIDs, 3)

	_, err = e.albums.FetchAlbum(ctx, carol, a.AlbumID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = e.albums.FetchAlbum(ctx, alice, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	stored, err := e.albumRepo.Get(ctx, a.AlbumID)
	require.NoError(t, err)
	assert.Nil(t, stored.FileIDs, "member list is derived, never stored")
}

func TestEditAlbum(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.album(t, alice, "Trip", bob.Email)

	after, err := e.albums.EditAlbum(ctx, alice, &models.AlbumPatch{AlbumID: a.AlbumID, Name: ptr("Trip 2026")})
	require.NoError(t, err)
	assert.Equal(t, "Trip 2026", after.Name)
	assert.Equal(t, []string{bob.Email}, after.SharedWithEmails)
	assert.Equal(t, a.CreatedAt, after.CreatedAt)
	assert.True(t, after.UpdatedAt.After(a.UpdatedAt))

	after, err = e.albums.EditAlbum(ctx, alice, &models.AlbumPatch{AlbumID: a.AlbumID, SharedWithEmails: &[]string{}})
	require.NoError(t, err)
	assert.Empty(t, after.SharedWithEmails)
	assert.Equal(t, "Trip 2026", after.Name)
}

func TestEditAlbum_Forbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.album(t, alice, "Trip", bob.Email)

	_, err := e.albums.EditAlbum(ctx, bob, &models.AlbumPatch{AlbumID: a.AlbumID, Name: ptr("mine")})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = e.albums.EditAlbum(ctx, alice, &models.AlbumPatch{AlbumID: a.AlbumID, OwnerSubject: ptr(bob.Subject)})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = e.albums.EditAlbum(ctx, alice, &models.AlbumPatch{AlbumID: a.AlbumID, Name: ptr("")})
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	_, err = e.albums.EditAlbum(ctx, alice, &models.AlbumPatch{})
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	stored, err := e.albumRepo.Get(ctx, a.AlbumID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", stored.Name)
	assert.Equal(t, alice.Subject, stored.OwnerSubject)
}

func TestDeleteAlbum_KeepsFiles(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.album(t, alice, "Trip")
	f := e.create(t, alice, &models.File{Name: "1", AlbumID: a.AlbumID})

	assert.ErrorIs(t, e.albums.DeleteAlbum(ctx, bob, a.AlbumID), common.ErrForbidden)
	require.NoError(t, e.albums.DeleteAlbum(ctx, alice, a.AlbumID))
	assert.ErrorIs(t, e.albums.DeleteAlbum(ctx, alice, a.AlbumID), common.ErrNotFound)

	got, err := e.files.Fetch(ctx, alice, f.FileID)
	require.NoError(t, err)
	assert.Equal(t, a.AlbumID, got.AlbumID)
}

// deletingAlbums removes the album right after the first successful Get.
type deletingAlbums struct {
	albums.Repository
	done bool
}

func (d *deletingAlbums) Get(ctx context.Context, albumID string) (*models.Album, error) {
	a, err := d.Repository.Get(ctx, albumID)
	if err == nil && !d.done {
		d.done = true
		if derr := d.Repository.Delete(ctx, albumID); derr != nil {
			return nil, derr
		}
	}
	return a, err
}

func TestEditAlbum_DeleteDuringEditStaysDeleted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.album(t, alice, "Trip")

	repo := &deletingAlbums{Repository: e.albumRepo}
	cfg := &config.Config{StoreRetryAttempts: 1, StoreRetryBaseDelay: time.Millisecond, ScanPageSize: 2}
	svc := NewAlbumService(&fakeManager{files: e.fileRepo, albums: repo}, cfg, logging.Discard())

	got, err := svc.EditAlbum(ctx, alice, &models.AlbumPatch{AlbumID: a.AlbumID, Name: ptr("Renamed")})
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Nil(t, got)

	_, err = e.albumRepo.Get(ctx, a.AlbumID)
	require.ErrorIs(t, err, common.ErrNotFound)
}
