package repomanager

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophalbum/internal/logging"
	"github.com/dmitrijs2005/gophalbum/internal/server/config"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/albums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Memory(t *testing.T) {
	m, err := New(context.Background(), &config.Config{MetadataBackend: config.BackendMemory}, logging.Discard())
	require.NoError(t, err)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Files().Put(ctx, &models.File{FileID: "f1"}))
	_, err = m.Files().Get(ctx, "f1")
	require.NoError(t, err)
}

func TestNew_BadgerInMemory(t *testing.T) {
	m, err := New(context.Background(), &config.Config{MetadataBackend: config.BackendBadger}, logging.Discard())
	require.NoError(t, err)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Albums().Put(ctx, &models.Album{AlbumID: "al1", Name: "x"}))
	require.NoError(t, m.Files().Put(ctx, &models.File{FileID: "al1"}))

	// albums and files share one database but not a keyspace
	page, _, err := m.Albums().Scan(ctx, albums.Filter{}, "", 0)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestNew_BadgerDir(t *testing.T) {
	m, err := New(context.Background(), &config.Config{MetadataBackend: config.BackendBadger, BadgerDir: t.TempDir()}, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, m.Close())
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(context.Background(), &config.Config{MetadataBackend: "mongo"}, logging.Discard())
	require.Error(t, err)
}
