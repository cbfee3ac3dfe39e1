package blobs

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophalbum/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New(context.Background(), &config.Config{BlobBackend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(context.Background(), &config.Config{BlobBackend: config.BackendS3, S3Bucket: "b", S3Region: "us-east-1"})
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, s)

	_, err = New(context.Background(), &config.Config{BlobBackend: "ftp"})
	require.Error(t, err)
}
