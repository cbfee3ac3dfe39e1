package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophalbum/internal/common"
	"github.com/dmitrijs2005/gophalbum/internal/logging"
	"github.com/dmitrijs2005/gophalbum/internal/server/blobs"
	"github.com/dmitrijs2005/gophalbum/internal/server/config"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/albums"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/repomanager"
)

var (
	alice = models.Identity{Subject: "u-alice", Email: "alice@example.com"}
	bob   = models.Identity{Subject: "u-bob", Email: "bob@example.com"}
	carol = models.Identity{Subject: "u-carol", Email: "carol@example.com"}

	errUnavailable = fmt.Errorf("%w: connection reset", common.ErrUnavailable)
)

func ptr[T any](v T) *T { return &v }

// fakeManager hands out the given repositories.
type fakeManager struct {
	repomanager.RepositoryManager
	files  files.Repository
	albums albums.Repository
}

func (m *fakeManager) Files() files.Repository   { return m.files }
func (m *fakeManager) Albums() albums.Repository { return m.albums }

// hookFiles wraps a real repository with scripted failures, call counting
// and a one-shot hook that runs after the next successful Get.
type hookFiles struct {
	files.Repository

	getErrs  []error
	putErrs  []error
	scanErrs []error
	afterGet func()

	getCalls  int
	putCalls  int
	scanCalls int
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (h *hookFiles) Get(ctx context.Context, fileID string) (*models.File, error) {
	h.getCalls++
	if err := pop(&h.getErrs); err != nil {
		return nil, err
	}
	f, err := h.Repository.Get(ctx, fileID)
	if err == nil && h.afterGet != nil {
		fn := h.afterGet
		h.afterGet = nil
		fn()
	}
	return f, err
}

func (h *hookFiles) Put(ctx context.Context, f *models.File) error {
	h.putCalls++
	if err := pop(&h.putErrs); err != nil {
		return err
	}
	return h.Repository.Put(ctx, f)
}

// Replace shares putErrs and putCalls with Put.
func (h *hookFiles) Replace(ctx context.Context, f *models.File) error {
	h.putCalls++
	if err := pop(&h.putErrs); err != nil {
		return err
	}
	return h.Repository.Replace(ctx, f)
}

func (h *hookFiles) Scan(ctx context.Context, filter files.Filter, cursor string, limit int) ([]*models.File, string, error) {
	h.scanCalls++
	if err := pop(&h.scanErrs); err != nil {
		return nil, "", err
	}
	return h.Repository.Scan(ctx, filter, cursor, limit)
}

type hookBlobs struct {
	*blobs.MemoryStore

	putErrs []error
	getErrs []error
	delErrs []error

	putCalls int
	delCalls int
}

func (h *hookBlobs) Put(ctx context.Context, key string, data []byte) error {
	h.putCalls++
	if err := pop(&h.putErrs); err != nil {
		return err
	}
	return h.MemoryStore.Put(ctx, key, data)
}

func (h *hookBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	if err := pop(&h.getErrs); err != nil {
		return nil, err
	}
	return h.MemoryStore.Get(ctx, key)
}

func (h *hookBlobs) Delete(ctx context.Context, key string) error {
	h.delCalls++
	if err := pop(&h.delErrs); err != nil {
		return err
	}
	return h.MemoryStore.Delete(ctx, key)
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type env struct {
	files  *FileService
	albums *AlbumService

	fileRepo  *hookFiles
	albumRepo albums.Repository
	blobs     *hookBlobs
}

func newEnv(t *testing.T) *env {
	t.Helper()

	m := repomanager.NewMemoryRepositoryManager()
	hf := &hookFiles{Repository: m.Files()}
	hb := &hookBlobs{MemoryStore: blobs.NewMemoryStore()}
	fm := &fakeManager{files: hf, albums: m.Albums()}

	cfg := &config.Config{
		StoreRetryAttempts:  3,
		StoreRetryBaseDelay: time.Millisecond,
		ScanPageSize:        2,
	}
	c := &clock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}

	fs := NewFileService(fm, hb, cfg, logging.Discard())
	fs.now = c.now
	as := NewAlbumService(fm, cfg, logging.Discard())
	as.now = c.now

	return &env{files: fs, albums: as, fileRepo: hf, albumRepo: m.Albums(), blobs: hb}
}

func (e *env) create(t *testing.T, id models.Identity, in *models.File) *models.File {
	t.Helper()
	if in.InlineData == nil {
		in.InlineData = []byte("content of " + in.Name)
	}
	f, err := e.files.Create(context.Background(), id, in)
	if err != nil {
		t.Fatalf("create %s: %v", in.Name, err)
	}
	return f
}

func (e *env) album(t *testing.T, id models.Identity, name string, shared ...string) *models.Album {
	t.Helper()
	a, err := e.albums.CreateAlbum(context.Background(), id, &models.Album{Name: name, SharedWithEmails: shared})
	if err != nil {
		t.Fatalf("create album %s: %v", name, err)
	}
	return a
}

func fileIDs(fs []*models.File) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.FileID)
	}
	return out
}
