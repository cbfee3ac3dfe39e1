package repomanager

import (
	"context"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophalbum/internal/filex"
	"github.com/dmitrijs2005/gophalbum/internal/logging"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/albums"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/files"
)

// BadgerRepositoryManager keeps both tables in one embedded badger
// database, separated by key prefix.
type BadgerRepositoryManager struct {
	db     *badger.DB
	files  *files.BadgerRepository
	albums *albums.BadgerRepository
}

var badgerOpen = badger.Open

// OpenBadger opens (or creates) the database under dir. An empty dir runs
// badger fully in memory.
func OpenBadger(dir string, logger logging.Logger) (*BadgerRepositoryManager, error) {
	if dir != "" {
		abs, err := filex.EnsureDir(dir)
		if err != nil {
			return nil, err
		}
		dir = abs
	}

	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{l: logger.With("module", "badger")})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badgerOpen(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open error: %w", err)
	}
	return NewBadgerRepositoryManager(db), nil
}

func NewBadgerRepositoryManager(db *badger.DB) *BadgerRepositoryManager {
	return &BadgerRepositoryManager{
		db:     db,
		files:  files.NewBadgerRepository(db),
		albums: albums.NewBadgerRepository(db),
	}
}

func (m *BadgerRepositoryManager) Files() files.Repository   { return m.files }
func (m *BadgerRepositoryManager) Albums() albums.Repository { return m.albums }
func (m *BadgerRepositoryManager) Close() error              { return m.db.Close() }

// badgerLogger forwards badger's printf-style logging to our logger.
type badgerLogger struct {
	l logging.Logger
}

func (b badgerLogger) Errorf(format string, args ...any) {
	b.l.Error(context.Background(), msg(format, args))
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.l.Warn(context.Background(), msg(format, args))
}

func (b badgerLogger) Infof(format string, args ...any) {
	b.l.Info(context.Background(), msg(format, args))
}

func (b badgerLogger) Debugf(format string, args ...any) {
	b.l.Debug(context.Background(), msg(format, args))
}

func msg(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
