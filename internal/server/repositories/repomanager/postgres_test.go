package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return db, mock
}

func stubGoose(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestNewPostgresRepositoryManager_RunsMigrations(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var gotDir string
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	})

	m, err := NewPostgresRepositoryManager(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, ".", gotDir)
	assert.NotNil(t, m.Files())
	assert.NotNil(t, m.Albums())

	var _ RepositoryManager = m
}

func TestNewPostgresRepositoryManager_MigrationError(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	})

	_, err := NewPostgresRepositoryManager(context.Background(), db)
	require.ErrorContains(t, err, "boom")
}

func TestOpenPostgres_PingError(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	orig := sqlOpen
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driverName)
		return db, nil
	}
	t.Cleanup(func() { sqlOpen = orig })

	_, err := OpenPostgres(context.Background(), "postgres://x")
	require.ErrorContains(t, err, "db ping error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenPostgres_Success(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing()
	mock.ExpectClose()

	orig := sqlOpen
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { sqlOpen = orig })
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error { return nil })

	m, err := OpenPostgres(context.Background(), "postgres://x")
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}
