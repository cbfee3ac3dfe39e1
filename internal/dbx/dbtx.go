// Package dbx provides tiny DB abstractions shared by the postgres
// repositories: a minimal interface (DBTX) implemented by both *sql.DB and
// *sql.Tx, and the mapping of driver errors onto the common taxonomy.
package dbx

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dmitrijs2005/gophalbum/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// transient SQLSTATE classes and codes: connection exceptions, serialization
// failures, deadlocks, admin shutdown, too many connections.
var transientCodes = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"53300": {},
	"57P01": {},
	"57P02": {},
	"57P03": {},
}

// Classify wraps err so callers can match it: sql.ErrNoRows becomes
// common.ErrNotFound, connection-level and transient server failures become
// common.ErrUnavailable. Anything else, context errors included, is
// returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if IsTransient(err) {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return err
}

// IsTransient reports whether retrying the same statement may succeed.
// A canceled or expired context never is, even though pgconn reports it as
// a timeout.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		_, ok := transientCodes[pgErr.Code]
		return ok
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
