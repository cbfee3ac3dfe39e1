package files

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophalbum/internal/common"
	"github.com/dmitrijs2005/gophalbum/internal/dbx"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
)

const fileColumns = `file_id, owner_subject, name, content_type, size_bytes, created_at, updated_at, shared_with_emails, album_id, blob_key`

// PostgresRepository implements file storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, fileID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE file_id=$1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, fileID))
	if err != nil {
		return nil, fmt.Errorf("failed to select file: %w", dbx.Classify(err))
	}
	return f, nil
}

// Put upserts the record by file_id with a single statement, so the row is
// replaced in place and never absent.
func (r *PostgresRepository) Put(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (file_id)
		DO UPDATE SET
			owner_subject = EXCLUDED.owner_subject,
			name = EXCLUDED.name,
			content_type = EXCLUDED.content_type,
			size_bytes = EXCLUDED.size_bytes,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			shared_with_emails = EXCLUDED.shared_with_emails,
			album_id = EXCLUDED.album_id,
			blob_key = EXCLUDED.blob_key;
	`
	emails, err := encodeEmails(file.SharedWithEmails)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		file.FileID, file.OwnerSubject, file.Name, file.ContentType, file.SizeBytes,
		file.CreatedAt, file.UpdatedAt, emails, nullString(file.AlbumID), file.BlobKey)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}

// Replace updates an existing row by file_id. Zero affected rows means the
// file is gone and nothing is written.
func (r *PostgresRepository) Replace(ctx context.Context, file *models.File) error {
	query := `
		UPDATE files SET
			owner_subject = $2,
			name = $3,
			content_type = $4,
			size_bytes = $5,
			created_at = $6,
			updated_at = $7,
			shared_with_emails = $8,
			album_id = $9,
			blob_key = $10
		WHERE file_id = $1;
	`
	emails, err := encodeEmails(file.SharedWithEmails)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query,
		file.FileID, file.OwnerSubject, file.Name, file.ContentType, file.SizeBytes,
		file.CreatedAt, file.UpdatedAt, emails, nullString(file.AlbumID), file.BlobKey)
	if err != nil {
		return fmt.Errorf("failed to update file: %w", dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update file: %w", dbx.Classify(err))
	}
	if n == 0 {
		return fmt.Errorf("file %s: %w", file.FileID, common.ErrNotFound)
	}
	return nil
}

// Delete removes the row; zero affected rows is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, fileID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE file_id=$1`, fileID); err != nil {
		return fmt.Errorf("failed to delete file: %w", dbx.Classify(err))
	}
	return nil
}

// Scan translates the filter into indexed predicates and pages with a
// keyset on file_id. One extra row is fetched to learn whether more follow.
func (r *PostgresRepository) Scan(ctx context.Context, filter Filter, cursor string, limit int) ([]*models.File, string, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.OwnerSubject != "" {
		add("owner_subject = $%d", filter.OwnerSubject)
	}
	if filter.SharedWithEmail != "" {
		add("shared_with_emails @> jsonb_build_array($%d::text)", filter.SharedWithEmail)
	}
	if filter.AlbumID != "" {
		add("album_id = $%d", filter.AlbumID)
	}
	if cursor != "" {
		add("file_id > $%d", cursor)
	}

	query := `SELECT ` + fileColumns + ` FROM files`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY file_id`
	if limit > 0 {
		args = append(args, limit+1)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to select files: %w", dbx.Classify(err))
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, "", err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, "", dbx.Classify(err)
	}

	var next string
	if limit > 0 && len(result) > limit {
		result = result[:limit]
		next = result[limit-1].FileID
	}
	return result, next, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*models.File, error) {
	var (
		f       models.File
		emails  []byte
		albumID sql.NullString
	)
	if err := row.Scan(&f.FileID, &f.OwnerSubject, &f.Name, &f.ContentType, &f.SizeBytes,
		&f.CreatedAt, &f.UpdatedAt, &emails, &albumID, &f.BlobKey); err != nil {
		return nil, err
	}
	if len(emails) > 0 {
		if err := json.Unmarshal(emails, &f.SharedWithEmails); err != nil {
			return nil, fmt.Errorf("failed to decode shared_with_emails: %w", err)
		}
	}
	f.AlbumID = albumID.String
	return &f, nil
}

func encodeEmails(emails []string) ([]byte, error) {
	if emails == nil {
		emails = []string{}
	}
	b, err := json.Marshal(emails)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shared_with_emails: %w", err)
	}
	return b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
