package albums

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophalbum/internal/common"
	"github.com/dmitrijs2005/gophalbum/internal/dbx"
	"github.com/dmitrijs2005/gophalbum/internal/server/models"
)

const albumColumns = `album_id, owner_subject, name, created_at, updated_at, shared_with_emails`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, albumID string) (*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums WHERE album_id=$1`

	a, err := scanAlbum(r.db.QueryRowContext(ctx, query, albumID))
	if err != nil {
		return nil, fmt.Errorf("failed to select album: %w", dbx.Classify(err))
	}
	return a, nil
}

func (r *PostgresRepository) Put(ctx context.Context, album *models.Album) error {
	query := `
		INSERT INTO albums (` + albumColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (album_id)
		DO UPDATE SET
			owner_subject = EXCLUDED.owner_subject,
			name = EXCLUDED.name,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			shared_with_emails = EXCLUDED.shared_with_emails;
	`
	b, err := encodeEmails(album.SharedWithEmails)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		album.AlbumID, album.OwnerSubject, album.Name, album.CreatedAt, album.UpdatedAt, b)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}

// Replace updates an existing album; common.ErrNotFound when it is gone.
func (r *PostgresRepository) Replace(ctx context.Context, album *models.Album) error {
	query := `
		UPDATE albums SET
			owner_subject = $2,
			name = $3,
			created_at = $4,
			updated_at = $5,
			shared_with_emails = $6
		WHERE album_id = $1;
	`
	b, err := encodeEmails(album.SharedWithEmails)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query,
		album.AlbumID, album.OwnerSubject, album.Name, album.CreatedAt, album.UpdatedAt, b)
	if err != nil {
		return fmt.Errorf("failed to update album: %w", dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update album: %w", dbx.Classify(err))
	}
	if n == 0 {
		return fmt.Errorf("album %s: %w", album.AlbumID, common.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, albumID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM albums WHERE album_id=$1`, albumID); err != nil {
		return fmt.Errorf("failed to delete album: %w", dbx.Classify(err))
	}
	return nil
}

func (r *PostgresRepository) Scan(ctx context.Context, filter Filter, cursor string, limit int) ([]*models.Album, string, error) {
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
	if cursor != "" {
		add("album_id > $%d", cursor)
	}

	query := `SELECT ` + albumColumns + ` FROM albums`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY album_id`
	if limit > 0 {
		args = append(args, limit+1)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to select albums: %w", dbx.Classify(err))
	}
	defer rows.Close()

	var result []*models.Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, "", err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, "", dbx.Classify(err)
	}

	var next string
	if limit > 0 && len(result) > limit {
		result = result[:limit]
		next = result[limit-1].AlbumID
	}
	return result, next, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlbum(row rowScanner) (*models.Album, error) {
	var (
		a      models.Album
		emails []byte
	)
	if err := row.Scan(&a.AlbumID, &a.OwnerSubject, &a.Name, &a.CreatedAt, &a.UpdatedAt, &emails); err != nil {
		return nil, err
	}
	if len(emails) > 0 {
		if err := json.Unmarshal(emails, &a.SharedWithEmails); err != nil {
			return nil, fmt.Errorf("failed to decode shared_with_emails: %w", err)
		}
	}
	return &a, nil
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
