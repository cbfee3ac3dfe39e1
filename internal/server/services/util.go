package services

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dmitrijs2005/gophalbum/internal/server/models"
	"github.com/google/uuid"
)

// DefaultContentType is stored when the client does not name one.
const DefaultContentType = "application/octet-stream"

func newID() string {
	return uuid.NewString()
}

// normalizeEmails trims entries, drops blanks and duplicates, keeping the
// first occurrence order. Comparison stays exact otherwise.
func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.TrimSpace(e)
		if e == "" || slices.Contains(out, e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func sortFiles(fs []*models.File) {
	slices.SortFunc(fs, func(a, b *models.File) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.FileID, b.FileID)
	})
}
