// Package models defines server-side data models persisted by the
// metadata repositories and exchanged with the HTTP layer.
package models

import "time"

// File describes the metadata of an uploaded binary. The bytes themselves
// live in the blob store under BlobKey.
type File struct {
	// FileID is assigned server-side on creation and never changes.
	FileID string `json:"file_id"`
	// OwnerSubject is the subject that created the file. Immutable.
	OwnerSubject string `json:"owner_subject"`

	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// SharedWithEmails grants read-only access.
	SharedWithEmails []string `json:"shared_with_emails"`
	// AlbumID is empty for unfiled files.
	AlbumID string `json:"album_id,omitempty"`

	// BlobKey is the blob store key of the content.
	BlobKey string `json:"blob_key,omitempty"`

	// InlineData carries the content on the wire only (base64 in JSON).
	// Repositories never persist it.
	InlineData []byte `json:"data,omitempty"`
}

// Clone returns a deep copy of f.
func (f *File) Clone() *File {
	if f == nil {
		return nil
	}
	c := *f
	c.SharedWithEmails = cloneStrings(f.SharedWithEmails)
	if f.InlineData != nil {
		c.InlineData = append([]byte(nil), f.InlineData...)
	}
	return &c
}

// WithoutData returns a copy of f stripped of InlineData, i.e. the shape
// that is safe to persist.
func (f *File) WithoutData() *File {
	c := f.Clone()
	c.InlineData = nil
	return c
}

// FilePatch is a partial edit payload. A nil field is absent and leaves
// the stored value alone.
type FilePatch struct {
	FileID string `json:"file_id"`

	OwnerSubject     *string   `json:"owner_subject,omitempty"`
	Name             *string   `json:"name,omitempty"`
	ContentType      *string   `json:"content_type,omitempty"`
	SizeBytes        *int64    `json:"size_bytes,omitempty"`
	SharedWithEmails *[]string `json:"shared_with_emails,omitempty"`
	AlbumID          *string   `json:"album_id,omitempty"`

	// InlineData replaces the content when non-nil.
	InlineData []byte `json:"data,omitempty"`
}

// FileList is the result of listing the files visible to a caller.
type FileList struct {
	MyFiles     []*File `json:"my_files"`
	SharedFiles []*File `json:"shared_files"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
