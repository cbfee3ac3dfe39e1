package models

import "time"

// Album groups files and can be shared as a whole. File.AlbumID is the
// source of truth for membership; FileIDs is filled in on read.
type Album struct {
	AlbumID          string    `json:"album_id"`
	OwnerSubject     string    `json:"owner_subject"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	SharedWithEmails []string  `json:"shared_with_emails"`
	FileIDs          []string  `json:"file_ids,omitempty"`
}

// Clone returns a deep copy of a.
func (a *Album) Clone() *Album {
	if a == nil {
		return nil
	}
	c := *a
	c.SharedWithEmails = cloneStrings(a.SharedWithEmails)
	c.FileIDs = cloneStrings(a.FileIDs)
	return &c
}

// AlbumPatch is a partial album edit payload.
type AlbumPatch struct {
	AlbumID string `json:"album_id"`

	OwnerSubject     *string   `json:"owner_subject,omitempty"`
	Name             *string   `json:"name,omitempty"`
	SharedWithEmails *[]string `json:"shared_with_emails,omitempty"`
}
