// Package access decides who may read or write a file or album.
// Everything here is pure: no I/O, and only server-side state is consulted.
package access

import (
	"slices"

	"github.com/dmitrijs2005/gophalbum/internal/server/models"
)

// CanRead reports whether subject (with verified email) may read file.
// The owner always can; otherwise the email must be on the file's share
// list or, when album is non-nil, on the album's share list.
func CanRead(file *models.File, album *models.Album, subject, email string) bool {
	if file == nil {
		return false
	}
	if subject != "" && subject == file.OwnerSubject {
		return true
	}
	if sharedWith(file.SharedWithEmails, email) {
		return true
	}
	return album != nil && sharedWith(album.SharedWithEmails, email)
}

// CanWrite reports whether subject may modify or delete file. Sharing
// never grants write access.
func CanWrite(file *models.File, subject string) bool {
	return file != nil && subject != "" && subject == file.OwnerSubject
}

// CanReadAlbum reports whether subject may read album metadata.
func CanReadAlbum(album *models.Album, subject, email string) bool {
	if album == nil {
		return false
	}
	if subject != "" && subject == album.OwnerSubject {
		return true
	}
	return sharedWith(album.SharedWithEmails, email)
}

// CanWriteAlbum reports whether subject owns album.
func CanWriteAlbum(album *models.Album, subject string) bool {
	return album != nil && subject != "" && subject == album.OwnerSubject
}

func sharedWith(emails []string, email string) bool {
	return email != "" && slices.Contains(emails, email)
}
