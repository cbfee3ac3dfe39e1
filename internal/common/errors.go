// Package common defines sentinel errors and constants shared by the
// storage, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Client errors. Never retried.
	ErrInvalidRequest = errors.New("invalid request")
	ErrForbidden      = errors.New("forbidden")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrCorruptRecord marks a persisted record that violates an invariant,
	// e.g. a file without a blob key.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrUnavailable is a transient store failure. Safe to retry.
	ErrUnavailable = errors.New("store unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
