// Package kv holds the table plumbing shared by the embedded metadata
// backends: an in-memory map table and a BadgerDB prefix table. Both page
// through keys in lexical order and resume strictly after a cursor.
package kv

// Codec converts records to and from their stored form.
type Codec[T any] interface {
	// Key returns the primary key of v.
	Key(v *T) string
	// Clone returns a copy of v that shares no mutable state and carries
	// no transient fields.
	Clone(v *T) *T
}

// Match filters records during a scan. A nil Match accepts everything.
type Match[T any] func(v *T) bool

func (m Match[T]) accepts(v *T) bool {
	return m == nil || m(v)
}
