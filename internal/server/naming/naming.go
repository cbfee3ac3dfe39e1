// Package naming derives blob keys from user supplied names.
package naming

import (
	"fmt"
	"strings"
)

// MaxSegmentLen caps a sanitized name segment.
const MaxSegmentLen = 30

// Sanitize turns arbitrary text into a lower-case alphanumeric token:
// everything from the first '.' on is dropped, characters outside
// [A-Za-z0-9] are removed and the result is cut to MaxSegmentLen.
// Uniqueness is not a goal; blob keys get it from the file id.
func Sanitize(input string) string {
	input, _, _ = strings.Cut(input, ".")

	var b strings.Builder
	b.Grow(min(len(input), MaxSegmentLen))
	for i := 0; i < len(input) && b.Len() < MaxSegmentLen; i++ {
		c := input[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}

// Extension picks the file extension for a blob key: the text after the
// last '.' of name, or else the subtype of contentType ("image/png" and
// "png" both give "png"). The result is alphanumeric and lower-case, and
// may be empty.
func Extension(name, contentType string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		if ext := Sanitize(name[i+1:]); ext != "" {
			return ext
		}
	}
	ct, _, _ := strings.Cut(contentType, ";")
	if i := strings.LastIndexByte(ct, '/'); i >= 0 {
		ct = ct[i+1:]
	}
	return Sanitize(ct)
}

// BlobKey builds files/{email}/{name}_{fileID}[.{ext}].
func BlobKey(email, name, contentType, fileID string) string {
	key := fmt.Sprintf("files/%s/%s_%s", Sanitize(email), Sanitize(name), fileID)
	if ext := Extension(name, contentType); ext != "" {
		key += "." + ext
	}
	return key
}
