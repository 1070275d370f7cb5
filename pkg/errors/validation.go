package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds record identifiers accepted from users.
const maxIDLength = 64

// ValidateID validates a GEDCOM record identifier supplied by a user
// (root family on the command line or in an HTTP query).
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - No '@' delimiters (identifiers are given without them)
//   - Maximum length of 64 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "identifier cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "identifier too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidID, "identifier contains invalid characters")
		}
	}

	if strings.Contains(id, "@") {
		return New(ErrCodeInvalidID, "identifier must be given without '@' delimiters: %q", id)
	}

	return nil
}

// MaxDepthLimit bounds depth settings. Every generation adds two rows,
// and real trees rarely exceed a few dozen.
const MaxDepthLimit = 400

// ValidateDepth checks that a depth setting is within [0, MaxDepthLimit].
func ValidateDepth(name string, depth int) error {
	if depth < 0 {
		return New(ErrCodeInvalidConfig, "%s must not be negative, got %d", name, depth)
	}
	if depth > MaxDepthLimit {
		return New(ErrCodeInvalidConfig, "%s too large (max %d), got %d", name, MaxDepthLimit, depth)
	}
	return nil
}
