package config

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
)

// Variant names a layout strategy.
type Variant string

// Supported layout strategies.
const (
	VariantAncestors   Variant = "ancestors"
	VariantDescendants Variant = "descendants"
)

// ParseVariant maps a Layout option to a Variant. The empty string selects
// the ancestor layout; names are case-insensitive so the classic
// "Descendants" value keeps working.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(VariantAncestors):
		return VariantAncestors, nil
	case string(VariantDescendants):
		return VariantDescendants, nil
	}
	return "", gerrors.New(gerrors.ErrCodeInvalidConfig, "unknown layout %q (must be one of: ancestors, descendants)", s)
}

// Encoding resolves an IANA character set name such as "UTF-8" or
// "ISO 8859-15". Spaces are accepted in place of dashes.
func Encoding(name string) (encoding.Encoding, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(name), " ", "-")
	if normalized == "" {
		normalized = DefaultEncoding
	}
	enc, err := ianaindex.IANA.Encoding(normalized)
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidEncoding, err, "unknown encoding %q", name)
	}
	if enc == nil {
		return nil, gerrors.New(gerrors.ErrCodeInvalidEncoding, "unsupported encoding %q", name)
	}
	return enc, nil
}
