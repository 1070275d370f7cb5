// Package cache stores conversion results keyed by content hashes.
//
// Two kinds of entries exist:
//   - DOT text, keyed by the hash of the GEDCOM input and the layout options
//   - rendered artifacts (SVG, PNG), keyed by the hash of the DOT text and the format
//
// Backends:
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for `ged2dot serve`
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries. Entries are content-addressed, so stale data is
// never served; the TTL only bounds disk and memory use.
const (
	TTLDOT      = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeDOT      = "dot"
	KeyTypeArtifact = "artifact"
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DOTKeyOpts are the options that change the DOT output for a given input.
type DOTKeyOpts struct {
	// Settings is a digest of the conversion settings, see [Hash].
	Settings string `json:"settings"`
	// Dir is the directory image paths resolve against.
	Dir string `json:"dir,omitempty"`
	// Year is part of the key because death inference depends on the
	// current date.
	Year int `json:"year"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// Keyer generates cache keys.
type Keyer interface {
	// DOTKey returns the key for DOT text produced from the input with the given hash.
	DOTKey(inputHash string, opts DOTKeyOpts) string

	// ArtifactKey returns the key for an artifact rendered from the DOT text
	// with the given hash.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DOTKey implements Keyer.
func (DefaultKeyer) DOTKey(inputHash string, opts DOTKeyOpts) string {
	return hashKey(KeyTypeDOT, inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, dotHash, opts)
}
