// Package buildinfo carries the version stamped into the binary.
//
// The variables are set via ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/ged2dot/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/ged2dot/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/ged2dot/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/ged2dot
//
// Version also scopes the server's cache keys, so a new release never reads
// DOT written by an older layout.
package buildinfo

import "fmt"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
