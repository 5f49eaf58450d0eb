// Package version exposes the build metadata stamped into the ingester and
// streamd binaries.
//
// Values are injected at build time:
//
//	go build -ldflags "-X github.com/rickgao/nse-data/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/nse-data/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/nse-data/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import "fmt"

// Set via ldflags; these fallbacks mark an unstamped build.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String formats the stamped metadata for startup logs.
func String() string {
	return fmt.Sprintf("%s (%s) built %s", Version, Commit, BuildTime)
}
