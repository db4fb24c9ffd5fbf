// Package version provides build-time version information.
package version

import "fmt"

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Name is the product name shown in banners and window titles.
const Name = "Image Studio"

// String formats the version for startup banners.
func String() string {
	if GitCommit == "unknown" {
		return fmt.Sprintf("%s v%s", Name, Version)
	}
	return fmt.Sprintf("%s v%s (%s, built %s)", Name, Version, GitCommit, BuildTime)
}
