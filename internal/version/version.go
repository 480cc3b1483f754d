package version

import "fmt"

// Name is the product name used in user agents and version output.
const Name = "sprint-start"

var (
	// Version is set with -ldflags "-X .../internal/version.Version=...".
	Version = "0.1.0"
	// Commit is the short git SHA of the build.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the semantic version.
func Short() string {
	return Version
}

// Full returns the version with commit and build time.
func Full() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", Name, Version, Commit, BuildTime)
}

// UserAgent identifies the client to the starter server.
func UserAgent() string {
	return Name + "/" + Version
}
