// Package version holds the build metadata injected through ldflags.
package version
