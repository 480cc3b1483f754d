//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"

	"github.com/oshokin/sprint-start/internal/logger"
)

// ApplyLogLevel sets the global log level from a config value; unknown values
// keep the current level.
func ApplyLogLevel(ctx context.Context, level string) {
	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		logger.WarnKV(ctx, "Unknown log level, keeping current", "log_level", level)

		return
	}

	logger.SetLevel(parsed)
}
