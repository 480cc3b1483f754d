package client

import (
	"fmt"
	"strings"
	"time"

	api "github.com/oshokin/sprint-start/internal/api/grpc/starter"
	"github.com/oshokin/sprint-start/internal/domain/starter"
)

// FormatStatus renders a status on one line.
func FormatStatus(status *api.StatusResponse) string {
	if status == nil {
		return "<nil status>"
	}

	var b strings.Builder

	b.WriteString(status.GetState())

	if status.GetState() == starter.StateOnYourMarks.String() {
		fmt.Fprintf(&b, " %.0f/%.0f sec", status.GetRemaining(), status.Total)
	}

	if status.RunID != "" {
		fmt.Fprintf(&b, " run=%s", status.RunID)
	}

	if status.Config != nil {
		fmt.Fprintf(&b, " [%s]", FormatConfig(status.Config))
	}

	if actor := status.GetLastActor(); actor != nil {
		fmt.Fprintf(&b, " by %s@%s", actor.GetUsername(), actor.GetHostname())
	}

	return b.String()
}

// FormatConfig renders a wire configuration.
func FormatConfig(cfg *api.StarterConfig) string {
	return api.FromStarterConfig(cfg).String()
}

// FormatSettings renders a wire settings snapshot.
func FormatSettings(s *api.Settings) string {
	if s == nil {
		return "<nil settings>"
	}

	return fmt.Sprintf("voice %s, starter %s, theme %s", s.Voice, s.Starter, s.Theme)
}

// FormatRecord renders a history record on one line.
func FormatRecord(rec starter.RunRecord) string {
	line := fmt.Sprintf(
		"%s %-9s %s [%s]",
		rec.StartedAt.Local().Format(time.DateTime),
		rec.Outcome,
		rec.ID,
		rec.Config.String(),
	)

	if window := rec.ReactionWindow(); window > 0 {
		line += fmt.Sprintf(" set->fire %.2f sec", window.Seconds())
	}

	return line
}
