package sequence

import (
	"context"

	"github.com/oshokin/sprint-start/internal/domain/starter"
)

// CueEmitter speaks text and plays sounds. Both calls must return without
// waiting for playback; an error means the cue could not be started.
type CueEmitter interface {
	Speak(ctx context.Context, text, voiceID string) error
	PlaySound(ctx context.Context, soundID string) error
}

// ConfigStore loads and saves the starter configuration and the settings
// snapshot. Loads never fail: absent or invalid data yields defaults.
type ConfigStore interface {
	LoadStarterConfig(ctx context.Context) starter.StarterConfig
	SaveStarterConfig(ctx context.Context, cfg starter.StarterConfig) error
	LoadSettings(ctx context.Context) starter.Settings
	SaveSettings(ctx context.Context, settings starter.Settings) error
}
