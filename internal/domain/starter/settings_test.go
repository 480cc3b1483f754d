package starter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSettingsCueSelection resolves display names and falls back to defaults.
func TestSettingsCueSelection(t *testing.T) {
	t.Parallel()

	s := Settings{Voice: "GB Male", Starter: "Whistle", Theme: "Green"}
	require.Equal(t, CueSelection{VoiceID: "en-GB", SoundID: "short_whistle"}, s.CueSelection())

	s = Settings{Voice: "Robot", Starter: "Cannon"}
	require.Equal(t, CueSelection{VoiceID: DefaultVoiceID, SoundID: DefaultSoundID}, s.CueSelection())
}

// TestSettingsNormalize substitutes defaults for unknown selections only.
func TestSettingsNormalize(t *testing.T) {
	t.Parallel()

	s := Settings{Voice: "AU Female", Starter: "Cannon", Theme: "Purple"}
	require.True(t, s.Normalize())
	require.Equal(t, Settings{Voice: "AU Female", Starter: DefaultStarter, Theme: DefaultTheme}, s)

	s = DefaultSettings()
	require.False(t, s.Normalize())
}

// TestStateNames round-trips state names and derives CanStart.
func TestStateNames(t *testing.T) {
	t.Parallel()

	for st := StateIdle; st <= StateCooldown; st++ {
		parsed, ok := ParseState(st.String())
		require.True(t, ok)
		require.Equal(t, st, parsed)
		require.Equal(t, st == StateIdle, Snapshot{State: st}.CanStart())
	}

	_, ok := ParseState("Running")
	require.False(t, ok)
}
