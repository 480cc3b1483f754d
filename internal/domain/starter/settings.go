package starter

import "slices"

// Default selections.
const (
	DefaultVoice   = "US Female"
	DefaultStarter = "Starter gun"
	DefaultTheme   = "Blue"

	DefaultVoiceID = "en-US"
	DefaultSoundID = "starter_gun"
)

// Cue texts spoken before the firing sound.
const (
	MarkCueText = "On your marks"
	SetCueText  = "Set"
)

// Option maps a display name to the identifier handed to the cue backend.
type Option struct {
	// Name is the display name that gets persisted.
	Name string
	// ID is the backend identifier (speech language or sound asset name).
	ID string
}

// Voices lists the selectable voices.
func Voices() []Option {
	return []Option{
		{Name: "US Female", ID: "en-US"},
		{Name: "GB Male", ID: "en-GB"},
		{Name: "AU Female", ID: "en-AU"},
	}
}

// Starters lists the selectable firing sounds.
func Starters() []Option {
	return []Option{
		{Name: "Starter gun", ID: "starter_gun"},
		{Name: "Electronic starter", ID: "electronic_starter"},
		{Name: "Whistle", ID: "short_whistle"},
		{Name: "Clap", ID: "single_clap"},
	}
}

// Themes lists the selectable color themes.
func Themes() []string {
	return []string{"Red", "Orange", "Yellow", "Green", "Blue", "Indigo", "Pink", "Black/White"}
}

// CueSelection is what the sequence hands to the cue emitter. Both fields are
// opaque to the scheduler.
type CueSelection struct {
	// VoiceID identifies the speech voice, e.g. "en-GB".
	VoiceID string
	// SoundID identifies the firing sound asset, e.g. "starter_gun".
	SoundID string
}

// Settings is the persisted settings snapshot.
type Settings struct {
	// Voice is the voice display name.
	Voice string
	// Starter is the firing sound display name.
	Starter string
	// Theme is the color theme name.
	Theme string
}

// DefaultSettings returns the documented default selections.
func DefaultSettings() Settings {
	return Settings{
		Voice:   DefaultVoice,
		Starter: DefaultStarter,
		Theme:   DefaultTheme,
	}
}

// Normalize replaces unknown selections with defaults and reports whether
// anything was replaced.
func (s *Settings) Normalize() bool {
	changed := false

	if _, ok := lookup(Voices(), s.Voice); !ok {
		s.Voice = DefaultVoice
		changed = true
	}

	if _, ok := lookup(Starters(), s.Starter); !ok {
		s.Starter = DefaultStarter
		changed = true
	}

	if !slices.Contains(Themes(), s.Theme) {
		s.Theme = DefaultTheme
		changed = true
	}

	return changed
}

// CueSelection resolves display names to backend identifiers.
func (s Settings) CueSelection() CueSelection {
	selection := CueSelection{
		VoiceID: DefaultVoiceID,
		SoundID: DefaultSoundID,
	}

	if id, ok := lookup(Voices(), s.Voice); ok {
		selection.VoiceID = id
	}

	if id, ok := lookup(Starters(), s.Starter); ok {
		selection.SoundID = id
	}

	return selection
}

func lookup(options []Option, name string) (string, bool) {
	for _, o := range options {
		if o.Name == name {
			return o.ID, true
		}
	}

	return "", false
}
