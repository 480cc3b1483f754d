package cue

import (
	"io"

	"github.com/oshokin/sprint-start/internal/config"
	"github.com/oshokin/sprint-start/internal/service/sequence"
)

// FromConfig assembles the emitter described by cfg. Console output goes to
// out when cfg.Console is set or when the OS commands are muted.
func FromConfig(cfg config.CueConfig, out io.Writer) sequence.CueEmitter {
	var emitters []sequence.CueEmitter

	if !cfg.Mute {
		emitters = append(emitters, NewCommand(
			cfg.SoundsDir,
			WithSpeechTemplate(cfg.SpeechCommand),
			WithSoundTemplate(cfg.SoundCommand),
		))
	}

	if (cfg.Console || cfg.Mute) && out != nil {
		emitters = append(emitters, NewConsole(out, cfg.Mute))
	}

	if len(emitters) == 1 {
		return emitters[0]
	}

	return NewMulti(emitters...)
}
