package cue

import (
	"context"

	"go.uber.org/multierr"

	"github.com/oshokin/sprint-start/internal/service/sequence"
)

// Multi fans every cue out to all of its emitters.
type Multi []sequence.CueEmitter

// NewMulti drops nil emitters and returns the remaining ones as a Multi.
func NewMulti(emitters ...sequence.CueEmitter) Multi {
	m := make(Multi, 0, len(emitters))

	for _, e := range emitters {
		if e != nil {
			m = append(m, e)
		}
	}

	return m
}

// Speak calls Speak on every emitter and combines their errors.
func (m Multi) Speak(ctx context.Context, text, voiceID string) error {
	var err error

	for _, e := range m {
		err = multierr.Append(err, e.Speak(ctx, text, voiceID))
	}

	return err
}

// PlaySound calls PlaySound on every emitter and combines their errors.
func (m Multi) PlaySound(ctx context.Context, soundID string) error {
	var err error

	for _, e := range m {
		err = multierr.Append(err, e.PlaySound(ctx, soundID))
	}

	return err
}

var (
	_ sequence.CueEmitter = (*Command)(nil)
	_ sequence.CueEmitter = (*Console)(nil)
	_ sequence.CueEmitter = Multi(nil)
)
