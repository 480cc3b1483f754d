// Package cue implements sequence.CueEmitter backends: OS speech and sound
// commands, a terminal printer and a fan-out combinator.
package cue
