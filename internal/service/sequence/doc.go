// Package sequence runs race-start sequences.
//
// A Controller turns a StarterConfig into a strictly ordered chain of timed
// stages (OnYourMarks, Set, Fired, Cooldown, back to Idle), emitting a cue at
// each stage and publishing snapshots with the remaining countdown. All
// transitions, countdown ticks and notifications run on one event loop; every
// deferred transition carries the run token it was scheduled under and is
// dropped if a Reset or a newer run has since replaced that token.
package sequence
