package starter

import (
	"time"

	"github.com/google/uuid"
)

// State is the stage a start sequence is in.
type State int

const (
	// StateIdle means no sequence is running and a new one may start.
	StateIdle State = iota
	// StateOnYourMarks is the mark stage while the countdown runs.
	StateOnYourMarks
	// StateSet is the stage between the "Set" cue and the firing sound.
	StateSet
	// StateFired is entered when the firing sound is emitted.
	StateFired
	// StateCooldown is the fixed pause before the sequence may start again.
	StateCooldown
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateOnYourMarks:
		return "OnYourMarks"
	case StateSet:
		return "Set"
	case StateFired:
		return "Fired"
	case StateCooldown:
		return "Cooldown"
	default:
		return "Unknown"
	}
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, bool) {
	for st := StateIdle; st <= StateCooldown; st++ {
		if st.String() == s {
			return st, true
		}
	}

	return StateIdle, false
}

// Snapshot is the read-only view of a sequence published to observers.
type Snapshot struct {
	// RunID identifies the run; zero while no run was ever started.
	RunID uuid.UUID
	// Token is the generation counter at the time of the snapshot.
	Token uint64
	// State is the current stage.
	State State
	// Remaining is the countdown value in seconds.
	Remaining float64
	// Total is the countdown start value of the current run.
	Total float64
	// Config is the configuration of the current run.
	Config StarterConfig
	// SetDelay is the sampled set-to-fire delay of the current run.
	SetDelay time.Duration
	// At is when the snapshot was taken.
	At time.Time
}

// CanStart reports whether a new run may be started.
func (s Snapshot) CanStart() bool {
	return s.State == StateIdle
}
