package starter

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is how a run ended.
type Outcome string

const (
	// OutcomeCompleted means the run fired and finished its cooldown.
	OutcomeCompleted Outcome = "completed"
	// OutcomeReset means the run was aborted by a reset.
	OutcomeReset Outcome = "reset"
)

// RunRecord describes one started sequence. Times of stages the run never
// reached are zero.
type RunRecord struct {
	// ID is the run identifier.
	ID uuid.UUID
	// StartedAt is when the mark cue was emitted.
	StartedAt time.Time
	// Config is the configuration the run used.
	Config StarterConfig
	// SetDelay is the sampled set-to-fire delay.
	SetDelay time.Duration
	// SetAt is when the run entered Set.
	SetAt time.Time
	// FiredAt is when the firing sound was emitted.
	FiredAt time.Time
	// EndedAt is when the run returned to Idle.
	EndedAt time.Time
	// Outcome is how the run ended.
	Outcome Outcome
}

// ReactionWindow returns the time between the set cue and the firing sound,
// or zero if the run never fired.
func (r RunRecord) ReactionWindow() time.Duration {
	if r.SetAt.IsZero() || r.FiredAt.IsZero() {
		return 0
	}

	return r.FiredAt.Sub(r.SetAt)
}
