package history

import (
	"context"

	"github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/logger"
)

// Appender stores finished runs.
type Appender interface {
	Append(ctx context.Context, rec starter.RunRecord) error
}

// Recorder assembles one RunRecord per run from controller snapshots.
type Recorder struct {
	// log receives finished runs.
	log Appender
	// current is the run in progress, nil while idle.
	current *starter.RunRecord
	// token is the generation of the snapshot that opened current.
	token uint64
}

// NewRecorder creates a Recorder writing to log.
func NewRecorder(log Appender) *Recorder {
	return &Recorder{log: log}
}

// Run consumes snapshots until the channel closes or ctx is canceled. A run
// still in progress at that point is not recorded.
func (r *Recorder) Run(ctx context.Context, snapshots <-chan starter.Snapshot) {
	ctx = logger.WithName(ctx, "history")

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				if r.current != nil {
					logger.DebugKV(ctx, "Run in progress not recorded", "run_id", r.current.ID)
				}

				return
			}

			r.Observe(ctx, snap)
		}
	}
}

// Observe applies one snapshot. It appends a record when a run returns to Idle.
func (r *Recorder) Observe(ctx context.Context, snap starter.Snapshot) {
	if snap.State == starter.StateOnYourMarks && (r.current == nil || r.current.ID != snap.RunID) {
		r.current = &starter.RunRecord{
			ID:        snap.RunID,
			StartedAt: snap.At,
			Config:    snap.Config,
			SetDelay:  snap.SetDelay,
		}
		r.token = snap.Token

		return
	}

	if r.current == nil || snap.RunID != r.current.ID {
		return
	}

	switch snap.State {
	case starter.StateSet:
		if r.current.SetAt.IsZero() {
			r.current.SetAt = snap.At
		}
	case starter.StateFired:
		if r.current.FiredAt.IsZero() {
			r.current.FiredAt = snap.At
		}
	case starter.StateIdle:
		r.finish(ctx, snap)
	case starter.StateOnYourMarks, starter.StateCooldown:
	}
}

func (r *Recorder) finish(ctx context.Context, snap starter.Snapshot) {
	rec := *r.current
	rec.EndedAt = snap.At

	// Reset bumps the generation; a natural finish keeps it.
	rec.Outcome = starter.OutcomeCompleted
	if snap.Token != r.token {
		rec.Outcome = starter.OutcomeReset
	}

	r.current = nil

	if err := r.log.Append(ctx, rec); err != nil {
		logger.WarnKV(ctx, "Failed to record run", "run_id", rec.ID, "error", err)

		return
	}

	logger.DebugKV(ctx, "Run recorded", "run_id", rec.ID, "outcome", rec.Outcome)
}
