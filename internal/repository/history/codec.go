package history

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/oshokin/sprint-start/internal/domain/starter"
)

var (
	// encMode writes records with canonical key order and RFC 3339 timestamps.
	encMode cbor.EncMode
	// decMode tolerates duplicate keys written by older versions.
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("history: create CBOR encoder mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyQuiet,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("history: create CBOR decoder mode: %v", err))
	}
}

// entry is the on-disk form of starter.RunRecord.
type entry struct {
	ID          string    `cbor:"id"`
	StartedAt   time.Time `cbor:"started_at"`
	MarkDelay   int       `cbor:"mark_delay"`
	SetDelay    float64   `cbor:"set_delay"`
	Variability string    `cbor:"variability"`
	SampledMS   int64     `cbor:"sampled_ms"`
	SetAt       time.Time `cbor:"set_at"`
	FiredAt     time.Time `cbor:"fired_at"`
	EndedAt     time.Time `cbor:"ended_at"`
	Outcome     string    `cbor:"outcome"`
}

func toEntry(rec starter.RunRecord) entry {
	return entry{
		ID:          rec.ID.String(),
		StartedAt:   rec.StartedAt,
		MarkDelay:   rec.Config.MarkDelaySeconds,
		SetDelay:    rec.Config.SetDelaySeconds,
		Variability: rec.Config.Variability.String(),
		SampledMS:   rec.SetDelay.Milliseconds(),
		SetAt:       rec.SetAt,
		FiredAt:     rec.FiredAt,
		EndedAt:     rec.EndedAt,
		Outcome:     string(rec.Outcome),
	}
}

func fromEntry(e entry) (starter.RunRecord, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return starter.RunRecord{}, fmt.Errorf("parse run id: %w", err)
	}

	variability, err := starter.ParseVariability(e.Variability)
	if err != nil {
		variability = starter.DefaultVariability
	}

	return starter.RunRecord{
		ID:        id,
		StartedAt: e.StartedAt,
		Config: starter.StarterConfig{
			MarkDelaySeconds: e.MarkDelay,
			SetDelaySeconds:  e.SetDelay,
			Variability:      variability,
		},
		SetDelay: time.Duration(e.SampledMS) * time.Millisecond,
		SetAt:    e.SetAt,
		FiredAt:  e.FiredAt,
		EndedAt:  e.EndedAt,
		Outcome:  starter.Outcome(e.Outcome),
	}, nil
}
