package sequence

import (
	"math/rand/v2"
	"time"

	"github.com/oshokin/sprint-start/internal/domain/starter"
)

// Sampler draws jittered delays. The zero value uses math/rand/v2.
type Sampler struct {
	// draw returns a value in [0, 1).
	draw func() float64
}

// NewSampler returns a Sampler that uses draw instead of the global random
// source. A nil draw falls back to math/rand/v2.
func NewSampler(draw func() float64) *Sampler {
	return &Sampler{draw: draw}
}

// FixedDraw returns a draw function that always yields v. Tests use it to pin
// the sampled delay: 0 gives the lower edge, 0.5 the center.
func FixedDraw(v float64) func() float64 {
	return func() float64 { return v }
}

// Sample returns center when bound is 0 and otherwise a uniform value in
// [center-bound, center+bound], clamped to 0 from below.
func (s *Sampler) Sample(center, bound float64) float64 {
	if bound <= 0 {
		return max(center, 0)
	}

	draw := rand.Float64
	if s != nil && s.draw != nil {
		draw = s.draw
	}

	u := min(max(draw(), 0), 1)

	return max(center-bound+2*bound*u, 0)
}

// SampleDelay is Sample expressed as a duration.
func (s *Sampler) SampleDelay(center, bound float64) time.Duration {
	return starter.Seconds(s.Sample(center, bound))
}
