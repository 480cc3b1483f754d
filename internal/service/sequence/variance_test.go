package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sprint-start/internal/domain/starter"
)

// TestSample_NoBoundReturnsCenter ensures a zero bound consumes no randomness.
func TestSample_NoBoundReturnsCenter(t *testing.T) {
	t.Parallel()

	s := NewSampler(func() float64 {
		t.Fatal("draw must not be called for a zero bound")
		return 0
	})

	for _, center := range []float64{1.25, 2, 2.75, 3} {
		require.InDelta(t, center, s.Sample(center, 0), 0)
	}
}

// TestSample_StaysWithinBound draws many values for each jitter class.
func TestSample_StaysWithinBound(t *testing.T) {
	t.Parallel()

	var s Sampler

	for _, v := range starter.Variabilities() {
		bound := v.Bound()

		for _, center := range []float64{1.25, 2.0, 3.0} {
			for range 2000 {
				got := s.Sample(center, bound)
				require.GreaterOrEqual(t, got, center-bound)
				require.LessOrEqual(t, got, center+bound)
			}
		}
	}
}

// TestSample_FixedDraw maps the draw linearly onto the interval.
func TestSample_FixedDraw(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 1.75, NewSampler(FixedDraw(0)).Sample(2, 0.25), 1e-12)
	require.InDelta(t, 2.0, NewSampler(FixedDraw(0.5)).Sample(2, 0.25), 1e-12)
	require.InDelta(t, 2.25, NewSampler(FixedDraw(1)).Sample(2, 0.25), 1e-12)
	require.InDelta(t, 2.25, NewSampler(FixedDraw(7)).Sample(2, 0.25), 1e-12)
}

// TestSample_ClampsNegative ensures negative results are corrected to zero.
func TestSample_ClampsNegative(t *testing.T) {
	t.Parallel()

	s := NewSampler(FixedDraw(0))
	require.InDelta(t, 0.0, s.Sample(0.5, 0.75), 0)
	require.InDelta(t, 0.0, s.Sample(-1, 0), 0)
}

// TestSampleDelay converts to a millisecond-rounded duration.
func TestSampleDelay(t *testing.T) {
	t.Parallel()

	s := NewSampler(FixedDraw(0))
	require.Equal(t, 1250*time.Millisecond, s.SampleDelay(2, 0.75))
	require.Equal(t, 2*time.Second, s.SampleDelay(2, 0))
}
