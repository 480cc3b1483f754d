package sequence

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
)

// tickRecorder collects countdown callback values.
type tickRecorder struct {
	// mu protects values.
	mu sync.Mutex
	// values are the remaining values in delivery order.
	values []float64
}

// record appends one tick value.
func (r *tickRecorder) record(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values = append(r.values, v)
}

// snapshot returns a copy of the recorded values.
func (r *tickRecorder) snapshot() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]float64(nil), r.values...)
}

// TestCountdown_RunsToZero ticks once per second and stops at zero.
func TestCountdown_RunsToZero(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rec := new(tickRecorder)
		c := NewCountdown(time.Second, rec.record)

		c.Start(3)
		require.True(t, c.Running())
		require.InDelta(t, 3.0, c.Remaining(), 0)

		time.Sleep(1500 * time.Millisecond)
		synctest.Wait()
		require.InDelta(t, 2.0, c.Remaining(), 0)

		time.Sleep(10 * time.Second)
		synctest.Wait()

		require.Equal(t, []float64{2, 1, 0}, rec.snapshot())
		require.False(t, c.Running())
		require.InDelta(t, 0.0, c.Remaining(), 0)
	})
}

// TestCountdown_StopFreezesValue ensures no mutation happens after Stop.
func TestCountdown_StopFreezesValue(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rec := new(tickRecorder)
		c := NewCountdown(time.Second, rec.record)

		c.Start(10)
		time.Sleep(2500 * time.Millisecond)
		synctest.Wait()

		c.Stop()
		c.Stop()

		time.Sleep(10 * time.Second)
		synctest.Wait()

		require.False(t, c.Running())
		require.InDelta(t, 8.0, c.Remaining(), 0)
		require.Equal(t, []float64{9, 8}, rec.snapshot())
	})
}

// TestCountdown_Restart begins a fresh run and abandons the previous one.
func TestCountdown_Restart(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rec := new(tickRecorder)
		c := NewCountdown(time.Second, rec.record)

		c.Start(5)
		time.Sleep(1500 * time.Millisecond)
		synctest.Wait()

		c.Start(2)
		require.InDelta(t, 2.0, c.Remaining(), 0)

		time.Sleep(5 * time.Second)
		synctest.Wait()

		require.Equal(t, []float64{4, 1, 0}, rec.snapshot())
		require.False(t, c.Running())
	})
}

// TestCountdown_ZeroTotal never starts ticking.
func TestCountdown_ZeroTotal(t *testing.T) {
	t.Parallel()

	c := NewCountdown(0, nil)
	c.Start(-3)

	require.False(t, c.Running())
	require.InDelta(t, 0.0, c.Remaining(), 0)
}
