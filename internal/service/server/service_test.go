package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/oshokin/sprint-start/internal/api/grpc/starter"
	domain "github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/service/sequence"
)

var errTestSave = errors.New("test save error")

// memoryStore is a minimal in-memory ConfigStore for tests.
type memoryStore struct {
	// mu protects the fields below.
	mu sync.Mutex
	// cfg is the stored configuration.
	cfg domain.StarterConfig
	// settings is the stored settings snapshot.
	settings domain.Settings
	// saveErr is returned from the save operations.
	saveErr error
}

func newMemoryStore(cfg domain.StarterConfig) *memoryStore {
	return &memoryStore{cfg: cfg, settings: domain.DefaultSettings()}
}

func (m *memoryStore) LoadStarterConfig(context.Context) domain.StarterConfig {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cfg
}

func (m *memoryStore) SaveStarterConfig(_ context.Context, cfg domain.StarterConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	m.cfg = cfg

	return nil
}

func (m *memoryStore) LoadSettings(context.Context) domain.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.settings
}

func (m *memoryStore) SaveSettings(_ context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	s.Normalize()
	m.settings = s

	return nil
}

// TestService_StartResetTracksActor verifies Start/Reset and the last actor.
func TestService_StartResetTracksActor(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		store := newMemoryStore(domain.StarterConfig{MarkDelaySeconds: 5, SetDelaySeconds: 2, Variability: domain.VariabilityNone})
		ctrl := sequence.New(ctx, store, nil)

		defer ctrl.Close()

		s := newService(ctrl, store)
		coach := &domain.Actor{Hostname: "track", Username: "coach"}
		other := &domain.Actor{Hostname: "stands", Username: "fan"}

		started, st := s.Start(ctx, coach)
		require.True(t, started)
		require.Equal(t, domain.StateOnYourMarks, st.Snapshot.State)
		require.Equal(t, coach, st.LastActor)
		require.NotSame(t, coach, st.LastActor)

		started, st = s.Start(ctx, other)
		require.False(t, started)
		require.Equal(t, coach, st.LastActor)

		st = s.Reset(ctx, other)
		require.Equal(t, domain.StateIdle, st.Snapshot.State)
		require.Equal(t, other, st.LastActor)

		ctrl.Close()

		started, st = s.Start(ctx, coach)
		require.False(t, started)
		require.Nil(t, st)
		require.Nil(t, s.Reset(ctx, coach))
	})
}

// TestService_Watch relays snapshots and stops on demand.
func TestService_Watch(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		store := newMemoryStore(domain.StarterConfig{MarkDelaySeconds: 5, SetDelaySeconds: 2, Variability: domain.VariabilityNone})
		ctrl := sequence.New(ctx, store, nil)

		defer ctrl.Close()

		s := newService(ctrl, store)
		updates, stop := s.Watch(ctx)

		first := <-updates
		require.Equal(t, domain.StateIdle, first.Snapshot.State)

		s.Start(ctx, &domain.Actor{Hostname: "h", Username: "u"})

		marks := <-updates
		require.Equal(t, domain.StateOnYourMarks, marks.Snapshot.State)

		time.Sleep(time.Second)

		tick := <-updates
		require.InDelta(t, 4.0, tick.Snapshot.Remaining, 1e-9)

		stop()
		stop()

		for range updates {
		}
	})
}

// TestService_SaveConfig validates, persists and reports store failures.
func TestService_SaveConfig(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		store := newMemoryStore(domain.DefaultStarterConfig())
		ctrl := sequence.New(ctx, store, nil)

		defer ctrl.Close()

		s := newService(ctrl, store)
		actor := &domain.Actor{Hostname: "h", Username: "u"}

		cfg := domain.StarterConfig{MarkDelaySeconds: 7, SetDelaySeconds: 2.75, Variability: domain.VariabilityMed}
		settings := domain.Settings{Voice: "GB Male", Starter: "Whistle", Theme: "Unknown"}

		gotCfg, gotSettings, err := s.SaveConfig(ctx, actor, &cfg, &settings)
		require.NoError(t, err)
		require.Equal(t, cfg, gotCfg)
		require.Equal(t, domain.Settings{Voice: "GB Male", Starter: "Whistle", Theme: domain.DefaultTheme}, gotSettings)

		bad := domain.StarterConfig{MarkDelaySeconds: 7, SetDelaySeconds: 2.6, Variability: domain.VariabilityMed}
		_, _, err = s.SaveConfig(ctx, actor, &bad, nil)
		require.ErrorIs(t, err, api.ErrInvalidConfig)

		store.mu.Lock()
		store.saveErr = errTestSave
		store.mu.Unlock()

		_, _, err = s.SaveConfig(ctx, actor, &cfg, nil)
		require.ErrorIs(t, err, errTestSave)

		loadedCfg, _ := s.LoadConfig(ctx)
		require.Equal(t, cfg, loadedCfg)
	})
}

// TestResolveListenAddress covers overrides, bare ports and config values.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("127.0.0.1:50071", "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:50071", addr)

	addr, err = resolveListenAddress("127.0.0.1:50071", "0.0.0.0:9000")
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", addr)

	addr, err = resolveListenAddress("127.0.0.1:50071", "9000")
	require.NoError(t, err)
	require.Equal(t, ":9000", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}
