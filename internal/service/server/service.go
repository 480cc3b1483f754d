package server

import (
	"context"
	"fmt"
	"sync"

	api "github.com/oshokin/sprint-start/internal/api/grpc/starter"
	domain "github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/logger"
	"github.com/oshokin/sprint-start/internal/service/sequence"
)

// service adapts the sequence controller and the config store to the transport.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// ctrl runs the start sequence.
	ctrl *sequence.Controller
	// store persists the configuration and settings.
	store sequence.ConfigStore
	// lastActor is who last started or reset the sequence remotely.
	lastActor *domain.Actor
	// mu protects lastActor.
	mu sync.RWMutex
}

// newService creates a service over ctrl and store.
func newService(ctrl *sequence.Controller, store sequence.ConfigStore) *service {
	return &service{
		ctrl:  ctrl,
		store: store,
	}
}

// Start begins a run. It reports false, without touching the last actor, when a
// run is already in progress. A nil status means the controller has stopped.
func (s *service) Start(ctx context.Context, actor *domain.Actor) (bool, *api.Status) {
	if s.stopped() {
		return false, nil
	}

	started := s.ctrl.Start()
	if started {
		s.setActor(actor)
		logger.InfoKV(ctx, "Sequence started remotely", "actor", actor.String(), "run_id", s.ctrl.Snapshot().RunID)
	} else {
		logger.InfoKV(ctx, "Start ignored, sequence active", "actor", actor.String(), "state", s.ctrl.State())
	}

	return started, s.Status(ctx)
}

// Reset aborts any run in progress.
func (s *service) Reset(ctx context.Context, actor *domain.Actor) *api.Status {
	if s.stopped() {
		return nil
	}

	s.ctrl.Reset()
	s.setActor(actor)

	logger.InfoKV(ctx, "Sequence reset remotely", "actor", actor.String())

	return s.Status(ctx)
}

// Status returns the current snapshot and last actor.
func (s *service) Status(context.Context) *api.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &api.Status{
		Snapshot:  s.ctrl.Snapshot(),
		LastActor: s.lastActor.Clone(),
	}
}

// Watch relays controller snapshots until stop is called, ctx ends or the
// controller closes.
func (s *service) Watch(ctx context.Context) (<-chan *api.Status, func()) {
	sub := s.ctrl.Subscribe(sequence.DefaultSubscriptionBuffer)
	out := make(chan *api.Status, sequence.DefaultSubscriptionBuffer)
	quit := make(chan struct{})

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case <-quit:
				return
			case snap, ok := <-sub.C():
				if !ok {
					return
				}

				s.mu.RLock()
				st := &api.Status{Snapshot: snap, LastActor: s.lastActor.Clone()}
				s.mu.RUnlock()

				select {
				case out <- st:
				case <-ctx.Done():
					return
				case <-quit:
					return
				}
			}
		}
	}()

	var once sync.Once

	stop := func() {
		once.Do(func() {
			close(quit)
			sub.Unsubscribe()
		})
	}

	return out, stop
}

// LoadConfig returns the stored configuration and settings.
func (s *service) LoadConfig(ctx context.Context) (domain.StarterConfig, domain.Settings) {
	return s.store.LoadStarterConfig(ctx), s.store.LoadSettings(ctx)
}

// SaveConfig stores whichever of cfg and settings is set. The next run picks
// the change up; a run in progress keeps its configuration.
func (s *service) SaveConfig(
	ctx context.Context,
	actor *domain.Actor,
	cfg *domain.StarterConfig,
	settings *domain.Settings,
) (domain.StarterConfig, domain.Settings, error) {
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return domain.StarterConfig{}, domain.Settings{}, fmt.Errorf("%w: %w", api.ErrInvalidConfig, err)
		}

		if err := s.store.SaveStarterConfig(ctx, *cfg); err != nil {
			logger.ErrorKV(ctx, "Failed to persist starter config", "error", err)

			return domain.StarterConfig{}, domain.Settings{}, fmt.Errorf("persist starter config: %w", err)
		}

		logger.InfoKV(ctx, "Starter config updated", "actor", actor.String(), "config", cfg.String())
	}

	if settings != nil {
		if err := s.store.SaveSettings(ctx, *settings); err != nil {
			logger.ErrorKV(ctx, "Failed to persist settings", "error", err)

			return domain.StarterConfig{}, domain.Settings{}, fmt.Errorf("persist settings: %w", err)
		}

		logger.InfoKV(ctx, "Settings updated", "actor", actor.String(), "voice", settings.Voice, "starter", settings.Starter)
	}

	loadedCfg, loadedSettings := s.LoadConfig(ctx)

	return loadedCfg, loadedSettings, nil
}

func (s *service) setActor(actor *domain.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActor = actor.Clone()
}

func (s *service) stopped() bool {
	select {
	case <-s.ctrl.Done():
		return true
	default:
		return false
	}
}

var _ api.Service = (*service)(nil)
