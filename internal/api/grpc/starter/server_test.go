package starter

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	domain "github.com/oshokin/sprint-start/internal/domain/starter"
)

var errTestSave = errors.New("disk full")

// fakeService implements Service for unit testing the transport.
type fakeService struct {
	// mu protects the fields below.
	mu sync.Mutex
	// snapshot is returned from every status call.
	snapshot domain.Snapshot
	// lastActor is the last caller of Start or Reset.
	lastActor *domain.Actor
	// cfg and settings are the stored configuration.
	cfg      domain.StarterConfig
	settings domain.Settings
	// saveErr is returned from SaveConfig.
	saveErr error
	// updates feeds Watch.
	updates chan *Status
	// stopped is closed when a watch ends.
	stopped chan struct{}
}

func newFakeService() *fakeService {
	return &fakeService{
		cfg:      domain.DefaultStarterConfig(),
		settings: domain.DefaultSettings(),
		updates:  make(chan *Status, 8),
		stopped:  make(chan struct{}),
	}
}

func (f *fakeService) status() *Status {
	return &Status{Snapshot: f.snapshot, LastActor: f.lastActor.Clone()}
}

func (f *fakeService) Start(_ context.Context, actor *domain.Actor) (bool, *Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.snapshot.State != domain.StateIdle {
		return false, f.status()
	}

	f.lastActor = actor
	f.snapshot = domain.Snapshot{
		RunID:     uuid.New(),
		Token:     f.snapshot.Token + 1,
		State:     domain.StateOnYourMarks,
		Remaining: float64(f.cfg.MarkDelaySeconds),
		Total:     float64(f.cfg.MarkDelaySeconds),
		Config:    f.cfg,
		SetDelay:  f.cfg.SetDelay(),
		At:        time.Now(),
	}

	return true, f.status()
}

func (f *fakeService) Reset(_ context.Context, actor *domain.Actor) *Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastActor = actor
	f.snapshot.State = domain.StateIdle
	f.snapshot.Remaining = 0

	return f.status()
}

func (f *fakeService) Status(context.Context) *Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.status()
}

func (f *fakeService) Watch(context.Context) (<-chan *Status, func()) {
	var once sync.Once

	return f.updates, func() { once.Do(func() { close(f.stopped) }) }
}

func (f *fakeService) LoadConfig(context.Context) (domain.StarterConfig, domain.Settings) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.cfg, f.settings
}

func (f *fakeService) SaveConfig(
	_ context.Context,
	_ *domain.Actor,
	cfg *domain.StarterConfig,
	settings *domain.Settings,
) (domain.StarterConfig, domain.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return domain.StarterConfig{}, domain.Settings{}, f.saveErr
	}

	if cfg != nil {
		f.cfg = *cfg
	}

	if settings != nil {
		f.settings = *settings
		f.settings.Normalize()
	}

	return f.cfg, f.settings, nil
}

// dialBufconn serves svc over an in-memory listener and returns a client.
func dialBufconn(t *testing.T, svc Service) StarterServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(context.Background())))
	RegisterStarterServiceServer(srv, NewServer(svc))

	go func() {
		_ = srv.Serve(lis)
	}()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()

		srv.Stop()
	})

	return NewStarterServiceClient(conn)
}

// TestServer_Validation ensures requests without an actor are rejected.
func TestServer_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeService())

	_, err := s.Start(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Start(context.Background(), new(StartRequest))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Reset(context.Background(), new(ResetRequest))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.SaveConfig(context.Background(), &SaveConfigRequest{Actor: new(Actor)})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_StartResetRoundtrip exercises the unary RPCs over the CBOR codec.
func TestServer_StartResetRoundtrip(t *testing.T) {
	t.Parallel()

	client := dialBufconn(t, newFakeService())
	ctx := context.Background()
	actor := &Actor{Hostname: "track-pc", Username: "coach"}

	started, err := client.Start(ctx, &StartRequest{Actor: actor})
	require.NoError(t, err)
	require.True(t, started.GetStarted())
	require.Equal(t, domain.StateOnYourMarks.String(), started.GetStatus().GetState())
	require.InDelta(t, 20.0, started.GetStatus().GetRemaining(), 1e-9)
	require.NotEmpty(t, started.GetStatus().RunID)
	require.Equal(t, "Low", started.GetStatus().Config.Variability)
	require.Equal(t, actor, started.GetStatus().GetLastActor())

	again, err := client.Start(ctx, &StartRequest{Actor: actor})
	require.NoError(t, err)
	require.False(t, again.GetStarted())
	require.Equal(t, started.GetStatus().RunID, again.GetStatus().RunID)

	reset, err := client.Reset(ctx, &ResetRequest{Actor: &Actor{Hostname: "h", Username: "u"}})
	require.NoError(t, err)
	require.Equal(t, domain.StateIdle.String(), reset.GetState())
	require.Zero(t, reset.GetRemaining())
	require.True(t, reset.CanStart)

	current, err := client.GetStatus(ctx, new(StatusRequest))
	require.NoError(t, err)
	require.Equal(t, "u", current.GetLastActor().GetUsername())
}

// TestServer_ConfigRoundtrip stores and reads configuration over the wire.
func TestServer_ConfigRoundtrip(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	client := dialBufconn(t, svc)
	ctx := context.Background()
	actor := &Actor{Hostname: "h", Username: "u"}

	saved, err := client.SaveConfig(ctx, &SaveConfigRequest{
		Actor:    actor,
		Config:   &StarterConfig{MarkDelaySeconds: 12, SetDelaySeconds: 1.75, Variability: "High"},
		Settings: &Settings{Voice: "AU Female", Starter: "Clap", Theme: "Green"},
	})
	require.NoError(t, err)
	require.Equal(t, &StarterConfig{MarkDelaySeconds: 12, SetDelaySeconds: 1.75, Variability: "High"}, saved.GetConfig())
	require.Equal(t, &Settings{Voice: "AU Female", Starter: "Clap", Theme: "Green"}, saved.GetSettings())

	_, err = client.SaveConfig(ctx, &SaveConfigRequest{
		Actor:  actor,
		Config: &StarterConfig{MarkDelaySeconds: 31, SetDelaySeconds: 2, Variability: "Low"},
	})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.SaveConfig(ctx, &SaveConfigRequest{
		Actor:  actor,
		Config: &StarterConfig{MarkDelaySeconds: 10, SetDelaySeconds: 2, Variability: "Extreme"},
	})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	defaults, err := client.SaveConfig(ctx, &SaveConfigRequest{Actor: actor, Defaults: true})
	require.NoError(t, err)
	require.Equal(t, ToStarterConfig(domain.DefaultStarterConfig()), defaults.GetConfig())

	loaded, err := client.GetConfig(ctx, new(ConfigRequest))
	require.NoError(t, err)
	require.Equal(t, defaults.GetConfig(), loaded.GetConfig())
	require.Equal(t, "AU Female", loaded.GetSettings().Voice)

	svc.mu.Lock()
	svc.saveErr = errTestSave
	svc.mu.Unlock()

	_, err = client.SaveConfig(ctx, &SaveConfigRequest{Actor: actor, Defaults: true})
	require.Equal(t, codes.Internal, status.Code(err))
}

// TestServer_Watch streams statuses until the service closes the channel.
func TestServer_Watch(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	client := dialBufconn(t, svc)

	stream, err := client.Watch(context.Background(), new(WatchRequest))
	require.NoError(t, err)

	at := time.Date(2026, 5, 1, 10, 0, 0, 123456789, time.UTC)

	svc.updates <- &Status{Snapshot: domain.Snapshot{State: domain.StateOnYourMarks, Remaining: 7, At: at}}
	svc.updates <- &Status{Snapshot: domain.Snapshot{State: domain.StateSet, At: at.Add(time.Second)}}

	first, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, domain.StateOnYourMarks.String(), first.GetState())
	require.InDelta(t, 7.0, first.GetRemaining(), 1e-9)
	require.True(t, at.Equal(first.Timestamp))

	second, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, domain.StateSet.String(), second.GetState())

	close(svc.updates)

	_, err = stream.Recv()
	require.Equal(t, codes.Unavailable, status.Code(err))

	<-svc.stopped
}

// TestStatusResponse_SetDelayHiddenUntilFired keeps the sampled delay off the wire while it can still be anticipated.
func TestStatusResponse_SetDelayHiddenUntilFired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state domain.State
		want  int64
	}{
		{state: domain.StateOnYourMarks, want: 0},
		{state: domain.StateSet, want: 0},
		{state: domain.StateFired, want: 2370},
		{state: domain.StateCooldown, want: 2370},
		{state: domain.StateIdle, want: 2370},
	}

	for _, tt := range tests {
		resp := toStatusResponse(&Status{Snapshot: domain.Snapshot{
			RunID:    uuid.New(),
			State:    tt.state,
			Config:   domain.DefaultStarterConfig(),
			SetDelay: 2370 * time.Millisecond,
		}})
		require.Equal(t, tt.want, resp.SetDelayMS, tt.state.String())
	}
}
