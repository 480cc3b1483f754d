package integration

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sprint-start/internal/config"
	"github.com/oshokin/sprint-start/internal/domain/starter"
	historyrepo "github.com/oshokin/sprint-start/internal/repository/history"
	"github.com/oshokin/sprint-start/internal/service/client"
	"github.com/oshokin/sprint-start/internal/service/common"
	"github.com/oshokin/sprint-start/internal/service/server"
)

// recordingEmitter records cues instead of playing them.
type recordingEmitter struct {
	mu    sync.Mutex
	texts []string
}

func (e *recordingEmitter) Speak(_ context.Context, text, _ string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.texts = append(e.texts, text)

	return nil
}

func (e *recordingEmitter) PlaySound(_ context.Context, soundID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.texts = append(e.texts, soundID)

	return nil
}

func (e *recordingEmitter) recorded() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]string(nil), e.texts...)
}

// testServer is a running starter-server.
type testServer struct {
	addr       string
	configPath string
	history    string
	emitter    *recordingEmitter
	stop       func()
}

// startServer runs the real server on a free port with every file in a temp dir.
func startServer(t *testing.T, store string) *testServer {
	t.Helper()

	dir := t.TempDir()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	storePath := filepath.Join(dir, "data.yaml")
	if store == config.StoreBadger {
		storePath = filepath.Join(dir, "data")
	}

	ts := &testServer{
		addr:       lis.Addr().String(),
		configPath: filepath.Join(dir, "sprint-start.yaml"),
		history:    filepath.Join(dir, "history.cbor"),
		emitter:    new(recordingEmitter),
	}

	require.NoError(t, config.Save(ts.configPath, &config.Config{
		ListenAddress: ts.addr,
		ServerAddress: ts.addr,
		Timeout:       3 * time.Second,
		Store:         store,
		StorePath:     storePath,
		HistoryFile:   ts.history,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath: ts.configPath,
			Listener:   lis,
			Emitter:    ts.emitter,
			Ready:      ready,
		})
	}()

	select {
	case <-ready:
	case err = <-done:
		require.NoError(t, err)
		t.Fatal("server exited before it was ready")
	}

	var once sync.Once

	ts.stop = func() {
		once.Do(func() {
			cancel()
			require.NoError(t, <-done)
		})
	}

	t.Cleanup(ts.stop)

	return ts
}

// TestServer_StartResetAndHistory starts and resets a run over gRPC and checks the history log.
func TestServer_StartResetAndHistory(t *testing.T) {
	t.Parallel()

	for _, store := range []string{config.StoreFile, config.StoreBadger} {
		ts := startServer(t, store)
		ctx := context.Background()

		c, err := common.Dial(ctx, ts.addr, common.WithCallTimeout(3*time.Second))
		require.NoError(t, err)

		actor := &starter.Actor{Hostname: "track-pc", Username: "coach"}

		started, err := c.Start(ctx, actor)
		require.NoError(t, err, store)
		require.True(t, started.GetStarted(), store)
		require.Equal(t, starter.StateOnYourMarks.String(), started.GetStatus().GetState(), store)

		again, err := c.Start(ctx, actor)
		require.NoError(t, err, store)
		require.False(t, again.GetStarted(), store)

		status, err := c.Reset(ctx, actor)
		require.NoError(t, err, store)
		require.Equal(t, starter.StateIdle.String(), status.GetState(), store)
		require.Zero(t, status.GetRemaining(), store)
		require.Equal(t, "coach", status.GetLastActor().GetUsername(), store)

		require.Equal(t, []string{starter.MarkCueText}, ts.emitter.recorded(), store)
		require.NoError(t, c.Close())

		ts.stop()

		records, err := historyrepo.Read(ctx, ts.history, 0)
		require.NoError(t, err, store)
		require.Len(t, records, 1, store)
		require.Equal(t, starter.OutcomeReset, records[0].Outcome, store)
		require.Equal(t, starter.DefaultStarterConfig(), records[0].Config, store)
	}
}

// TestServer_RemoteConfig changes the configuration through the server and sees it in the next run.
func TestServer_RemoteConfig(t *testing.T) {
	t.Parallel()

	ts := startServer(t, config.StoreFile)
	ctx := context.Background()

	var out bytes.Buffer

	opts := &client.ConfigOptions{ConfigPath: ts.configPath, Remote: true, Out: &out}

	mark := 6
	variability := "None"
	require.NoError(t, client.UpdateConfig(ctx, opts, &client.ConfigUpdate{
		MarkDelaySeconds: &mark,
		Variability:      &variability,
	}))
	require.Contains(t, out.String(), "mark 6 sec, set 2.00 sec, variability None")

	bad := 40
	require.Error(t, client.UpdateConfig(ctx, opts, &client.ConfigUpdate{MarkDelaySeconds: &bad}))

	out.Reset()
	require.NoError(t, client.Run(ctx, &client.Options{ConfigPath: ts.configPath, Action: client.ActionStart, Out: &out}))
	require.Contains(t, out.String(), "OnYourMarks 6/6 sec")
	require.Contains(t, out.String(), "variability None")

	out.Reset()
	require.NoError(t, client.Run(ctx, &client.Options{ConfigPath: ts.configPath, Action: client.ActionReset, Out: &out}))
	require.Contains(t, out.String(), "Idle")
}

// TestServer_FollowEndsWithRun follows a run until a reset returns it to Idle.
func TestServer_FollowEndsWithRun(t *testing.T) {
	t.Parallel()

	ts := startServer(t, config.StoreFile)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	defer cancel()

	var out bytes.Buffer

	done := make(chan error, 1)

	go func() {
		done <- client.Run(ctx, &client.Options{
			ConfigPath: ts.configPath,
			Action:     client.ActionStart,
			Follow:     true,
			Out:        &out,
		})
	}()

	c, err := common.Dial(ctx, ts.addr)
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	// Wait for the countdown to tick once, then abort.
	require.Eventually(t, func() bool {
		status, err := c.Status(ctx)

		return err == nil && status.GetState() == starter.StateOnYourMarks.String() && status.GetRemaining() < 20
	}, 5*time.Second, 50*time.Millisecond)

	_, err = c.Reset(ctx, &starter.Actor{Hostname: "h", Username: "u"})
	require.NoError(t, err)

	require.NoError(t, <-done)
	require.Contains(t, out.String(), "OnYourMarks 20/20 sec")
	require.Contains(t, out.String(), "OnYourMarks 19/20 sec")
	require.Contains(t, out.String(), "Idle")
}
