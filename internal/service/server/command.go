package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	api "github.com/oshokin/sprint-start/internal/api/grpc/starter"
	"github.com/oshokin/sprint-start/internal/config"
	"github.com/oshokin/sprint-start/internal/logger"
	historyrepo "github.com/oshokin/sprint-start/internal/repository/history"
	"github.com/oshokin/sprint-start/internal/repository/settings"
	"github.com/oshokin/sprint-start/internal/service/common"
	"github.com/oshokin/sprint-start/internal/service/cue"
	"github.com/oshokin/sprint-start/internal/service/history"
	"github.com/oshokin/sprint-start/internal/service/sequence"
)

// Options controls the starter-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// Listener, when set, is used instead of listening on ListenAddress.
	Listener net.Listener
	// Emitter, when set, replaces the emitter built from the cue configuration.
	Emitter sequence.CueEmitter
	// Ready, when set, is closed once the server accepts calls.
	Ready chan<- struct{}
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the sequence controller behind the gRPC API and blocks until the
// context is canceled or the server stops.
//
//nolint:funlen // Wiring of every component in one place.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "starter-server")

	settingsCfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	common.ApplyLogLevel(ctx, settingsCfg.LogLevel)

	listenAddress, err := resolveListenAddress(settingsCfg.ListenAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	store, err := settings.Open(ctx, settingsCfg.Store, settingsCfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close store", "error", closeErr)
		}
	}()

	historyLog, err := historyrepo.OpenFileLog(settingsCfg.HistoryFile)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	defer func() {
		if closeErr := historyLog.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close history", "error", closeErr)
		}
	}()

	emitter := opts.Emitter
	if emitter == nil {
		emitter = cue.FromConfig(settingsCfg.Cues, os.Stdout)
	}

	ctrl := sequence.New(ctx, store, emitter)
	sub := ctrl.Subscribe(sequence.DefaultSubscriptionBuffer)
	recorderDone := make(chan struct{})

	defer func() {
		ctrl.Close()
		<-recorderDone
	}()

	go func() {
		defer close(recorderDone)

		// Drains until the controller closes the subscription.
		history.NewRecorder(historyLog).Run(context.WithoutCancel(ctx), sub.C())
	}()

	lis := opts.Listener
	if lis == nil {
		lc := net.ListenConfig{}

		lis, err = lc.Listen(ctx, "tcp", listenAddress)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", listenAddress, err)
		}
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(api.LoggingInterceptor(ctx)))
	api.RegisterStarterServiceServer(grpcServer, api.NewServer(newService(ctrl, store)))

	logger.InfoKV(
		ctx,
		"Starter server listening",
		"listen_address", lis.Addr().String(),
		"store", settingsCfg.Store,
		"store_path", settingsCfg.StorePath,
		"history_file", settingsCfg.HistoryFile,
	)

	if opts.Ready != nil {
		close(opts.Ready)
	}

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		// Ending the sequence closes open Watch streams so GracefulStop can finish.
		ctrl.Close()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise uses configAddr as is.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		if _, _, err := net.SplitHostPort(override); err != nil {
			// A bare port is accepted, e.g. "50071".
			return net.JoinHostPort("", override), nil //nolint:nilerr // Port-only override.
		}

		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid listen address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
