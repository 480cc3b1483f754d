package starter

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/logger"
)

// ErrInvalidConfig is returned by a Service when a configuration is rejected.
var ErrInvalidConfig = errors.New("invalid configuration")

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Start(ctx context.Context, actor *domain.Actor) (bool, *Status)
	Reset(ctx context.Context, actor *domain.Actor) *Status
	Status(ctx context.Context) *Status
	// Watch returns a channel of statuses and a function that ends the watch.
	// The channel is closed when the watch ends or the sequence stops.
	Watch(ctx context.Context) (<-chan *Status, func())
	LoadConfig(ctx context.Context) (domain.StarterConfig, domain.Settings)
	SaveConfig(ctx context.Context, actor *domain.Actor, cfg *domain.StarterConfig, settings *domain.Settings) (domain.StarterConfig, domain.Settings, error)
}

// Status is what the service reports about the sequence.
type Status struct {
	// Snapshot is the sequence view.
	Snapshot domain.Snapshot
	// LastActor is who last started or reset the sequence remotely.
	LastActor *domain.Actor
}

// Server implements StarterServiceServer.
type Server struct {
	// service provides the business logic.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Start begins a run; a start during an active run reports Started=false.
func (s *Server) Start(ctx context.Context, req *StartRequest) (*StartResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.GetActor() == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	started, st := s.service.Start(ctx, toDomainActor(req.GetActor()))
	if st == nil {
		return nil, status.Error(codes.Unavailable, "sequence is stopped")
	}

	return &StartResponse{
		Started: started,
		Status:  toStatusResponse(st),
	}, nil
}

// Reset aborts the current run.
func (s *Server) Reset(ctx context.Context, req *ResetRequest) (*StatusResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.GetActor() == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	st := s.service.Reset(ctx, toDomainActor(req.GetActor()))
	if st == nil {
		return nil, status.Error(codes.Unavailable, "sequence is stopped")
	}

	return toStatusResponse(st), nil
}

// GetStatus returns the current sequence status.
func (s *Server) GetStatus(ctx context.Context, _ *StatusRequest) (*StatusResponse, error) {
	return toStatusResponse(s.service.Status(ctx)), nil
}

// Watch streams a status per state change and countdown tick until the client
// goes away or the sequence stops.
func (s *Server) Watch(_ *WatchRequest, stream grpc.ServerStreamingServer[StatusResponse]) error {
	ctx := stream.Context()

	updates, stop := s.service.Watch(ctx)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-updates:
			if !ok {
				return status.Error(codes.Unavailable, "sequence is stopped")
			}

			if err := stream.Send(toStatusResponse(st)); err != nil {
				logger.DebugKV(ctx, "Watch stream send failed", "error", err)

				return err
			}
		}
	}
}

// GetConfig returns the stored configuration and settings.
func (s *Server) GetConfig(ctx context.Context, _ *ConfigRequest) (*ConfigResponse, error) {
	cfg, settings := s.service.LoadConfig(ctx)

	return toConfigResponse(cfg, settings), nil
}

// SaveConfig validates and stores the configuration and/or settings.
func (s *Server) SaveConfig(ctx context.Context, req *SaveConfigRequest) (*ConfigResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.GetActor() == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	var cfg *domain.StarterConfig

	switch {
	case req.Defaults:
		defaults := domain.DefaultStarterConfig()
		cfg = &defaults
	case req.Config != nil:
		parsed, err := toDomainConfig(req.Config)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		cfg = &parsed
	}

	var settings *domain.Settings
	if req.Settings != nil {
		settings = toDomainSettings(req.Settings)
	}

	if cfg == nil && settings == nil {
		return nil, status.Error(codes.InvalidArgument, "config, settings or defaults is required")
	}

	savedCfg, savedSettings, err := s.service.SaveConfig(ctx, toDomainActor(req.GetActor()), cfg, settings)
	if err != nil {
		if errors.Is(err, ErrInvalidConfig) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		return nil, status.Error(codes.Internal, "unable to persist configuration")
	}

	return toConfigResponse(savedCfg, savedSettings), nil
}

// LoggingInterceptor logs every unary call with its duration and status code.
func LoggingInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := handler(ctx, req)

		logger.DebugKV(
			base,
			"RPC handled",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(started).String(),
		)

		return resp, err
	}
}

var _ StarterServiceServer = (*Server)(nil)
