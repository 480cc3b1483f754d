//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	api "github.com/oshokin/sprint-start/internal/api/grpc/starter"
	"github.com/oshokin/sprint-start/internal/config"
	"github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/version"
)

// Client wraps the gRPC StarterService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the starter server.
	conn *grpc.ClientConn
	// api is the StarterService client.
	api api.StarterServiceClient

	// callTimeout is the default timeout for individual unary calls.
	callTimeout time.Duration
	// dialOptions are appended to the defaults on Dial.
	dialOptions []grpc.DialOption
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithDialOptions adds gRPC dial options, e.g. a custom dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
)

// Dial establishes a gRPC connection to the starter server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
		grpc.WithUserAgent(version.UserAgent()),
	}, client.dialOptions...)

	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial starter server: %w", err)
	}

	client.conn = conn
	client.api = api.NewStarterServiceClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Start asks the server to begin a run.
func (c *Client) Start(ctx context.Context, actor *starter.Actor) (*api.StartResponse, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Start(callCtx, &api.StartRequest{Actor: api.ToActor(actor)})
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	return resp, nil
}

// Reset asks the server to abort the current run.
func (c *Client) Reset(ctx context.Context, actor *starter.Actor) (*api.StatusResponse, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Reset(callCtx, &api.ResetRequest{Actor: api.ToActor(actor)})
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	return resp, nil
}

// Status retrieves the current sequence status.
func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx, new(api.StatusRequest))
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return resp, nil
}

// Watch calls fn for every status the server streams until fn returns false,
// ctx is canceled or the stream ends. The stream has no call timeout.
func (c *Client) Watch(ctx context.Context, fn func(*api.StatusResponse) bool) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.api.Watch(watchCtx, new(api.WatchRequest))
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("watch: %w", err)
		}

		if !fn(resp) {
			return nil
		}
	}
}

// Config retrieves the stored configuration and settings.
func (c *Client) Config(ctx context.Context) (*api.ConfigResponse, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetConfig(callCtx, new(api.ConfigRequest))
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}

	return resp, nil
}

// SaveConfig stores a configuration, settings, or the defaults.
func (c *Client) SaveConfig(ctx context.Context, actor *starter.Actor, req *api.SaveConfigRequest) (*api.ConfigResponse, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	req.Actor = api.ToActor(actor)

	resp, err := c.api.SaveConfig(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	return resp, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
