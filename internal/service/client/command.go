package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	api "github.com/oshokin/sprint-start/internal/api/grpc/starter"
	"github.com/oshokin/sprint-start/internal/config"
	"github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/logger"
	"github.com/oshokin/sprint-start/internal/service/common"
)

// Action is a remote sequence command.
type Action string

const (
	// ActionStart begins a run.
	ActionStart Action = "start"
	// ActionReset aborts the current run.
	ActionReset Action = "reset"
	// ActionStatus prints the current status.
	ActionStatus Action = "status"
)

// ErrUnknownAction is returned for actions other than start, reset and status.
var ErrUnknownAction = errors.New("unknown action")

// Options configures a remote sequence command.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Action is the command to perform.
	Action Action
	// Follow keeps printing status updates: until the run ends for start,
	// until interrupted for status.
	Follow bool
	// Out receives the printed status, os.Stdout if nil.
	Out io.Writer
	// DialOptions are passed to common.Dial.
	DialOptions []common.Option
}

// Run performs the remote sequence command.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "sprint-start")

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	client, err := connect(ctx, opts.ConfigPath, opts.ServerAddress, opts.DialOptions)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	var status *api.StatusResponse

	switch opts.Action {
	case ActionStart:
		actor, err := common.DetectActor()
		if err != nil {
			return err
		}

		resp, err := client.Start(ctx, actor)
		if err != nil {
			return err
		}

		if !resp.GetStarted() {
			fmt.Fprintln(out, "Sequence already running, start ignored") //nolint:errcheck // Terminal output.
		}

		status = resp.GetStatus()
	case ActionReset:
		actor, err := common.DetectActor()
		if err != nil {
			return err
		}

		if status, err = client.Reset(ctx, actor); err != nil {
			return err
		}
	case ActionStatus:
		if status, err = client.Status(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, opts.Action)
	}

	fmt.Fprintln(out, FormatStatus(status)) //nolint:errcheck // Terminal output.

	if !opts.Follow || (opts.Action == ActionStart && status.GetState() == starter.StateIdle.String()) {
		return nil
	}

	return follow(ctx, client, out, opts.Action == ActionStart, status.RunID)
}

// follow prints streamed statuses. With untilIdle it returns once the run
// identified by runID is back to Idle.
func follow(ctx context.Context, client *common.Client, out io.Writer, untilIdle bool, runID string) error {
	last := ""

	return client.Watch(ctx, func(resp *api.StatusResponse) bool {
		line := FormatStatus(resp)
		if line != last {
			fmt.Fprintln(out, line) //nolint:errcheck // Terminal output.

			last = line
		}

		if !untilIdle {
			return true
		}

		return !(resp.GetState() == starter.StateIdle.String() && (runID == "" || resp.RunID == runID))
	})
}

// connect loads the config and dials the server.
func connect(ctx context.Context, configPath, serverAddress string, options []common.Option) (*common.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	common.ApplyLogLevel(ctx, cfg.LogLevel)

	if serverAddress == "" {
		serverAddress = cfg.ServerAddress
	}

	logger.DebugKV(ctx, "Connecting to starter server", "server_address", serverAddress)

	dialOptions := append([]common.Option{common.WithCallTimeout(cfg.Timeout)}, options...)

	return common.Dial(ctx, serverAddress, dialOptions...)
}
