package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"

	"github.com/oshokin/sprint-start/internal/config"
	"github.com/oshokin/sprint-start/internal/logger"
	historyrepo "github.com/oshokin/sprint-start/internal/repository/history"
	"github.com/oshokin/sprint-start/internal/repository/settings"
	"github.com/oshokin/sprint-start/internal/service/common"
	"github.com/oshokin/sprint-start/internal/service/cue"
	"github.com/oshokin/sprint-start/internal/service/history"
	"github.com/oshokin/sprint-start/internal/service/sequence"
)

// Options configures the interactive console.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// Stdin and Stdout replace the terminal when set.
	Stdin  io.ReadCloser
	Stdout io.Writer
}

// Run starts a local controller and reads commands until quit, EOF or ctx
// cancellation.
func Run(ctx context.Context, opts *Options) error {
	appCfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "starter> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdin:           opts.Stdin,
		Stdout:          opts.Stdout,
	})
	if err != nil {
		return fmt.Errorf("create readline: %w", err)
	}

	defer rl.Close() //nolint:errcheck // Terminal teardown.

	// Log lines must not tear the prompt.
	logger.RedirectTo(rl.Stderr())

	ctx = logger.WithName(ctx, "console")

	common.ApplyLogLevel(ctx, appCfg.LogLevel)

	store, err := settings.Open(ctx, appCfg.Store, appCfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close store", "error", closeErr)
		}
	}()

	historyLog, err := historyrepo.OpenFileLog(appCfg.HistoryFile)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	defer func() {
		if closeErr := historyLog.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close history", "error", closeErr)
		}
	}()

	out := rl.Stdout()

	cues := appCfg.Cues
	cues.Console = true

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := sequence.New(ctx, store, cue.FromConfig(cues, out))
	recorderSub := ctrl.Subscribe(sequence.DefaultSubscriptionBuffer)
	recorderDone := make(chan struct{})

	go func() {
		defer close(recorderDone)

		history.NewRecorder(historyLog).Run(context.WithoutCancel(ctx), recorderSub.C())
	}()

	defer func() {
		ctrl.Close()
		<-recorderDone
	}()

	c := newConsole(ctrl, store, out)

	go c.render(ctrl.Subscribe(sequence.DefaultSubscriptionBuffer).C())

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}

			// EOF.
			return nil
		}

		if quit := c.execute(ctx, line); quit {
			return nil
		}
	}
}
