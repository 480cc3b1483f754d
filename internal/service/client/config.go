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
	historyrepo "github.com/oshokin/sprint-start/internal/repository/history"
	"github.com/oshokin/sprint-start/internal/repository/settings"
	"github.com/oshokin/sprint-start/internal/service/common"
)

// errUnknownSelection is returned for voice, starter or theme names outside the catalogs.
var errUnknownSelection = errors.New("unknown selection")

// ConfigOptions selects where configuration commands read and write.
type ConfigOptions struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Remote goes through the starter server instead of the local store.
	Remote bool
	// Out receives the printed configuration, os.Stdout if nil.
	Out io.Writer
	// DialOptions are passed to common.Dial.
	DialOptions []common.Option
}

// ConfigUpdate lists the fields to change; nil fields are kept.
type ConfigUpdate struct {
	// MarkDelaySeconds is the new mark-to-set delay.
	MarkDelaySeconds *int
	// SetDelaySeconds is the new set-to-fire delay center.
	SetDelaySeconds *float64
	// Variability is the new jitter class name or label.
	Variability *string
	// Defaults replaces the starter configuration with the defaults first.
	Defaults bool
	// Voice, Starter and Theme are the new display names.
	Voice   *string
	Starter *string
	Theme   *string
}

func (u *ConfigUpdate) touchesConfig() bool {
	return u.Defaults || u.MarkDelaySeconds != nil || u.SetDelaySeconds != nil || u.Variability != nil
}

func (u *ConfigUpdate) touchesSettings() bool {
	return u.Voice != nil || u.Starter != nil || u.Theme != nil
}

// apply changes cfg and s in place and validates the result.
func (u *ConfigUpdate) apply(cfg *starter.StarterConfig, s *starter.Settings) error {
	if u.Defaults {
		*cfg = starter.DefaultStarterConfig()
	}

	if u.MarkDelaySeconds != nil {
		cfg.MarkDelaySeconds = *u.MarkDelaySeconds
	}

	if u.SetDelaySeconds != nil {
		cfg.SetDelaySeconds = *u.SetDelaySeconds
	}

	if u.Variability != nil {
		v, err := starter.ParseVariability(*u.Variability)
		if err != nil {
			return err
		}

		cfg.Variability = v
	}

	if u.touchesConfig() {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if u.Voice != nil {
		s.Voice = *u.Voice
	}

	if u.Starter != nil {
		s.Starter = *u.Starter
	}

	if u.Theme != nil {
		s.Theme = *u.Theme
	}

	if check := *s; check.Normalize() {
		return fmt.Errorf("%w: voice %q, starter %q, theme %q", errUnknownSelection, s.Voice, s.Starter, s.Theme)
	}

	return nil
}

// ShowConfig prints the stored starter configuration and settings.
func ShowConfig(ctx context.Context, opts *ConfigOptions) error {
	return UpdateConfig(ctx, opts, new(ConfigUpdate))
}

// UpdateConfig applies update and prints the stored result. An empty update
// only prints.
func UpdateConfig(ctx context.Context, opts *ConfigOptions, update *ConfigUpdate) error {
	ctx = logger.WithName(ctx, "sprint-start")

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	var (
		cfg starter.StarterConfig
		s   starter.Settings
		err error
	)

	if opts.Remote {
		cfg, s, err = updateRemote(ctx, opts, update)
	} else {
		cfg, s, err = updateLocal(ctx, opts, update)
	}

	if err != nil {
		return err
	}

	//nolint:errcheck // Terminal output.
	fmt.Fprintf(out, "Starter: %s\nSettings: voice %s, starter %s, theme %s\n", cfg.String(), s.Voice, s.Starter, s.Theme)

	return nil
}

func updateLocal(ctx context.Context, opts *ConfigOptions, update *ConfigUpdate) (starter.StarterConfig, starter.Settings, error) {
	appCfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return starter.StarterConfig{}, starter.Settings{}, err
	}

	common.ApplyLogLevel(ctx, appCfg.LogLevel)

	store, err := settings.Open(ctx, appCfg.Store, appCfg.StorePath)
	if err != nil {
		return starter.StarterConfig{}, starter.Settings{}, fmt.Errorf("open store: %w", err)
	}

	defer func() {
		_ = store.Close()
	}()

	cfg := store.LoadStarterConfig(ctx)
	s := store.LoadSettings(ctx)

	if err = update.apply(&cfg, &s); err != nil {
		return starter.StarterConfig{}, starter.Settings{}, err
	}

	if update.touchesConfig() {
		if err = store.SaveStarterConfig(ctx, cfg); err != nil {
			return starter.StarterConfig{}, starter.Settings{}, err
		}
	}

	if update.touchesSettings() {
		if err = store.SaveSettings(ctx, s); err != nil {
			return starter.StarterConfig{}, starter.Settings{}, err
		}
	}

	return store.LoadStarterConfig(ctx), store.LoadSettings(ctx), nil
}

func updateRemote(ctx context.Context, opts *ConfigOptions, update *ConfigUpdate) (starter.StarterConfig, starter.Settings, error) {
	client, err := connect(ctx, opts.ConfigPath, opts.ServerAddress, opts.DialOptions)
	if err != nil {
		return starter.StarterConfig{}, starter.Settings{}, err
	}

	defer func() {
		_ = client.Close()
	}()

	current, err := client.Config(ctx)
	if err != nil {
		return starter.StarterConfig{}, starter.Settings{}, err
	}

	cfg := api.FromStarterConfig(current.GetConfig())
	s := fromSettings(current.GetSettings())

	if !update.touchesConfig() && !update.touchesSettings() {
		return cfg, s, nil
	}

	if err = update.apply(&cfg, &s); err != nil {
		return starter.StarterConfig{}, starter.Settings{}, err
	}

	actor, err := common.DetectActor()
	if err != nil {
		return starter.StarterConfig{}, starter.Settings{}, err
	}

	req := new(api.SaveConfigRequest)
	if update.touchesConfig() {
		req.Config = api.ToStarterConfig(cfg)
	}

	if update.touchesSettings() {
		req.Settings = api.ToSettings(s)
	}

	saved, err := client.SaveConfig(ctx, actor, req)
	if err != nil {
		return starter.StarterConfig{}, starter.Settings{}, err
	}

	return api.FromStarterConfig(saved.GetConfig()), fromSettings(saved.GetSettings()), nil
}

func fromSettings(s *api.Settings) starter.Settings {
	if s == nil {
		return starter.DefaultSettings()
	}

	out := starter.Settings{Voice: s.Voice, Starter: s.Starter, Theme: s.Theme}
	out.Normalize()

	return out
}

// ShowHistory prints the last limit runs from the local history log.
func ShowHistory(ctx context.Context, configPath string, limit int, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	appCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	records, err := historyrepo.Read(ctx, appCfg.HistoryFile, limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No runs recorded") //nolint:errcheck // Terminal output.

		return nil
	}

	for _, rec := range records {
		fmt.Fprintln(out, FormatRecord(rec)) //nolint:errcheck // Terminal output.
	}

	return nil
}
