package settings

import (
	"context"

	"github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/logger"
)

// Storage keys.
const (
	delayKey    = "delay"
	settingsKey = "settings"
)

// delayRecord is the persisted form of starter.StarterConfig.
type delayRecord struct {
	FirstDelay  int     `yaml:"firstDelay" cbor:"firstDelay"`
	SecondDelay float64 `yaml:"secondDelay" cbor:"secondDelay"`
	Variability string  `yaml:"variability" cbor:"variability"`
}

// settingsRecord is the persisted form of starter.Settings.
type settingsRecord struct {
	Voice   string `yaml:"voice" cbor:"voice"`
	Starter string `yaml:"starter" cbor:"starter"`
	Theme   string `yaml:"theme" cbor:"theme"`
}

func toDelayRecord(cfg starter.StarterConfig) *delayRecord {
	return &delayRecord{
		FirstDelay:  cfg.MarkDelaySeconds,
		SecondDelay: cfg.SetDelaySeconds,
		Variability: cfg.Variability.String(),
	}
}

// fromDelayRecord converts a record, replacing invalid fields with defaults.
// It reports whether any field was replaced.
func fromDelayRecord(rec *delayRecord) (starter.StarterConfig, bool) {
	if rec == nil {
		return starter.DefaultStarterConfig(), false
	}

	variability, err := starter.ParseVariability(rec.Variability)
	if err != nil {
		variability = -1
	}

	cfg := starter.StarterConfig{
		MarkDelaySeconds: rec.FirstDelay,
		SetDelaySeconds:  rec.SecondDelay,
		Variability:      variability,
	}

	return cfg, cfg.Normalize()
}

func toSettingsRecord(s starter.Settings) *settingsRecord {
	return &settingsRecord{
		Voice:   s.Voice,
		Starter: s.Starter,
		Theme:   s.Theme,
	}
}

func fromSettingsRecord(rec *settingsRecord) (starter.Settings, bool) {
	if rec == nil {
		return starter.DefaultSettings(), false
	}

	s := starter.Settings{
		Voice:   rec.Voice,
		Starter: rec.Starter,
		Theme:   rec.Theme,
	}

	return s, s.Normalize()
}

// normalizeForSave replaces out-of-domain fields before they reach storage.
func normalizeForSave(ctx context.Context, cfg starter.StarterConfig) starter.StarterConfig {
	if err := cfg.Validate(); err != nil {
		logger.WarnKV(ctx, "Starter config out of domain, substituting defaults", "error", err)
		cfg.Normalize()
	}

	return cfg
}

func normalizeSettingsForSave(ctx context.Context, s starter.Settings) starter.Settings {
	if s.Normalize() {
		logger.WarnKV(ctx, "Unknown selection, substituting defaults", "settings", s)
	}

	return s
}
