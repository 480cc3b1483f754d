package starter

import (
	"fmt"

	"github.com/google/uuid"

	domain "github.com/oshokin/sprint-start/internal/domain/starter"
)

// ToActor converts a domain actor to its wire form.
func ToActor(actor *domain.Actor) *Actor {
	if actor == nil {
		return nil
	}

	return &Actor{
		Hostname: actor.Hostname,
		Username: actor.Username,
	}
}

func toDomainActor(actor *Actor) *domain.Actor {
	if actor == nil {
		return nil
	}

	return &domain.Actor{
		Hostname: actor.GetHostname(),
		Username: actor.GetUsername(),
	}
}

// ToStarterConfig converts a domain configuration to its wire form.
func ToStarterConfig(cfg domain.StarterConfig) *StarterConfig {
	return &StarterConfig{
		MarkDelaySeconds: cfg.MarkDelaySeconds,
		SetDelaySeconds:  cfg.SetDelaySeconds,
		Variability:      cfg.Variability.String(),
	}
}

// toDomainConfig converts and validates a wire configuration.
func toDomainConfig(cfg *StarterConfig) (domain.StarterConfig, error) {
	variability, err := domain.ParseVariability(cfg.Variability)
	if err != nil {
		return domain.StarterConfig{}, err
	}

	out := domain.StarterConfig{
		MarkDelaySeconds: cfg.MarkDelaySeconds,
		SetDelaySeconds:  cfg.SetDelaySeconds,
		Variability:      variability,
	}

	if err = out.Validate(); err != nil {
		return domain.StarterConfig{}, fmt.Errorf("validate config: %w", err)
	}

	return out, nil
}

// FromStarterConfig converts a wire configuration to the domain form,
// substituting defaults for invalid fields.
func FromStarterConfig(cfg *StarterConfig) domain.StarterConfig {
	if cfg == nil {
		return domain.DefaultStarterConfig()
	}

	variability, err := domain.ParseVariability(cfg.Variability)
	if err != nil {
		variability = -1
	}

	out := domain.StarterConfig{
		MarkDelaySeconds: cfg.MarkDelaySeconds,
		SetDelaySeconds:  cfg.SetDelaySeconds,
		Variability:      variability,
	}
	out.Normalize()

	return out
}

// ToSettings converts domain settings to the wire form.
func ToSettings(s domain.Settings) *Settings {
	return &Settings{
		Voice:   s.Voice,
		Starter: s.Starter,
		Theme:   s.Theme,
	}
}

func toDomainSettings(s *Settings) *domain.Settings {
	return &domain.Settings{
		Voice:   s.Voice,
		Starter: s.Starter,
		Theme:   s.Theme,
	}
}

func toConfigResponse(cfg domain.StarterConfig, settings domain.Settings) *ConfigResponse {
	return &ConfigResponse{
		Config:   ToStarterConfig(cfg),
		Settings: ToSettings(settings),
	}
}

func toStatusResponse(st *Status) *StatusResponse {
	if st == nil {
		return &StatusResponse{State: domain.StateIdle.String(), CanStart: false}
	}

	snap := st.Snapshot

	resp := &StatusResponse{
		State:      snap.State.String(),
		Remaining:  snap.Remaining,
		Total:      snap.Total,
		CanStart:   snap.CanStart(),
		Timestamp:  snap.At,
		LastActor:  ToActor(st.LastActor),
	}

	if snap.State != domain.StateOnYourMarks && snap.State != domain.StateSet {
		resp.SetDelayMS = snap.SetDelay.Milliseconds()
	}

	if snap.RunID != uuid.Nil {
		resp.RunID = snap.RunID.String()
		resp.Config = ToStarterConfig(snap.Config)
	}

	return resp
}
