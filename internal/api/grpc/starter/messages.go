package starter

import "time"

// Actor identifies the caller of a mutating RPC.
type Actor struct {
	Hostname string `cbor:"hostname"`
	Username string `cbor:"username"`
}

// GetHostname returns the hostname, nil-safe.
func (a *Actor) GetHostname() string {
	if a == nil {
		return ""
	}

	return a.Hostname
}

// GetUsername returns the username, nil-safe.
func (a *Actor) GetUsername() string {
	if a == nil {
		return ""
	}

	return a.Username
}

// StarterConfig is the wire form of the stage delays and jitter class.
type StarterConfig struct {
	MarkDelaySeconds int     `cbor:"mark_delay_seconds"`
	SetDelaySeconds  float64 `cbor:"set_delay_seconds"`
	Variability      string  `cbor:"variability"`
}

// Settings is the wire form of the voice, starter sound and theme selections.
type Settings struct {
	Voice   string `cbor:"voice"`
	Starter string `cbor:"starter"`
	Theme   string `cbor:"theme"`
}

// StartRequest asks the server to begin a run.
type StartRequest struct {
	Actor *Actor `cbor:"actor"`
}

// GetActor returns the caller, nil-safe.
func (r *StartRequest) GetActor() *Actor {
	if r == nil {
		return nil
	}

	return r.Actor
}

// StartResponse reports whether a run was started and the resulting status.
type StartResponse struct {
	Started bool            `cbor:"started"`
	Status  *StatusResponse `cbor:"status"`
}

// GetStarted reports whether the run was started, nil-safe.
func (r *StartResponse) GetStarted() bool {
	return r != nil && r.Started
}

// GetStatus returns the status, nil-safe.
func (r *StartResponse) GetStatus() *StatusResponse {
	if r == nil {
		return nil
	}

	return r.Status
}

// ResetRequest asks the server to abort the current run.
type ResetRequest struct {
	Actor *Actor `cbor:"actor"`
}

// GetActor returns the caller, nil-safe.
func (r *ResetRequest) GetActor() *Actor {
	if r == nil {
		return nil
	}

	return r.Actor
}

// StatusRequest asks for the current status.
type StatusRequest struct{}

// WatchRequest subscribes to status updates.
type WatchRequest struct{}

// StatusResponse is a snapshot of the sequence.
type StatusResponse struct {
	RunID      string         `cbor:"run_id"`
	State      string         `cbor:"state"`
	Remaining  float64        `cbor:"remaining"`
	Total      float64        `cbor:"total"`
	// SetDelayMS is the sampled set-to-fire delay, zero until the run has fired.
	SetDelayMS int64          `cbor:"set_delay_ms"`
	Config     *StarterConfig `cbor:"config"`
	CanStart   bool           `cbor:"can_start"`
	Timestamp  time.Time      `cbor:"timestamp"`
	LastActor  *Actor         `cbor:"last_actor"`
}

// GetState returns the state name, nil-safe.
func (r *StatusResponse) GetState() string {
	if r == nil {
		return ""
	}

	return r.State
}

// GetRemaining returns the countdown value, nil-safe.
func (r *StatusResponse) GetRemaining() float64 {
	if r == nil {
		return 0
	}

	return r.Remaining
}

// GetLastActor returns the last caller, nil-safe.
func (r *StatusResponse) GetLastActor() *Actor {
	if r == nil {
		return nil
	}

	return r.LastActor
}

// ConfigRequest asks for the stored configuration.
type ConfigRequest struct{}

// ConfigResponse carries the stored configuration and settings.
type ConfigResponse struct {
	Config   *StarterConfig `cbor:"config"`
	Settings *Settings      `cbor:"settings"`
}

// GetConfig returns the configuration, nil-safe.
func (r *ConfigResponse) GetConfig() *StarterConfig {
	if r == nil {
		return nil
	}

	return r.Config
}

// GetSettings returns the settings, nil-safe.
func (r *ConfigResponse) GetSettings() *Settings {
	if r == nil {
		return nil
	}

	return r.Settings
}

// SaveConfigRequest stores a configuration, settings, or both. With Defaults
// set the configuration is replaced by the documented defaults and Config is
// ignored.
type SaveConfigRequest struct {
	Actor    *Actor         `cbor:"actor"`
	Config   *StarterConfig `cbor:"config"`
	Settings *Settings      `cbor:"settings"`
	Defaults bool           `cbor:"defaults"`
}

// GetActor returns the caller, nil-safe.
func (r *SaveConfigRequest) GetActor() *Actor {
	if r == nil {
		return nil
	}

	return r.Actor
}
