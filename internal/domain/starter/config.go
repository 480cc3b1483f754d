package starter

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Variability selects the symmetric jitter bound applied to the set-to-fire delay.
type Variability int

const (
	// VariabilityNone fires exactly after the configured set delay.
	VariabilityNone Variability = iota
	// VariabilityLow adds up to ±0.25 s.
	VariabilityLow
	// VariabilityMed adds up to ±0.50 s.
	VariabilityMed
	// VariabilityHigh adds up to ±0.75 s.
	VariabilityHigh
)

// Domain bounds of StarterConfig.
const (
	MinMarkDelaySeconds = 5
	MaxMarkDelaySeconds = 30
	MinSetDelaySeconds  = 1.25
	MaxSetDelaySeconds  = 3.00
	SetDelayStepSeconds = 0.25

	DefaultMarkDelaySeconds = 20
	DefaultSetDelaySeconds  = 2.00
	DefaultVariability      = VariabilityLow
)

var (
	// ErrMarkDelayOutOfRange is returned for mark delays outside [5, 30].
	ErrMarkDelayOutOfRange = errors.New("mark delay out of range")
	// ErrSetDelayOutOfRange is returned for set delays outside [1.25, 3.00] or off the 0.25 grid.
	ErrSetDelayOutOfRange = errors.New("set delay out of range")
	// ErrUnknownVariability is returned for unknown jitter classes.
	ErrUnknownVariability = errors.New("unknown variability")
)

// Bound returns the jitter bound in seconds.
func (v Variability) Bound() float64 {
	switch v {
	case VariabilityLow:
		return 0.25
	case VariabilityMed:
		return 0.50
	case VariabilityHigh:
		return 0.75
	default:
		return 0
	}
}

// Valid reports whether v is one of the known jitter classes.
func (v Variability) Valid() bool {
	return v >= VariabilityNone && v <= VariabilityHigh
}

// String returns the persisted name of the jitter class.
func (v Variability) String() string {
	switch v {
	case VariabilityNone:
		return "None"
	case VariabilityLow:
		return "Low"
	case VariabilityMed:
		return "Med"
	case VariabilityHigh:
		return "High"
	default:
		return fmt.Sprintf("Variability(%d)", int(v))
	}
}

// Label returns the picker label, e.g. "Low (±0.25 sec)".
func (v Variability) Label() string {
	return fmt.Sprintf("%s (±%.2f sec)", v, v.Bound())
}

// ParseVariability accepts the persisted names (case-insensitive), "Medium",
// and picker labels such as "High (±0.75 sec)".
func ParseVariability(s string) (Variability, error) {
	name := strings.TrimSpace(s)
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	switch strings.ToLower(name) {
	case "none":
		return VariabilityNone, nil
	case "low":
		return VariabilityLow, nil
	case "med", "medium":
		return VariabilityMed, nil
	case "high":
		return VariabilityHigh, nil
	default:
		return VariabilityNone, fmt.Errorf("%w: %q", ErrUnknownVariability, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Variability) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariability, int(v))
	}

	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variability) UnmarshalText(text []byte) error {
	parsed, err := ParseVariability(string(text))
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// Variabilities lists the jitter classes in picker order.
func Variabilities() []Variability {
	return []Variability{VariabilityNone, VariabilityLow, VariabilityMed, VariabilityHigh}
}

// StarterConfig is the persisted configuration of a start sequence.
type StarterConfig struct {
	// MarkDelaySeconds is the time between "On your marks" and "Set".
	MarkDelaySeconds int
	// SetDelaySeconds is the nominal time between "Set" and the firing sound.
	SetDelaySeconds float64
	// Variability selects the jitter applied to SetDelaySeconds.
	Variability Variability
}

// DefaultStarterConfig returns the documented defaults.
func DefaultStarterConfig() StarterConfig {
	return StarterConfig{
		MarkDelaySeconds: DefaultMarkDelaySeconds,
		SetDelaySeconds:  DefaultSetDelaySeconds,
		Variability:      DefaultVariability,
	}
}

// Validate checks every field against its domain.
func (c StarterConfig) Validate() error {
	if c.MarkDelaySeconds < MinMarkDelaySeconds || c.MarkDelaySeconds > MaxMarkDelaySeconds {
		return fmt.Errorf("%w: %d", ErrMarkDelayOutOfRange, c.MarkDelaySeconds)
	}

	if !validSetDelay(c.SetDelaySeconds) {
		return fmt.Errorf("%w: %.2f", ErrSetDelayOutOfRange, c.SetDelaySeconds)
	}

	if !c.Variability.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownVariability, int(c.Variability))
	}

	return nil
}

// Normalize replaces every out-of-domain field with its default and reports
// whether anything was replaced.
func (c *StarterConfig) Normalize() bool {
	changed := false

	if c.MarkDelaySeconds < MinMarkDelaySeconds || c.MarkDelaySeconds > MaxMarkDelaySeconds {
		c.MarkDelaySeconds = DefaultMarkDelaySeconds
		changed = true
	}

	if !validSetDelay(c.SetDelaySeconds) {
		c.SetDelaySeconds = DefaultSetDelaySeconds
		changed = true
	}

	if !c.Variability.Valid() {
		c.Variability = DefaultVariability
		changed = true
	}

	return changed
}

// MarkDelay returns the mark-to-set delay as a duration.
func (c StarterConfig) MarkDelay() time.Duration {
	return time.Duration(c.MarkDelaySeconds) * time.Second
}

// SetDelay returns the nominal set-to-fire delay as a duration.
func (c StarterConfig) SetDelay() time.Duration {
	return Seconds(c.SetDelaySeconds)
}

// String renders the config the way the pickers show it.
func (c StarterConfig) String() string {
	return fmt.Sprintf("mark %d sec, set %.2f sec, variability %s", c.MarkDelaySeconds, c.SetDelaySeconds, c.Variability.Label())
}

// Seconds converts fractional seconds to a duration rounded to the millisecond.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s*1000)) * time.Millisecond
}

func validSetDelay(s float64) bool {
	if math.IsNaN(s) || s < MinSetDelaySeconds || s > MaxSetDelaySeconds {
		return false
	}

	steps := s / SetDelayStepSeconds

	return math.Abs(steps-math.Round(steps)) < 1e-9
}
