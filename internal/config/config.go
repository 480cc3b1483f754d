package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	// StoreFile keeps the starter configuration in a YAML document.
	StoreFile = "file"
	// StoreBadger keeps the starter configuration in a Badger key-value store.
	StoreBadger = "badger"
)

const (
	// DefaultConfigFilename is the default filename for application settings.
	DefaultConfigFilename = "sprint-start.yaml"

	// DefaultStorePath is the default location of the starter configuration store.
	DefaultStorePath = "sprint-start-data.yaml"

	// DefaultBadgerPath is the default directory of the Badger store.
	DefaultBadgerPath = "sprint-start-data"

	// DefaultHistoryFilename is the default run history log.
	DefaultHistoryFilename = "sprint-start-history.cbor"

	// DefaultServerAddress is where the starter server listens and clients dial.
	DefaultServerAddress = "127.0.0.1:50071"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultSoundsDir holds the <sound-id>.mp3 assets.
	DefaultSoundsDir = "sounds"

	// DefaultFilePermissions is the permission used for files written by the app.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownStore is returned for store kinds other than file and badger.
	errUnknownStore = errors.New("unknown store kind")
)

// CueConfig selects and configures the cue backends.
type CueConfig struct {
	// SpeechCommand is a command template with {voice} and {text} placeholders.
	// Empty selects the platform default.
	SpeechCommand string `yaml:"speech_command,omitempty"`
	// SoundCommand is a command template with a {file} placeholder.
	// Empty selects the platform default.
	SoundCommand string `yaml:"sound_command,omitempty"`
	// SoundsDir is the directory holding <sound-id>.mp3 files.
	SoundsDir string `yaml:"sounds_dir"`
	// Console also prints cues to the terminal.
	Console bool `yaml:"console"`
	// Mute disables the OS speech and sound commands.
	Mute bool `yaml:"mute"`
}

// Config holds the application settings.
type Config struct {
	// ListenAddress is where starter-server accepts gRPC connections.
	ListenAddress string `yaml:"listen_addr"`
	// ServerAddress is the starter-server address dialed by remote commands.
	ServerAddress string `yaml:"server_addr"`
	// Timeout is the per-call timeout of remote commands.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Store selects the starter configuration backend: file or badger.
	Store string `yaml:"store"`
	// StorePath is the YAML file or Badger directory of the store.
	StorePath string `yaml:"store_path"`
	// HistoryFile is the run history log.
	HistoryFile string `yaml:"history_file"`
	// Cues configures the cue backends.
	Cues CueConfig `yaml:"cues"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := new(Config)

	// Validate only fills defaults here.
	_ = Validate(cfg) //nolint:errcheck // Empty config always validates.

	return cfg
}

// Load reads configuration from path, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := new(Config)

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults plus environment.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = ApplyEnvironment(cfg); err != nil {
		return nil, err
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for empty fields and checks the rest.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		cfg.ServerAddress = DefaultServerAddress
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = cfg.ServerAddress
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Store == "" {
		cfg.Store = StoreFile
	}

	if cfg.StorePath == "" {
		cfg.StorePath = defaultStorePath(cfg.Store)
	}

	if cfg.HistoryFile == "" {
		cfg.HistoryFile = DefaultHistoryFilename
	}

	if cfg.Cues.SoundsDir == "" {
		cfg.Cues.SoundsDir = DefaultSoundsDir
	}

	if cfg.Store != StoreFile && cfg.Store != StoreBadger {
		return fmt.Errorf("%w: %q", errUnknownStore, cfg.Store)
	}

	if _, _, err := net.SplitHostPort(cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	return nil
}

func defaultStorePath(store string) string {
	if store == StoreBadger {
		return DefaultBadgerPath
	}

	return DefaultStorePath
}
