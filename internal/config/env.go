package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultEnvFilename is the optional dotenv file read by ApplyEnvironment.
const DefaultEnvFilename = ".env"

// Environment variable names.
const (
	EnvListenAddress = "SPRINT_START_LISTEN_ADDR"
	EnvServerAddress = "SPRINT_START_SERVER_ADDR"
	EnvLogLevel      = "SPRINT_START_LOG_LEVEL"
	EnvStore         = "SPRINT_START_STORE"
	EnvStorePath     = "SPRINT_START_STORE_PATH"
	EnvHistoryFile   = "SPRINT_START_HISTORY_FILE"
	EnvSoundsDir     = "SPRINT_START_SOUNDS_DIR"
	EnvMute          = "SPRINT_START_MUTE"
)

// ApplyEnvironment overrides cfg with values from the .env file in the working
// directory and from the process environment; the process wins. The .env file
// is read without touching the process environment.
func ApplyEnvironment(cfg *Config) error {
	values, err := godotenv.Read(DefaultEnvFilename)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", DefaultEnvFilename, err)
	}

	return applyValues(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := values[key]

		return v, ok
	})
}

func applyValues(cfg *Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	fields := map[string]*string{
		EnvListenAddress: &cfg.ListenAddress,
		EnvServerAddress: &cfg.ServerAddress,
		EnvLogLevel:      &cfg.LogLevel,
		EnvStore:         &cfg.Store,
		EnvStorePath:     &cfg.StorePath,
		EnvHistoryFile:   &cfg.HistoryFile,
		EnvSoundsDir:     &cfg.Cues.SoundsDir,
	}

	for key, field := range fields {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup(EnvMute); ok && v != "" {
		mute, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvMute, err)
		}

		cfg.Cues.Mute = mute
	}

	return nil
}
