package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/sprint-start/internal/config"
	"github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/logger"
)

// document is the on-disk layout of FileRepository.
type document struct {
	Delay    *delayRecord    `yaml:"delay,omitempty"`
	Settings *settingsRecord `yaml:"settings,omitempty"`
}

// FileRepository persists the starter configuration and settings to a YAML file.
type FileRepository struct {
	// path is the filesystem location of the YAML file.
	path string
	// mu serializes read-modify-write cycles on the file.
	mu sync.Mutex
}

// errNotFound is returned when the file does not exist yet.
var errNotFound = errors.New("settings not found")

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// LoadStarterConfig returns the stored configuration or defaults.
func (r *FileRepository) LoadStarterConfig(ctx context.Context) starter.StarterConfig {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		if !errors.Is(err, errNotFound) {
			logger.WarnKV(ctx, "Starter config unreadable, using defaults", "path", r.path, "error", err)
		}

		return starter.DefaultStarterConfig()
	}

	cfg, replaced := fromDelayRecord(doc.Delay)
	if replaced {
		logger.WarnKV(ctx, "Starter config out of domain, substituting defaults", "path", r.path, "config", cfg.String())
	}

	return cfg
}

// SaveStarterConfig stores cfg, replacing out-of-domain fields with defaults.
func (r *FileRepository) SaveStarterConfig(ctx context.Context, cfg starter.StarterConfig) error {
	cfg = normalizeForSave(ctx, cfg)

	return r.update(func(doc *document) {
		doc.Delay = toDelayRecord(cfg)
	})
}

// LoadSettings returns the stored settings snapshot or defaults.
func (r *FileRepository) LoadSettings(ctx context.Context) starter.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		if !errors.Is(err, errNotFound) {
			logger.WarnKV(ctx, "Settings unreadable, using defaults", "path", r.path, "error", err)
		}

		return starter.DefaultSettings()
	}

	s, replaced := fromSettingsRecord(doc.Settings)
	if replaced {
		logger.WarnKV(ctx, "Unknown selection in settings, substituting defaults", "path", r.path)
	}

	return s
}

// SaveSettings stores the settings snapshot.
func (r *FileRepository) SaveSettings(ctx context.Context, s starter.Settings) error {
	s = normalizeSettingsForSave(ctx, s)

	return r.update(func(doc *document) {
		doc.Settings = toSettingsRecord(s)
	})
}

// Close is a no-op; it lets FileRepository satisfy Store.
func (r *FileRepository) Close() error {
	return nil
}

func (r *FileRepository) read() (*document, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errNotFound
		}

		return nil, fmt.Errorf("read settings file: %w", err)
	}

	doc := new(document)
	if err = yaml.Unmarshal(contents, doc); err != nil {
		return nil, fmt.Errorf("decode settings file: %w", err)
	}

	return doc, nil
}

func (r *FileRepository) update(mutate func(*document)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		// A broken or missing file is replaced rather than preserved.
		doc = new(document)
	}

	mutate(doc)

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}
