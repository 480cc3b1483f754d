package settings

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/fxamacker/cbor/v2"

	"github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/logger"
)

// BadgerRepository persists the starter configuration and settings in Badger,
// one CBOR-encoded value per key.
type BadgerRepository struct {
	// db is the open Badger database.
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger database in dir.
func OpenBadger(ctx context.Context, dir string) (*BadgerRepository, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve badger path: %w", err)
	}

	opts := badger.DefaultOptions(absPath)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	logger.InfoKV(ctx, "Badger store opened", "path", absPath)

	return &BadgerRepository{db: db}, nil
}

// Close closes the database.
func (r *BadgerRepository) Close() error {
	if r.db == nil {
		return nil
	}

	return r.db.Close()
}

// LoadStarterConfig returns the stored configuration or defaults.
func (r *BadgerRepository) LoadStarterConfig(ctx context.Context) starter.StarterConfig {
	var rec delayRecord

	if err := r.get(delayKey, &rec); err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logger.WarnKV(ctx, "Starter config unreadable, using defaults", "key", delayKey, "error", err)
		}

		return starter.DefaultStarterConfig()
	}

	cfg, replaced := fromDelayRecord(&rec)
	if replaced {
		logger.WarnKV(ctx, "Starter config out of domain, substituting defaults", "key", delayKey, "config", cfg.String())
	}

	return cfg
}

// SaveStarterConfig stores cfg, replacing out-of-domain fields with defaults.
func (r *BadgerRepository) SaveStarterConfig(ctx context.Context, cfg starter.StarterConfig) error {
	return r.set(delayKey, toDelayRecord(normalizeForSave(ctx, cfg)))
}

// LoadSettings returns the stored settings snapshot or defaults.
func (r *BadgerRepository) LoadSettings(ctx context.Context) starter.Settings {
	var rec settingsRecord

	if err := r.get(settingsKey, &rec); err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logger.WarnKV(ctx, "Settings unreadable, using defaults", "key", settingsKey, "error", err)
		}

		return starter.DefaultSettings()
	}

	s, replaced := fromSettingsRecord(&rec)
	if replaced {
		logger.WarnKV(ctx, "Unknown selection in settings, substituting defaults", "key", settingsKey)
	}

	return s
}

// SaveSettings stores the settings snapshot.
func (r *BadgerRepository) SaveSettings(ctx context.Context, s starter.Settings) error {
	return r.set(settingsKey, toSettingsRecord(normalizeSettingsForSave(ctx, s)))
}

func (r *BadgerRepository) set(key string, value any) error {
	data, err := cbor.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}

	return nil
}

func (r *BadgerRepository) get(key string, value any) error {
	var data []byte

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)

		return err
	})
	if err != nil {
		return err
	}

	if err = cbor.Unmarshal(data, value); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}

	return nil
}
