// Package passcodestore persists the screen lock configuration in the local
// metadata table.
//
// Every field lives under its own key (see the Key* constants in
// internal/common) as a plain string, so the schema can grow additively
// without versioning. A single Save call is written in one transaction.
package passcodestore

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/screenlock/internal/common"
	"github.com/dmitrijs2005/screenlock/internal/dbx"
	"github.com/dmitrijs2005/screenlock/internal/logging"
	"github.com/dmitrijs2005/screenlock/internal/models"
	"github.com/dmitrijs2005/screenlock/internal/repositories/metadata"
)

// Store loads and saves models.LockConfiguration.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

// New returns a Store over an already migrated database.
func New(db *sql.DB, log logging.Logger) *Store {
	return &Store{db: db, log: log.With("component", "passcodestore")}
}

// Load returns the persisted configuration. On first run every field has its
// default (see models.DefaultLockConfiguration).
//
// Values that cannot be parsed fall back to their defaults. A record that
// violates an invariant (enabled without passcode, biometric without lock)
// is normalised rather than rejected.
func (s *Store) Load(ctx context.Context) (models.LockConfiguration, error) {
	pairs, err := metadata.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return models.LockConfiguration{}, fmt.Errorf("load lock configuration: %w", err)
	}

	cfg := models.DefaultLockConfiguration()
	cfg.Enabled = s.parseBool(ctx, pairs, common.KeyEnabled)
	cfg.Paused = s.parseBool(ctx, pairs, common.KeyPaused)
	cfg.BiometricEnabled = s.parseBool(ctx, pairs, common.KeyBiometricEnabled)
	cfg.HideSensitiveData = s.parseBool(ctx, pairs, common.KeyHideSensitiveData)

	if raw, ok := pairs[common.KeyTimeout]; ok {
		t, err := models.ParseTimeout(string(raw))
		if err != nil {
			s.log.Warn(ctx, "ignoring stored timeout", "error", err)
		} else {
			cfg.Timeout = t
		}
	}

	hash, errHash := decodeBytes(pairs[common.KeyPasscodeHash])
	salt, errSalt := decodeBytes(pairs[common.KeyPasscodeSalt])
	if errHash != nil || errSalt != nil {
		s.log.Warn(ctx, "ignoring malformed passcode credential")
	} else {
		cfg.Passcode = models.Credential{Hash: hash, Salt: salt}
	}

	if cfg.Enabled && !cfg.HasPasscode() {
		s.log.Warn(ctx, "screen lock enabled without a passcode, treating as disabled")
		cfg.Enabled = false
	}
	if cfg.Enabled && cfg.Paused {
		cfg.Paused = false
	}
	if cfg.BiometricEnabled && !cfg.Enabled {
		cfg.BiometricEnabled = false
	}

	return cfg, nil
}

// Save merges patch into the persisted record. Either every key of the patch
// is written or none is. A Reset patch also wipes the keys other components
// keep in the same table, such as the biometric credential.
func (s *Store) Save(ctx context.Context, patch models.ConfigurationPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		set := func(key, value string) error {
			return repo.Set(ctx, key, []byte(value))
		}

		if patch.Reset {
			if err := repo.Clear(ctx); err != nil {
				return err
			}
		}
		if patch.Enabled != nil {
			if err := set(common.KeyEnabled, strconv.FormatBool(*patch.Enabled)); err != nil {
				return err
			}
		}
		if patch.Paused != nil {
			if err := set(common.KeyPaused, strconv.FormatBool(*patch.Paused)); err != nil {
				return err
			}
		}
		if patch.ClearPasscode {
			if err := repo.Delete(ctx, common.KeyPasscodeHash); err != nil {
				return err
			}
			if err := repo.Delete(ctx, common.KeyPasscodeSalt); err != nil {
				return err
			}
		}
		if patch.Passcode != nil {
			if err := set(common.KeyPasscodeHash, encodeBytes(patch.Passcode.Hash)); err != nil {
				return err
			}
			if err := set(common.KeyPasscodeSalt, encodeBytes(patch.Passcode.Salt)); err != nil {
				return err
			}
		}
		if patch.BiometricEnabled != nil {
			if err := set(common.KeyBiometricEnabled, strconv.FormatBool(*patch.BiometricEnabled)); err != nil {
				return err
			}
		}
		if patch.Timeout != nil {
			if !patch.Timeout.Valid() {
				return fmt.Errorf("%w: %q", common.ErrInvalidTimeout, *patch.Timeout)
			}
			if err := set(common.KeyTimeout, string(*patch.Timeout)); err != nil {
				return err
			}
		}
		if patch.HideSensitiveData != nil {
			if err := set(common.KeyHideSensitiveData, strconv.FormatBool(*patch.HideSensitiveData)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save lock configuration: %w", err)
	}
	return nil
}

func (s *Store) parseBool(ctx context.Context, pairs map[string][]byte, key string) bool {
	raw, ok := pairs[key]
	if !ok {
		return false
	}
	v, err := strconv.ParseBool(string(raw))
	if err != nil {
		s.log.Warn(ctx, "ignoring stored flag", "key", key, "error", err)
		return false
	}
	return v
}

func encodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decodeBytes(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(string(raw))
}
