package store

import (
	"database/sql"
	"fmt"
)

const settingEDSMAPIKey = "edsm_api_key"

// Setting returns a settings value, empty when unset.
func (s *Store) Setting(key string) (string, error) {
	var value string
	err := s.sql.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting upserts a settings value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.sql.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %q: %w", key, err)
	}
	return nil
}

// SetEDSMKey stores the EDSM API key.
func (s *Store) SetEDSMKey(key string) error {
	return s.SetSetting(settingEDSMAPIKey, key)
}

// EDSMKey is the stored EDSM API key, empty when none was set.
func (s *Store) EDSMKey() (string, error) {
	return s.Setting(settingEDSMAPIKey)
}

// EDSMKeyProvider adapts the settings table to the key lookup the EDSM
// client expects.
type EDSMKeyProvider struct {
	store *Store
}

// KeyProvider returns a provider backed by this store.
func (s *Store) KeyProvider() EDSMKeyProvider {
	return EDSMKeyProvider{store: s}
}

// Key returns the stored API key, empty on any read failure.
func (p EDSMKeyProvider) Key() string {
	key, err := p.store.EDSMKey()
	if err != nil {
		p.store.log.Warn().Err(err).Msg("EDSM key lookup failed")
		return ""
	}
	return key
}

// IsConfigured reports whether a non-empty key is stored.
func (p EDSMKeyProvider) IsConfigured() bool {
	return p.Key() != ""
}
