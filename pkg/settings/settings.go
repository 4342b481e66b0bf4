// Package settings manages persistent user settings for the newtmn CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds persistent user preferences
type Settings struct {
	// ConfigPath is the lab file used when -c and NEWTMN_CONFIG are unset
	ConfigPath string `json:"config_path,omitempty"`

	// AuditLog overrides the audit log path from the lab file
	AuditLog string `json:"audit_log,omitempty"`

	// LastSwitch is the switch most recently operated on
	LastSwitch string `json:"last_switch,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "newtmn_settings.json"
	}
	return filepath.Join(home, ".newtmn", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields
// empty settings.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path. The file is replaced by
// rename so a concurrent reader sees either the old or the new settings.
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Update loads the settings at the default location, applies fn and saves
// the result. Nothing is written when fn fails.
func Update(fn func(*Settings) error) error {
	return UpdateAt(DefaultSettingsPath(), fn)
}

// UpdateAt is Update for a specific path.
func UpdateAt(path string, fn func(*Settings) error) error {
	s, err := LoadFrom(path)
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	if err := fn(s); err != nil {
		return err
	}
	return s.SaveTo(path)
}

// SetConfigPath records the default lab file, stored as an absolute path.
func (s *Settings) SetConfigPath(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s.ConfigPath = path
}

// SetAuditLog sets the audit log override
func (s *Settings) SetAuditLog(path string) {
	s.AuditLog = path
}

// SetLastSwitch records the switch most recently operated on.
func (s *Settings) SetLastSwitch(name string) {
	s.LastSwitch = name
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
