package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSettings_Setters(t *testing.T) {
	s := &Settings{}

	s.SetConfigPath("/etc/newtmn/lab.yaml")
	if s.ConfigPath != "/etc/newtmn/lab.yaml" {
		t.Errorf("SetConfigPath() got %q", s.ConfigPath)
	}

	s.SetConfigPath("lab.yaml")
	if !filepath.IsAbs(s.ConfigPath) {
		t.Errorf("SetConfigPath() should store an absolute path, got %q", s.ConfigPath)
	}

	s.SetAuditLog("/tmp/audit.log")
	if s.AuditLog != "/tmp/audit.log" {
		t.Errorf("SetAuditLog() got %q", s.AuditLog)
	}

	s.SetLastSwitch("s4")
	if s.LastSwitch != "s4" {
		t.Errorf("SetLastSwitch() got %q", s.LastSwitch)
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{
		ConfigPath: "/path",
		AuditLog:   "/log",
		LastSwitch: "s1",
	}

	s.Clear()

	if s.ConfigPath != "" || s.AuditLog != "" || s.LastSwitch != "" {
		t.Error("Clear() should reset all fields to empty")
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	original := &Settings{
		ConfigPath: "/etc/newtmn/lab.yaml",
		AuditLog:   "/var/log/newtmn/audit.log",
		LastSwitch: "s3",
	}
	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("loaded %+v, want %+v", loaded, original)
	}
}

func TestSettings_LoadNonExistent(t *testing.T) {
	s, err := LoadFrom("/nonexistent/path/settings.json")
	if err != nil {
		t.Fatalf("LoadFrom() non-existent should not error: %v", err)
	}
	if s == nil || s.ConfigPath != "" {
		t.Errorf("LoadFrom() non-existent should return empty settings, got %+v", s)
	}
}

func TestSettings_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("invalid json {"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() with invalid JSON should error")
	}
}

func TestSettings_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "nested", "settings.json")

	s := &Settings{ConfigPath: "/lab.yaml"}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() should create directories: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("SaveTo() should have created the file")
	}
}

func TestLoadSave_HomeDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s := &Settings{LastSwitch: "s2"}
	if err := s.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.LastSwitch != "s2" {
		t.Errorf("LastSwitch = %q, want s2", loaded.LastSwitch)
	}
	if filepath.Base(filepath.Dir(DefaultSettingsPath())) != ".newtmn" {
		t.Errorf("DefaultSettingsPath() = %q", DefaultSettingsPath())
	}
}

func TestUpdateAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	if err := UpdateAt(path, func(s *Settings) error {
		s.SetAuditLog("/var/log/newtmn/audit.log")
		return nil
	}); err != nil {
		t.Fatalf("UpdateAt(audit) error: %v", err)
	}
	if err := UpdateAt(path, func(s *Settings) error {
		s.SetLastSwitch("s2")
		return nil
	}); err != nil {
		t.Fatalf("UpdateAt(last switch) error: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if got.AuditLog != "/var/log/newtmn/audit.log" || got.LastSwitch != "s2" {
		t.Errorf("after two updates got %+v, want both fields kept", got)
	}

	boom := errors.New("rejected")
	err = UpdateAt(path, func(s *Settings) error {
		s.SetLastSwitch("s9")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("UpdateAt error = %v, want %v", err, boom)
	}
	got, _ = LoadFrom(path)
	if got.LastSwitch != "s2" {
		t.Errorf("failed update was written: LastSwitch = %q", got.LastSwitch)
	}
}

func TestUpdateAt_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte("{"), 0644)

	called := false
	err := UpdateAt(path, func(*Settings) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Errorf("UpdateAt on a corrupt file: err=%v called=%v", err, called)
	}
}

func TestSaveTo_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	for _, sw := range []string{"s1", "s2"} {
		s := &Settings{LastSwitch: sw}
		if err := s.SaveTo(path); err != nil {
			t.Fatalf("SaveTo(%s) error: %v", sw, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "settings.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory holds %v, want only settings.json", names)
	}
	info, _ := os.Stat(path)
	if info != nil && info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
}
