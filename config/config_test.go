package config

import (
	"os"
	"path/filepath"
	"testing"

	"murmur/hotkey"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("settings file not created: %v", err)
	}

	cfg := s.Snapshot()
	if cfg.Provider != "openai" {
		t.Errorf("default provider = %q, want openai", cfg.Provider)
	}
	if cfg.ArtifactFormat != "wav" {
		t.Errorf("default artifact format = %q, want wav", cfg.ArtifactFormat)
	}
	if cfg.RetainRecordings {
		t.Error("retain_recordings should default to false")
	}
	if !cfg.HistoryEnabled {
		t.Error("history_enabled should default to true")
	}
}

func TestDefaultTriggers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	trig := s.Snapshot().Triggers()
	want := hotkey.Triggers{Capture: hotkey.KeyF8, Prompt: hotkey.KeyF9, Vision: hotkey.KeyF10}
	if trig != want {
		t.Errorf("triggers = %+v, want %+v", trig, want)
	}
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "provider: claude\nretain_recordings: true\nwhisper_model: whisper-1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := s.Snapshot()
	if cfg.Provider != "claude" {
		t.Errorf("provider = %q, want claude", cfg.Provider)
	}
	if !cfg.RetainRecordings {
		t.Error("retain_recordings should be true")
	}
	if cfg.WhisperModel != "whisper-1" {
		t.Errorf("whisper_model = %q, want whisper-1", cfg.WhisperModel)
	}
	// Unset keys keep their defaults.
	if cfg.WhisperURL == "" {
		t.Error("whisper_url default missing")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	a := s.Snapshot()
	a.Provider = "mutated"
	if s.Snapshot().Provider == "mutated" {
		t.Error("snapshot mutation leaked into the store")
	}
}
