package config

import (
	"strings"
	"testing"
)

func TestConfigRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	manager, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	if manager.Exists() {
		t.Fatal("config file exists before Save")
	}

	// missing file loads as empty config
	cfg, err := manager.Load()
	if err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}
	if *cfg != (Config{}) {
		t.Errorf("Load() on missing file = %+v, want zero value", cfg)
	}

	want := &Config{
		LLMProvider:   "openai",
		Model:         "gpt-4o-mini",
		MaxSteps:      8,
		TracePath:     "runs.jsonl",
		StockfishPath: "/usr/local/bin/stockfish",
		SandboxImage:  "python:3.12-slim",
	}
	if err := manager.Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !manager.Exists() {
		t.Error("Exists() false after Save")
	}

	got, err := manager.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}

	if !strings.HasSuffix(manager.GetConfigPath(), "config.json") {
		t.Errorf("unexpected config path %q", manager.GetConfigPath())
	}
}
