package api

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("unexpected default port %d", cfg.Server.Port)
	}
	if cfg.Backend.TimeoutSeconds != 90 {
		t.Errorf("unexpected default timeout %d", cfg.Backend.TimeoutSeconds)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	data := `
server:
  port: 9090
backend:
  base_url: https://llm.internal:8000
  timeout_seconds: 30
cors:
  allowed_origins:
    - https://app.example.com
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port not loaded: %d", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "https://llm.internal:8000" {
		t.Errorf("backend url not loaded: %s", cfg.Backend.BaseURL)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 {
		t.Errorf("origins not loaded: %v", cfg.CORS.AllowedOrigins)
	}
	// File values merge over defaults
	if cfg.MaxBodyBytes != 4<<20 {
		t.Errorf("default max body lost: %d", cfg.MaxBodyBytes)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ATLAS_PORT", "7070")
	t.Setenv("ATLAS_BACKEND_URL", "http://override:9000")
	t.Setenv("ATLAS_AUTH_SECRET", "hush")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("env port not applied: %d", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://override:9000" {
		t.Errorf("env backend url not applied: %s", cfg.Backend.BaseURL)
	}
	if !cfg.Auth.Enabled || cfg.Auth.Secret != "hush" {
		t.Error("auth secret env should enable auth")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 99999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("out-of-range port should fail validation")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/does/not/exist.yaml"); err == nil {
		t.Error("missing file should error")
	}
}
