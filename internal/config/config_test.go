package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	body = strings.ReplaceAll(body, "{{uploads}}", filepath.ToSlash(filepath.Join(dir, "uploads")))
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: local
  local_path: {{uploads}}
`)
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Server.Mode != "debug" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected sqlite default driver, got %q", cfg.Database.Driver)
	}
	if cfg.Assessment.DefaultPassingScore != 70 || cfg.Assessment.MaxUploadSizeMB != 25 {
		t.Fatalf("unexpected assessment defaults: %+v", cfg.Assessment)
	}
	if cfg.RateLimit.Window().Minutes() != 1 {
		t.Fatalf("unexpected rate limit window %v", cfg.RateLimit.Window())
	}
	if cfg.Redis.TTL().Minutes() != 10 {
		t.Fatalf("unexpected redis ttl %v", cfg.Redis.TTL())
	}
	if _, err := os.Stat(cfg.Storage.LocalPath); err != nil {
		t.Fatalf("local storage dir not created: %v", err)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
storage:
  local_path: {{uploads}}
`)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("env should override port, got %q", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("env should override driver, got %q", cfg.Database.Driver)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad mode", "server:\n  mode: prod\n"},
		{"bad driver", "database:\n  driver: oracle\n"},
		{"passing score out of range", "assessment:\n  default_passing_score: 120\n"},
		{"tracing without endpoint", "tracing:\n  enabled: true\n  collector_endpoint: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.body+"storage:\n  local_path: {{uploads}}\n")
			if _, err := LoadConfig(dir); err == nil || !strings.Contains(err.Error(), "invalid config") {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing config.yaml")
	}
}
