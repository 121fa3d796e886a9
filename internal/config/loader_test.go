package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_WritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}
	if cfg.Addr != Default().Addr || cfg.PlayerLimit != 100 || cfg.Hostname != "$H" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("addr: \":4000\"\nplayer_limit: 12\nic_flood_interval: 2s\nmod_password: filepass\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TSUSERVER_MOD_PASSWORD", "envpass")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":4000" || cfg.PlayerLimit != 12 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.ICFloodInterval != 2*time.Second {
		t.Fatalf("expected 2s flood interval, got %v", cfg.ICFloodInterval)
	}
	if cfg.ModPassword != "envpass" {
		t.Fatalf("expected env to override file, got %q", cfg.ModPassword)
	}
	if cfg.HTTPAddr != Default().HTTPAddr {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
}

func TestUpdateFrom_KeepsZeroValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":9000", IdleTimeout: time.Minute})

	if cfg.Addr != ":9000" || cfg.IdleTimeout != time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.HTTPAddr != Default().HTTPAddr || cfg.PlayerLimit != Default().PlayerLimit {
		t.Fatalf("zero values should not override: %+v", cfg)
	}
}
