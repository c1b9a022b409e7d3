package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Addr != ":8000" || cfg.Capacity != 1000 || cfg.SessionTimeout != time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DefaultLimit != 100 || cfg.MaxLimit != 1000 || cfg.DisplayTimeout != 5*time.Second {
		t.Fatalf("unexpected limits: %+v", cfg)
	}
	if cfg.ArchiveEnabled() {
		t.Fatalf("archive should be disabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RELAY_CAPACITY", "50")
	t.Setenv("RELAY_SESSION_TIMEOUT", "30s")
	t.Setenv("RELAY_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RELAY_ARCHIVE_DSN", "file:relay.db")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Capacity != 50 || cfg.SessionTimeout != 30*time.Second {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins mismatch: %v", cfg.CORSOrigins)
	}
	if !cfg.ArchiveEnabled() {
		t.Fatalf("archive should be enabled")
	}
}

func TestLoad_FlagsBeatEnv(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RELAY_CAPACITY", "50")
	cfg, err := Load([]string{"--capacity", "7", "--log-level", "debug"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Capacity != 7 || cfg.LogLevel != "debug" {
		t.Fatalf("flags not applied: capacity=%d log=%s", cfg.Capacity, cfg.LogLevel)
	}
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr=%q want %q", cfg.Addr, ":9090")
	}

	cfg, err = Load([]string{"--addr", "127.0.0.1:7000"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Addr != "127.0.0.1:7000" {
		t.Fatalf("explicit addr should win over PORT, got %q", cfg.Addr)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte("capacity: 25\nmax_limit: 200\ndisplay_rate: 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Capacity != 25 || cfg.MaxLimit != 200 || cfg.DisplayRate != 2 {
		t.Fatalf("config file not applied: %+v", cfg)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "")
	base, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	cases := map[string]func(*Config){
		"capacity":     func(c *Config) { c.Capacity = 0 },
		"capacity cap": func(c *Config) { c.Capacity = MaxCapacity + 1 },
		"limits":       func(c *Config) { c.DefaultLimit = 2000 },
		"driver":       func(c *Config) { c.ArchiveDriver = "mysql" },
		"burst":        func(c *Config) { c.DisplayRate = 1; c.DisplayBurst = 0 },
		"session time": func(c *Config) { c.SessionTimeout = -time.Second },
	}
	for name, mutate := range cases {
		cfg := base
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoad_RejectsOversizedCapacityFromEnv(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RELAY_CAPACITY", "1000000000")
	if _, err := Load(nil); err == nil {
		t.Fatalf("expected error for capacity above %d", MaxCapacity)
	}

	t.Setenv("RELAY_CAPACITY", "1000000")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error at the ceiling: %v", err)
	}
	if cfg.Capacity != MaxCapacity {
		t.Fatalf("capacity got=%d want=%d", cfg.Capacity, MaxCapacity)
	}
}
