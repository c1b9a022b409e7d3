package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "RELAY"

// MaxCapacity bounds the event ring, which is allocated in full at startup.
const MaxCapacity = 1_000_000

type Config struct {
	Addr           string        `mapstructure:"addr"`
	Capacity       int           `mapstructure:"capacity"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
	SessionGrace   time.Duration `mapstructure:"session_grace"`
	DefaultLimit   int           `mapstructure:"default_limit"`
	MaxLimit       int           `mapstructure:"max_limit"`

	DisplayTimeout  time.Duration `mapstructure:"display_timeout"`
	DisplayRate     float64       `mapstructure:"display_rate"`
	DisplayBurst    int           `mapstructure:"display_burst"`
	DevicePushURL   string        `mapstructure:"device_push_url"`
	DevicePushToken string        `mapstructure:"device_push_token"`
	LaunchScheme    string        `mapstructure:"launch_scheme"`
	WebhookSecret   string        `mapstructure:"webhook_secret"`

	ArchiveDriver string `mapstructure:"archive_driver"`
	ArchiveDSN    string `mapstructure:"archive_dsn"`
	MigrationsDir string `mapstructure:"migrations_dir"`

	LogLevel       string   `mapstructure:"log_level"`
	MetricsEnabled bool     `mapstructure:"metrics_enabled"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
}

func defaults() map[string]any {
	return map[string]any{
		"addr":              ":8000",
		"capacity":          1000,
		"session_timeout":   60 * time.Second,
		"session_grace":     10 * time.Minute,
		"default_limit":     100,
		"max_limit":         1000,
		"display_timeout":   5 * time.Second,
		"display_rate":      10.0,
		"display_burst":     5,
		"device_push_url":   "",
		"device_push_token": "",
		"launch_scheme":     "mentra",
		"webhook_secret":    "",
		"archive_driver":    "",
		"archive_dsn":       "",
		"migrations_dir":    "db/migrations",
		"log_level":         "info",
		"metrics_enabled":   true,
		"cors_origins":      []string{"*"},
	}
}

// Load resolves configuration from, lowest to highest precedence: built-in
// defaults, an optional config file, RELAY_* environment variables and
// command-line flags. PORT is honoured when no address is given explicitly.
func Load(args []string) (Config, error) {
	fs := pflag.NewFlagSet("glassrelay", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("addr", "", "listen address")
	fs.Int("capacity", 0, "number of events retained in memory")
	fs.Duration("session-timeout", 0, "inactivity window after which a session reads as expired")
	fs.Int("max-limit", 0, "largest page a poll may request")
	fs.String("device-push-url", "", "glasses platform endpoint receiving display commands")
	fs.String("archive-driver", "", "archive database driver: sqlite or postgres")
	fs.String("archive-dsn", "", "archive database dsn; empty disables the archive")
	fs.String("log-level", "", "trace, debug, info, notice, warn, error or fatal")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", *configFile, err)
		}
	}

	addrSet := v.InConfig("addr") || os.Getenv(EnvPrefix+"_ADDR") != ""
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || !f.Changed {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if key == "addr" {
			addrSet = true
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = errors.Join(bindErr, err)
		}
	})
	if bindErr != nil {
		return Config{}, bindErr
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && !addrSet {
		cfg.Addr = ":" + port
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	case c.Capacity > MaxCapacity:
		return fmt.Errorf("capacity %d exceeds the maximum of %d", c.Capacity, MaxCapacity)
	case c.DefaultLimit <= 0 || c.MaxLimit <= 0:
		return fmt.Errorf("poll limits must be positive, got default=%d max=%d", c.DefaultLimit, c.MaxLimit)
	case c.DefaultLimit > c.MaxLimit:
		return fmt.Errorf("default_limit %d exceeds max_limit %d", c.DefaultLimit, c.MaxLimit)
	case c.SessionTimeout < 0 || c.SessionGrace < 0:
		return errors.New("session durations must not be negative")
	case c.DisplayRate < 0 || c.DisplayBurst < 0:
		return errors.New("display pacing must not be negative")
	case c.DisplayRate > 0 && c.DisplayBurst == 0:
		return errors.New("display_burst must be at least 1 when display_rate is set")
	}
	switch strings.ToLower(c.ArchiveDriver) {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported archive_driver %q", c.ArchiveDriver)
	}
	return nil
}

func (c Config) ArchiveEnabled() bool {
	return strings.TrimSpace(c.ArchiveDSN) != ""
}
