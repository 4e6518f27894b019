// Package config loads Cortex client configuration from an optional TOML
// file plus environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/emotiv/cortexgo/pkg/cortexerr"
)

const (
	DefaultCortexURL          = "wss://localhost:6868"
	DefaultRequestTimeout     = 30 * time.Second
	DefaultReconnectBase      = 500 * time.Millisecond
	DefaultReconnectMax       = 30 * time.Second
	DefaultReconnectFactor    = 2.0
	DefaultReconnectJitter    = 0.2
	DefaultHealthInterval     = 30 * time.Second
	DefaultHealthMaxFailures  = 3
	DefaultHealthCheckEnabled = true
)

// ReconnectPolicy configures the resilient client's exponential backoff.
type ReconnectPolicy struct {
	Base        time.Duration
	Max         time.Duration
	Factor      float64
	Jitter      float64
	MaxAttempts int // 0 means unbounded
}

// HealthPolicy configures the resilient client's background connection
// health monitor: a periodic getCortexInfo heartbeat that forces a
// reconnect once too many consecutive checks fail, catching a connection
// that has gone stale without ever surfacing a hard transport error.
type HealthPolicy struct {
	Enabled                bool
	Interval               time.Duration
	MaxConsecutiveFailures int
}

// Config is the fully resolved, validated Cortex client configuration.
type Config struct {
	ClientID         string
	ClientSecret     string
	License          string
	CortexURL        string
	RequestTimeout   time.Duration
	AllowInsecureTLS bool
	Reconnect        ReconnectPolicy
	Health           HealthPolicy
}

// fileConfig is the TOML-shaped configuration, every field optional so a
// partial file layers cleanly over defaults.
type fileConfig struct {
	ClientID           string  `toml:"client_id"`
	ClientSecret       string  `toml:"client_secret"`
	License            string  `toml:"license"`
	CortexURL          string  `toml:"cortex_url"`
	RequestTimeoutSecs int     `toml:"request_timeout_secs"`
	AllowInsecureTLS   bool    `toml:"allow_insecure_tls"`
	Reconnect          struct {
		BaseDelayMs  int     `toml:"base_delay_ms"`
		MaxDelaySecs int     `toml:"max_delay_secs"`
		Factor       float64 `toml:"factor"`
		Jitter       float64 `toml:"jitter"`
		MaxAttempts  int     `toml:"max_attempts"`
	} `toml:"reconnect"`
	Health struct {
		Enabled                *bool `toml:"enabled"`
		IntervalSecs           int   `toml:"interval_secs"`
		MaxConsecutiveFailures int   `toml:"max_consecutive_failures"`
	} `toml:"health"`
}

// Default returns a Config with every field set to its documented default.
func Default() *Config {
	return &Config{
		CortexURL:      DefaultCortexURL,
		RequestTimeout: DefaultRequestTimeout,
		Reconnect: ReconnectPolicy{
			Base:   DefaultReconnectBase,
			Max:    DefaultReconnectMax,
			Factor: DefaultReconnectFactor,
			Jitter: DefaultReconnectJitter,
		},
		Health: HealthPolicy{
			Enabled:                DefaultHealthCheckEnabled,
			Interval:               DefaultHealthInterval,
			MaxConsecutiveFailures: DefaultHealthMaxFailures,
		},
	}
}

// Load resolves configuration from, in priority order: an explicit path (if
// non-empty), ./cortex.toml, then $XDG_CONFIG_HOME/emotiv-cortex/cortex.toml
// (falling back to ~/.config/emotiv-cortex/cortex.toml). Every field can be
// overridden by EMOTIV_CLIENT_ID, EMOTIV_CLIENT_SECRET, EMOTIV_LICENSE, and
// EMOTIV_CORTEX_URL environment variables. A missing ./cortex.toml or XDG
// file is not an error; Load fails when an explicit path does not exist, on
// a malformed file, or on a final validation error.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if resolved != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(resolved, &fc); err != nil {
			return nil, cortexerr.Wrap(cortexerr.KindConfig, err, "parse config file %s", resolved)
		}
		applyFile(cfg, &fc)
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolvePath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", cortexerr.Wrap(cortexerr.KindConfig, err, "config file %s", explicit)
		}
		return explicit, nil
	}

	if _, err := os.Stat("cortex.toml"); err == nil {
		return "cortex.toml", nil
	}

	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(home, ".config")
		}
	}
	if dir != "" {
		candidate := filepath.Join(dir, "emotiv-cortex", "cortex.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", nil
}

func applyFile(cfg *Config, fc *fileConfig) {
	if fc.ClientID != "" {
		cfg.ClientID = fc.ClientID
	}
	if fc.ClientSecret != "" {
		cfg.ClientSecret = fc.ClientSecret
	}
	if fc.License != "" {
		cfg.License = fc.License
	}
	if fc.CortexURL != "" {
		cfg.CortexURL = fc.CortexURL
	}
	if fc.RequestTimeoutSecs > 0 {
		cfg.RequestTimeout = time.Duration(fc.RequestTimeoutSecs) * time.Second
	}
	cfg.AllowInsecureTLS = fc.AllowInsecureTLS

	if fc.Reconnect.BaseDelayMs > 0 {
		cfg.Reconnect.Base = time.Duration(fc.Reconnect.BaseDelayMs) * time.Millisecond
	}
	if fc.Reconnect.MaxDelaySecs > 0 {
		cfg.Reconnect.Max = time.Duration(fc.Reconnect.MaxDelaySecs) * time.Second
	}
	if fc.Reconnect.Factor > 0 {
		cfg.Reconnect.Factor = fc.Reconnect.Factor
	}
	if fc.Reconnect.Jitter > 0 {
		cfg.Reconnect.Jitter = fc.Reconnect.Jitter
	}
	if fc.Reconnect.MaxAttempts > 0 {
		cfg.Reconnect.MaxAttempts = fc.Reconnect.MaxAttempts
	}

	if fc.Health.Enabled != nil {
		cfg.Health.Enabled = *fc.Health.Enabled
	}
	if fc.Health.IntervalSecs > 0 {
		cfg.Health.Interval = time.Duration(fc.Health.IntervalSecs) * time.Second
	}
	if fc.Health.MaxConsecutiveFailures > 0 {
		cfg.Health.MaxConsecutiveFailures = fc.Health.MaxConsecutiveFailures
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("EMOTIV_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("EMOTIV_CLIENT_SECRET"); v != "" {
		cfg.ClientSecret = v
	}
	if v := os.Getenv("EMOTIV_LICENSE"); v != "" {
		cfg.License = v
	}
	if v := os.Getenv("EMOTIV_CORTEX_URL"); v != "" {
		cfg.CortexURL = v
	}
}

func validate(cfg *Config) error {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return cortexerr.New(cortexerr.KindConfig, "client_id and client_secret are required")
	}
	if !strings.HasPrefix(cfg.CortexURL, "wss://") && !strings.HasPrefix(cfg.CortexURL, "ws://") {
		return cortexerr.New(cortexerr.KindConfig, "cortex_url must be a ws(s):// endpoint, got %q", cfg.CortexURL)
	}
	if cfg.RequestTimeout <= 0 {
		return cortexerr.New(cortexerr.KindConfig, "request_timeout must be > 0")
	}
	return nil
}

// String masks the client secret for safe logging.
func (c *Config) String() string {
	return fmt.Sprintf("Config{ClientID:%s, CortexURL:%s, RequestTimeout:%s}", c.ClientID, c.CortexURL, c.RequestTimeout)
}
