// Package config handles loading, defaulting, and validation of the tickscope
// TOML configuration file. The same file serves the tick server and the
// viewer; each binary reads the sections it needs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"

	"github.com/large-farva/tickscope/internal/codec"
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Logging LoggingConfig `toml:"logging" json:"logging"`
	Server  ServerConfig  `toml:"server"  json:"server"`
	Viewer  ViewerConfig  `toml:"viewer"  json:"viewer"`
}

type LoggingConfig struct {
	// File receives viewer logs. The TUI owns the terminal, so an empty
	// value discards them.
	File string `toml:"file" json:"file"`
}

// ServerConfig holds tickscoped settings. IntervalMs and Series are the
// per-connection starting values before a viewer sends any command.
type ServerConfig struct {
	Bind       string `toml:"bind"        json:"bind"`
	IntervalMs int    `toml:"interval_ms" json:"interval_ms"`
	Series     string `toml:"series"      json:"series"`
}

// ViewerConfig holds the stream settings of the tickscope viewer.
type ViewerConfig struct {
	Host              string `toml:"host"                json:"host"`
	Series            string `toml:"series"              json:"series"`
	IntervalMs        int    `toml:"interval_ms"         json:"interval_ms"`
	WindowSize        int    `toml:"window_size"         json:"window_size"`
	RetryDelayMs      int    `toml:"retry_delay_ms"      json:"retry_delay_ms"`
	HeartbeatMs       int    `toml:"heartbeat_ms"        json:"heartbeat_ms"`
	PongTimeoutMs     int    `toml:"pong_timeout_ms"     json:"pong_timeout_ms"`
	HandshakeTimeoutS int    `toml:"handshake_timeout_s" json:"handshake_timeout_s"`
}

func (v ViewerConfig) RetryDelay() time.Duration {
	return time.Duration(v.RetryDelayMs) * time.Millisecond
}

func (v ViewerConfig) HeartbeatInterval() time.Duration {
	return time.Duration(v.HeartbeatMs) * time.Millisecond
}

// PongTimeout is zero when pong checking is disabled.
func (v ViewerConfig) PongTimeout() time.Duration {
	return time.Duration(v.PongTimeoutMs) * time.Millisecond
}

func (v ViewerConfig) HandshakeTimeout() time.Duration {
	return time.Duration(v.HandshakeTimeoutS) * time.Second
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind:       "0.0.0.0:8080",
			IntervalMs: codec.DefaultIntervalMs,
			Series:     codec.DefaultSeries,
		},
		Viewer: ViewerConfig{
			Host:              "http://127.0.0.1:8080",
			Series:            codec.DefaultSeries,
			IntervalMs:        codec.DefaultIntervalMs,
			WindowSize:        200,
			RetryDelayMs:      1000,
			HeartbeatMs:       10000,
			PongTimeoutMs:     0,
			HandshakeTimeoutS: 10,
		},
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.Server.Series = strings.TrimSpace(cfg.Server.Series)
	cfg.Viewer.Series = strings.TrimSpace(cfg.Viewer.Series)

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadOptional behaves like Load but returns the defaults when path is empty.
func LoadOptional(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func validate(cfg Config) error {
	if cfg.Server.Bind == "" {
		return errors.New("server.bind must not be empty")
	}
	if !intervalOK(cfg.Server.IntervalMs) {
		return fmt.Errorf("server.interval_ms must be between %d and %d", codec.MinIntervalMs, codec.MaxIntervalMs)
	}
	if !seriesOK(cfg.Server.Series) {
		return fmt.Errorf("server.series must be 1 to %d characters", codec.MaxSeriesNameLen)
	}
	if cfg.Viewer.Host == "" {
		return errors.New("viewer.host must not be empty")
	}
	if !intervalOK(cfg.Viewer.IntervalMs) {
		return fmt.Errorf("viewer.interval_ms must be between %d and %d", codec.MinIntervalMs, codec.MaxIntervalMs)
	}
	if !seriesOK(cfg.Viewer.Series) {
		return fmt.Errorf("viewer.series must be 1 to %d characters", codec.MaxSeriesNameLen)
	}
	if cfg.Viewer.WindowSize < 1 {
		return errors.New("viewer.window_size must be >= 1")
	}
	if cfg.Viewer.RetryDelayMs < 1 {
		return errors.New("viewer.retry_delay_ms must be >= 1")
	}
	if cfg.Viewer.HeartbeatMs < 1 {
		return errors.New("viewer.heartbeat_ms must be >= 1")
	}
	if cfg.Viewer.PongTimeoutMs < 0 {
		return errors.New("viewer.pong_timeout_ms must be >= 0")
	}
	if cfg.Viewer.HandshakeTimeoutS < 1 {
		return errors.New("viewer.handshake_timeout_s must be >= 1")
	}
	return nil
}

func intervalOK(ms int) bool {
	return ms >= codec.MinIntervalMs && ms <= codec.MaxIntervalMs
}

func seriesOK(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= 1 && n <= codec.MaxSeriesNameLen
}
