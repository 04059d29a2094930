package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the loader reads,
// e.g. HIDOUKI_ADDR or HIDOUKI_LOG_LEVEL
const EnvPrefix = "HIDOUKI"

// Config holds all application configuration.
// The server core never reads it; app translates it into engine options.
type Config struct {
	Addr      string `mapstructure:"addr"`
	Env       string `mapstructure:"env"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Workers   int    `mapstructure:"workers"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Addr:      ":8080",
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "text",
		Workers:   0,
	}
}

// Load builds a Config from defaults, the optional file at path and
// HIDOUKI_* environment variables, in increasing order of precedence.
// The file format follows its extension (yaml, toml, json, ...).
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("addr", def.Addr)
	v.SetDefault("env", def.Env)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("workers", def.Workers)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "addr", Message: "must not be empty"}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "workers", Message: "must not be negative"}
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return &ConfigError{Field: "log_format", Message: fmt.Sprintf("unknown format %q", c.LogFormat)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// LevelFromString converts a string to a slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
// Returns slog.LevelInfo for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
