// Package config assembles service configuration from defaults, an
// optional JSONC file, and the environment. Precedence, lowest to
// highest: defaults, config file, environment. CLI flags override on top
// of the result in main.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailscale/hujson"
	"github.com/todo-api/service/internal/platform/env"
)

type Config struct {
	Host            string
	Port            int
	Debug           bool
	DatabaseURL     string
	NATSURL         string
	AllowedOrigin   string
	ShutdownTimeout time.Duration
}

// fileConfig is the on-disk shape. Comments and trailing commas are
// allowed; durations are Go duration strings.
type fileConfig struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	Debug           *bool  `json:"debug"`
	DatabaseURL     string `json:"database_url"`
	NATSURL         string `json:"nats_url"`
	AllowedOrigin   string `json:"allowed_origin"`
	ShutdownTimeout string `json:"shutdown_timeout"`
}

func Default() Config {
	return Config{
		Host:            env.DefaultHost,
		Port:            env.DefaultPort,
		DatabaseURL:     env.DefaultDatabaseURL,
		AllowedOrigin:   "*",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the effective configuration. path may be empty; a named
// file that is missing or malformed is an error rather than a silent
// fallback.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		fc, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = merge(cfg, fc)
	}

	cfg.DatabaseURL = env.String("DATABASE_URL", cfg.DatabaseURL)
	cfg.NATSURL = env.String("NATS_URL", cfg.NATSURL)
	cfg.AllowedOrigin = env.String("ALLOWED_ORIGIN", cfg.AllowedOrigin)
	cfg.ShutdownTimeout = env.Duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	return cfg, nil
}

func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}

	// Standardize JSONC to plain JSON before decoding.
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(standardized, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return fc, nil
}

func merge(cfg Config, fc fileConfig) Config {
	if fc.Host != "" {
		cfg.Host = fc.Host
	}
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	if fc.DatabaseURL != "" {
		cfg.DatabaseURL = fc.DatabaseURL
	}
	if fc.NATSURL != "" {
		cfg.NATSURL = fc.NATSURL
	}
	if fc.AllowedOrigin != "" {
		cfg.AllowedOrigin = fc.AllowedOrigin
	}
	if fc.ShutdownTimeout != "" {
		if parsed, err := time.ParseDuration(fc.ShutdownTimeout); err == nil && parsed > 0 {
			cfg.ShutdownTimeout = parsed
		}
	}
	return cfg
}
