package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	API     APIConfig     `toml:"api"`
	Session SessionConfig `toml:"session"`
	Serve   ServeConfig   `toml:"serve"`
	Confirm ConfirmConfig `toml:"confirm"`
	Logging LoggingConfig `toml:"logging"`
}

type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

type SessionConfig struct {
	Path string `toml:"path"`
}

type ServeConfig struct {
	Addr   string `toml:"addr"`
	DBPath string `toml:"db_path"`
}

type ConfirmConfig struct {
	Delete bool `toml:"delete"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func Default(sessionPath, dbPath string) Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:3000",
		},
		Session: SessionConfig{
			Path: sessionPath,
		},
		Serve: ServeConfig{
			Addr:   "localhost:3000",
			DBPath: dbPath,
		},
		Confirm: ConfirmConfig{
			Delete: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	baseURL := strings.TrimSpace(c.API.BaseURL)
	if baseURL == "" {
		return errors.New("api.base_url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must be http or https, got %q", baseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.base_url is missing a host: %q", baseURL)
	}

	if strings.TrimSpace(c.Session.Path) == "" {
		return errors.New("session.path is required")
	}
	if strings.TrimSpace(c.Serve.Addr) == "" {
		return errors.New("serve.addr is required")
	}
	if strings.TrimSpace(c.Serve.DBPath) == "" {
		return errors.New("serve.db_path is required")
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
