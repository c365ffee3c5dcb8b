package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents ~/.docchat/config.toml.
type Config struct {
	BackendURL            string `toml:"backend_url"`
	PageSize              int    `toml:"page_size"`
	AskK                  int    `toml:"ask_k"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	LogLevel              string `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BackendURL:            "http://localhost:8000",
		PageSize:              20,
		AskK:                  4,
		RequestTimeoutSeconds: 60,
		LogLevel:              "info",
	}
}

// Load reads config from the given path, filling unset fields with
// defaults. A missing file yields the defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = Default().PageSize
	}
	if cfg.AskK <= 0 {
		cfg.AskK = Default().AskK
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = Default().RequestTimeoutSeconds
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = Default().LogLevel
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// ApplyEnv overlays DOCCHAT_* environment variables, loading a .env file
// from the working directory first when one exists.
func ApplyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("DOCCHAT_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("DOCCHAT_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("DOCCHAT_ASK_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AskK = n
		}
	}
	if v := os.Getenv("DOCCHAT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
