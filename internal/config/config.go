package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	ListenAddr string `toml:"listen_addr"`
	GatewayURL string `toml:"gateway_url"`
	MirrorPath string `toml:"mirror_path"`
	LogLevel   string `toml:"log_level"`
	DebounceMS int    `toml:"debounce_ms"`
}

const (
	defaultListenAddr = ":8080"
	defaultDebounceMS = 1000
)

// New builds the configuration from an optional TOML file overlaid by
// environment variables. A missing file is not an error; defaults apply.
func New(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr: defaultListenAddr,
		DebounceMS: defaultDebounceMS,
		MirrorPath: defaultMirrorPath(),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnv(cfg)

	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("gateway URL is required (GATEWAYURL or gateway_url)")
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = defaultDebounceMS
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LISTENADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("GATEWAYURL"); v != "" {
		cfg.GatewayURL = v
	}
	if v := os.Getenv("MIRRORPATH"); v != "" {
		cfg.MirrorPath = v
	}
	if v := os.Getenv("LOGLEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DEBOUNCEMS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.DebounceMS = ms
		}
	}
}

func defaultMirrorPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "dashboard-mirror.sqlite"
	}
	return filepath.Join(dir, "dashboard-engine", "mirror.sqlite")
}
