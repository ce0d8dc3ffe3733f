package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BLOCKFALL_"

// Load loads the configuration, then applies .env and BLOCKFALL_* overrides.
// Search order: customPath -> ~/.blockfall/configs/blockfall.yaml -> ./configs/blockfall.yaml -> embedded default
func Load(customPath string) (Config, error) {
	cfg, err := loadYAML(customPath)
	if err != nil {
		return cfg, err
	}

	// A missing .env is normal; anything else is worth reporting.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config: cannot read .env: %w", err)
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadYAML reads the first available YAML layer over the hardcoded defaults,
// so partial files only override what they name.
func loadYAML(customPath string) (Config, error) {
	cfg := DefaultConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("blockfall.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = DefaultConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/blockfall.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = DefaultConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return DefaultConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// applyEnv overrides selected fields from the environment.
func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvPrefix + "PEER"); v != "" {
		cfg.Net.Peer = v
	}
	if v := getenv(EnvPrefix + "LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := getenv(EnvPrefix + "DB"); v != "" {
		cfg.Storage.DB = v
	}
	if v := getenv(EnvPrefix + "SPECTATE_ADDR"); v != "" {
		cfg.Spectate.Addr = v
	}
	if v := getenv(EnvPrefix + "TICK_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sTICK_RATE: %w", EnvPrefix, err)
		}
		cfg.Game.TickRate = n
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".blockfall", "configs", filename)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
