// Package config provides YAML-based configuration loading for blockfall,
// with embedded defaults and environment overrides.
package config

import (
	"errors"
	"fmt"
	"time"

	bfcore "github.com/vovakirdan/blockfall/internal/games/blockfall/core"
	"github.com/vovakirdan/blockfall/internal/netplay"
)

// Config is the full application configuration.
type Config struct {
	Game     GameConfig     `yaml:"game"`
	Net      NetConfig      `yaml:"net"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Spectate SpectateConfig `yaml:"spectate"`
}

// GameConfig holds presentation and input timing. Gameplay rules are fixed.
type GameConfig struct {
	TickRate          int     `yaml:"tick_rate"`
	KeyRepeatDelay    float64 `yaml:"key_repeat_delay"`    // seconds before a held key repeats
	KeyRepeatInterval float64 `yaml:"key_repeat_interval"` // seconds between repeats
	Preview           int     `yaml:"preview"`             // upcoming pieces shown
}

// NetConfig holds the peer link parameters.
type NetConfig struct {
	Peer              string        `yaml:"peer"`
	Ports             []int         `yaml:"ports"`
	Token             string        `yaml:"token"`
	HandshakeAttempts int           `yaml:"handshake_attempts"`
	HandshakeDelay    time.Duration `yaml:"handshake_delay"`
	HeartbeatInterval float64       `yaml:"heartbeat_interval"`
	Timeout           float64       `yaml:"timeout"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	QueueSize         int           `yaml:"queue_size"`
	ResendAfter       time.Duration `yaml:"resend_after"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// StorageConfig locates the score database.
type StorageConfig struct {
	DB string `yaml:"db"`
}

// SpectateConfig enables the spectator feed when Addr is set.
type SpectateConfig struct {
	Addr string `yaml:"addr"`
}

// Session converts the net section into link parameters.
func (n NetConfig) Session() netplay.Config {
	return netplay.Config{
		Ports:             append([]int(nil), n.Ports...),
		Token:             n.Token,
		Attempts:          n.HandshakeAttempts,
		AttemptDelay:      n.HandshakeDelay,
		HeartbeatInterval: n.HeartbeatInterval,
		Timeout:           n.Timeout,
		PollInterval:      n.PollInterval,
		QueueSize:         n.QueueSize,
		ResendAfter:       n.ResendAfter,
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Game.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("game.tick_rate must be positive, got %d", c.Game.TickRate))
	}
	if c.Game.KeyRepeatDelay < 0 || c.Game.KeyRepeatInterval <= 0 {
		errs = append(errs, errors.New("game key repeat timings must be positive"))
	}
	if c.Game.Preview < 0 || c.Game.Preview > bfcore.MaxPreview {
		errs = append(errs, fmt.Errorf("game.preview must be between 0 and %d, got %d", bfcore.MaxPreview, c.Game.Preview))
	}
	if len(c.Net.Ports) < 1 {
		errs = append(errs, errors.New("net.ports needs at least one port"))
	}
	for _, p := range c.Net.Ports {
		if p <= 0 || p > 65535 {
			errs = append(errs, fmt.Errorf("net.ports: %d out of range", p))
		}
	}
	if c.Net.HandshakeAttempts <= 0 {
		errs = append(errs, errors.New("net.handshake_attempts must be positive"))
	}
	if c.Net.HeartbeatInterval <= 0 {
		errs = append(errs, errors.New("net.heartbeat_interval must be positive"))
	}
	if c.Net.Timeout <= c.Net.HeartbeatInterval {
		errs = append(errs, fmt.Errorf("net.timeout (%v) must exceed heartbeat_interval (%v)", c.Net.Timeout, c.Net.HeartbeatInterval))
	}
	if c.Net.QueueSize <= 0 {
		errs = append(errs, errors.New("net.queue_size must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}
