package config

import (
	_ "embed"

	"github.com/vovakirdan/blockfall/internal/netplay"
)

//go:embed defaults/blockfall.yaml
var defaultYAML []byte

// DefaultConfig returns the hardcoded configuration, used when even the
// embedded YAML cannot be parsed.
func DefaultConfig() Config {
	link := netplay.DefaultConfig()
	return Config{
		Game: GameConfig{
			TickRate:          60,
			KeyRepeatDelay:    0.182,
			KeyRepeatInterval: 0.05,
			Preview:           5,
		},
		Net: NetConfig{
			Ports:             link.Ports,
			Token:             link.Token,
			HandshakeAttempts: link.Attempts,
			HandshakeDelay:    link.AttemptDelay,
			HeartbeatInterval: link.HeartbeatInterval,
			Timeout:           link.Timeout,
			PollInterval:      link.PollInterval,
			QueueSize:         link.QueueSize,
			ResendAfter:       link.ResendAfter,
		},
		Log: LogConfig{
			File:       "~/.blockfall/blockfall.log",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Storage: StorageConfig{
			DB: "~/.blockfall/scores.db",
		},
	}
}
