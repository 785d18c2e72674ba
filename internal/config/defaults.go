package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/snakenet.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Grid:         GridConfig{Width: 30, Height: 20},
		TickInterval: 150 * time.Millisecond,
		Network: NetworkConfig{
			Port:          54000,
			SSHAddr:       ":23234",
			HostKey:       ".ssh/snakenet_ed25519",
			OutboundQueue: 64,
			MaxFrame:      1 << 20,
		},
		Log: LogConfig{
			Level:      "info",
			File:       "~/.snakenet/snakenet.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Storage: StorageConfig{DB: "~/.snakenet/scores.db"},
	}
}

// DefaultYAML returns the embedded default config file.
func DefaultYAML() []byte {
	return defaultYAML
}
