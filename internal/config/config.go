// Package config provides YAML-based configuration loading for snakenet,
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/snakenet/internal/core"
)

// Config contains all snakenet settings.
type Config struct {
	Grid         GridConfig    `yaml:"grid"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Seed         int64         `yaml:"seed"`
	Network      NetworkConfig `yaml:"network"`
	Player       PlayerConfig  `yaml:"player"`
	Log          LogConfig     `yaml:"log"`
	Storage      StorageConfig `yaml:"storage"`
}

// GridConfig defines the board size in cells.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// NetworkConfig defines listener and connection parameters.
type NetworkConfig struct {
	Port          int    `yaml:"port"`
	WSAddr        string `yaml:"ws_addr"`
	SSHAddr       string `yaml:"ssh_addr"`
	HostKey       string `yaml:"host_key"`
	OutboundQueue int    `yaml:"outbound_queue"`
	MaxFrame      int    `yaml:"max_frame"`
}

// PlayerConfig defines the local player identity.
type PlayerConfig struct {
	ID    string `yaml:"id"`
	Color string `yaml:"color"`
}

// LogConfig defines logging level and the rotating log file.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// StorageConfig defines the score database location.
type StorageConfig struct {
	DB string `yaml:"db"`
}

// Minimum board size. The spawn lane needs room around (8,8).
const (
	MinWidth  = 10
	MinHeight = 6
)

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Grid.Width < MinWidth || c.Grid.Height < MinHeight {
		errs = append(errs, fmt.Errorf("grid %dx%d is smaller than %dx%d", c.Grid.Width, c.Grid.Height, MinWidth, MinHeight))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.Network.Port < 1 || c.Network.Port > 65535 {
		errs = append(errs, fmt.Errorf("network.port %d out of range", c.Network.Port))
	}
	if c.Player.Color != "" {
		if _, ok := core.ParseColor(c.Player.Color); !ok {
			errs = append(errs, fmt.Errorf("player.color %q is not one of %s", c.Player.Color, paletteNames()))
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q unknown", c.Log.Level))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Runtime converts the grid and tick settings into engine configuration.
func (c Config) Runtime() core.RuntimeConfig {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return core.RuntimeConfig{
		Width:        c.Grid.Width,
		Height:       c.Grid.Height,
		TickInterval: c.TickInterval,
		Seed:         seed,
	}
}

func paletteNames() string {
	names := make([]string, 0, len(core.Palette))
	for _, c := range core.Palette {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}
