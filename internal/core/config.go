package core

import "time"

// RuntimeConfig contains the parameters a simulation is created with.
type RuntimeConfig struct {
	Width        int           // Grid width in cells
	Height       int           // Grid height in cells
	TickInterval time.Duration // Wall-clock time between ticks
	Seed         int64         // RNG seed for food placement
}

// DefaultConfig returns a RuntimeConfig with the classic 30x20 board.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Width:        30,
		Height:       20,
		TickInterval: 150 * time.Millisecond,
		Seed:         0, // 0 means use current time in platform layer
	}
}
