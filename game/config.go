package game

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig reports an unplayable board configuration.
var ErrInvalidConfig = errors.New("invalid game config")

// Config describes the board geometry and how many pieces in a line win.
type Config struct {
	Rows          int
	Cols          int
	ConnectLength int
}

// DefaultConfig is the standard 6-row, 7-column, connect-4 game.
func DefaultConfig() Config {
	return Config{Rows: 6, Cols: 7, ConnectLength: 4}
}

func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("%w: board %dx%d must have positive dimensions", ErrInvalidConfig, c.Rows, c.Cols)
	}
	if c.ConnectLength <= 0 {
		return fmt.Errorf("%w: connect length %d must be positive", ErrInvalidConfig, c.ConnectLength)
	}
	if c.ConnectLength > c.Rows || c.ConnectLength > c.Cols {
		return fmt.Errorf("%w: connect length %d exceeds board %dx%d", ErrInvalidConfig, c.ConnectLength, c.Rows, c.Cols)
	}
	return nil
}

// Preset enumerates the built-in board sizes.
type Preset int

const (
	StandardPreset Preset = iota
	SmallPreset
	LargePreset
	HugePreset
)

func (p Preset) Config() Config {
	switch p {
	case SmallPreset:
		return Config{Rows: 4, Cols: 4, ConnectLength: 3}
	case LargePreset:
		return Config{Rows: 8, Cols: 8, ConnectLength: 5}
	case HugePreset:
		return Config{Rows: 10, Cols: 10, ConnectLength: 6}
	default:
		return DefaultConfig()
	}
}
