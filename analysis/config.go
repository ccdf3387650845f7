package analysis

import (
	"fmt"
	"runtime"

	"github.com/misinfo-watch/cascadia/propgraph"
)

// Window selects the temporal aggregation granularity.
type Window string

const (
	WindowHourly Window = "hourly"
	WindowDaily  Window = "daily"
)

// ParseWindow validates a window name at the boundary, so a typo fails
// loudly instead of silently defaulting.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowHourly, WindowDaily:
		return Window(s), nil
	default:
		return "", fmt.Errorf("unknown aggregation window %q (want hourly or daily)", s)
	}
}

// Layout names the graph layout algorithm a downstream visualizer
// should use. The engine only validates and passes it through.
type Layout string

const (
	LayoutSpring      Layout = "spring"
	LayoutCircular    Layout = "circular"
	LayoutKamadaKawai Layout = "kamada_kawai"
)

func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutSpring, LayoutCircular, LayoutKamadaKawai:
		return Layout(s), nil
	default:
		return "", fmt.Errorf("unknown layout %q (want spring, circular, or kamada_kawai)", s)
	}
}

// Config holds the validated knobs for one analysis run.
type Config struct {
	Window  Window
	Layout  Layout
	Damping float64
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Window:  WindowHourly,
		Layout:  LayoutSpring,
		Damping: propgraph.DefaultDamping,
		Workers: runtime.NumCPU(),
	}
}

// Validate fills zero values with defaults and rejects out-of-range
// settings.
func (c *Config) Validate() error {
	if c.Window == "" {
		c.Window = WindowHourly
	} else if _, err := ParseWindow(string(c.Window)); err != nil {
		return err
	}
	if c.Layout == "" {
		c.Layout = LayoutSpring
	} else if _, err := ParseLayout(string(c.Layout)); err != nil {
		return err
	}
	if c.Damping == 0 {
		c.Damping = propgraph.DefaultDamping
	} else if c.Damping <= 0 || c.Damping >= 1 {
		return fmt.Errorf("damping factor must be in (0, 1), got %v", c.Damping)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}
