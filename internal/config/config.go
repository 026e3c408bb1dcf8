// Package config loads the settings of the ostbench benchmark driver.
package config

import (
	"github.com/pkg/errors"
)

// Default values.
const (
	DefaultRepeat = 3
	DefaultSeed   = 1
	DefaultWidth  = WidthCompact
	DefaultCSV    = "-"
)

// Size type widths of the benchmarked tree.
const (
	WidthCompact = "compact"
	WidthWide    = "wide"
)

// DefaultSizes are the element counts every workload runs at.
var DefaultSizes = []int{1000, 10000, 100000}

// Config is the top-level configuration of a benchmark run.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Sizes     []int        `mapstructure:"sizes"`
	Workloads []string     `mapstructure:"workloads"` // empty means all
	Variants  []string     `mapstructure:"variants"`  // empty means all
	Repeat    int          `mapstructure:"repeat"`
	Seed      int64        `mapstructure:"seed"`
	Width     string       `mapstructure:"width"`
	Output    OutputConfig `mapstructure:"output"`
	Debug     bool         `mapstructure:"debug"`
}

// OutputConfig says where results go.
type OutputConfig struct {
	CSV     string `mapstructure:"csv"`     // file path, "-" for stdout
	Metrics string `mapstructure:"metrics"` // prometheus textfile path, empty to skip
}

var (
	// ErrInvalidSize is returned when a size isn't positive.
	ErrInvalidSize = errors.New("size must be positive")
	// ErrInvalidRepeat is returned when repeat isn't positive.
	ErrInvalidRepeat = errors.New("repeat must be positive")
	// ErrInvalidWidth is returned for a width other than compact or wide.
	ErrInvalidWidth = errors.New("width must be compact or wide")
	// ErrNoOutput is returned when results would go nowhere.
	ErrNoOutput = errors.New("no csv or metrics output")
)

// Validate checks the configuration. Workload and variant names are checked by the runner.
func (c *Config) Validate() error {
	for _, n := range c.Sizes {
		if n <= 0 {
			return errors.WithMessagef(ErrInvalidSize, "got %d", n)
		}
	}
	if c.Repeat <= 0 {
		return errors.WithMessagef(ErrInvalidRepeat, "got %d", c.Repeat)
	}
	if c.Width != WidthCompact && c.Width != WidthWide {
		return errors.WithMessagef(ErrInvalidWidth, "got %q", c.Width)
	}
	if c.Output.CSV == "" && c.Output.Metrics == "" {
		return ErrNoOutput
	}
	return nil
}
