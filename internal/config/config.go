// Package config reads the configuration of the synod command from flags,
// environment variables and configuration files.
package config

import (
	"fmt"
	"time"

	"github.com/relab/synod"
	"github.com/relab/synod/metrics"
	"github.com/relab/synod/sim"
	"go.uber.org/multierr"
)

// Config holds the configuration of a simulation or a sweep.
type Config struct {
	// Proposers is the number of proposers.
	Proposers int
	// Acceptors is the number of acceptors.
	Acceptors int
	// Values holds the input value of each proposer (optional).
	// If empty, the proposers get the values a, b, c and so on.
	Values []string
	// ReceiveTimeout is the timeout of every receive, in ticks.
	ReceiveTimeout uint64
	// PhaseBudget is the number of ticks a proposer waits for a quorum in each phase.
	PhaseBudget uint64
	// MaxTicks bounds each run; zero means unbounded.
	MaxTicks uint64
	// Seed is the seed of a single run and the first seed of a sweep.
	Seed int64
	// Progress is the interval between progress log messages; zero disables them.
	Progress time.Duration

	// Seeds is the number of runs in a sweep.
	Seeds int
	// Workers is the number of runs a sweep runs in parallel; zero means GOMAXPROCS.
	Workers int

	// Trace is the file to write the event trace to (optional).
	Trace string
	// TraceFormat is either "proto" or "json".
	TraceFormat string
	// Plot is the image file to plot the epochs to (optional).
	Plot string

	// Output is the directory to write profiles to (optional).
	Output        string
	CPUProfile    bool
	MemProfile    bool
	ExecTrace     bool
	FgprofProfile bool

	LogLevel string
}

// Validate returns every problem with the configuration.
func (c *Config) Validate() (err error) {
	if _, ferr := metrics.ParseFormat(c.TraceFormat); ferr != nil {
		err = multierr.Append(err, ferr)
	}
	if c.Seeds < 1 {
		err = multierr.Append(err, fmt.Errorf("number of seeds must be positive, got %d", c.Seeds))
	}
	if c.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("number of workers cannot be negative, got %d", c.Workers))
	}
	if c.Progress < 0 {
		err = multierr.Append(err, fmt.Errorf("progress interval cannot be negative"))
	}
	if (c.CPUProfile || c.MemProfile || c.ExecTrace || c.FgprofProfile) && c.Output == "" {
		err = multierr.Append(err, fmt.Errorf("profiling requires an output directory"))
	}
	return multierr.Append(err, c.SimConfig().Validate())
}

// SimConfig returns the configuration of a single simulation.
func (c *Config) SimConfig() sim.Config {
	values := make([]synod.Value, 0, c.Proposers)
	for _, v := range c.Values {
		values = append(values, synod.Value(v))
	}
	if len(c.Values) == 0 {
		for i := 0; i < c.Proposers; i++ {
			values = append(values, DefaultValue(i))
		}
	}
	return sim.Config{
		Proposers:      c.Proposers,
		Acceptors:      c.Acceptors,
		Values:         values,
		ReceiveTimeout: synod.Tick(c.ReceiveTimeout),
		PhaseBudget:    synod.Tick(c.PhaseBudget),
		MaxTicks:       synod.Tick(c.MaxTicks),
		Seed:           c.Seed,
	}
}

// SweepSeeds returns the seeds of a sweep: Seeds consecutive seeds starting at Seed.
func (c *Config) SweepSeeds() []int64 {
	seeds := make([]int64, c.Seeds)
	for i := range seeds {
		seeds[i] = c.Seed + int64(i)
	}
	return seeds
}

// DefaultValue returns the input value of proposer i when no values are given.
func DefaultValue(i int) synod.Value {
	if i < 26 {
		return synod.Value(rune('a' + i))
	}
	return synod.Value(fmt.Sprintf("v%d", i))
}
