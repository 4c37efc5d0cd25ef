package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/relab/synod/protocol/proposer"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RegisterSimFlags adds the flags that describe a simulation to fs.
func RegisterSimFlags(fs *pflag.FlagSet) {
	fs.Int("proposers", 3, "number of proposers")
	fs.Int("acceptors", 3, "number of acceptors")
	fs.StringSlice("values", nil, "input value of each proposer (defaults to a, b, c, ...)")
	fs.Uint64("receive-timeout", uint64(proposer.DefaultReceiveTimeout), "timeout of each receive in ticks")
	fs.Uint64("phase-budget", uint64(proposer.DefaultPhaseBudget), "ticks a proposer waits for a quorum in each phase")
	fs.Uint64("max-ticks", 0, "stop each run after this many ticks (0 means no limit)")
	fs.Int64("seed", 1, "random seed (the first seed of a sweep)")
	fs.Duration("progress", 0, "log progress at most once per interval (0 disables progress logs)")
}

// RegisterRunFlags adds the flags of the run command to fs.
func RegisterRunFlags(fs *pflag.FlagSet) {
	fs.String("trace", "", "write every scheduler event to this file")
	fs.String("trace-format", "proto", "format of the trace file (proto or json)")
	fs.String("plot", "", "plot the epochs of each proposer to this image file")
	fs.String("output", "", "the directory to save profiles to (disabled by default)")
	fs.Bool("cpu-profile", false, "enable cpu profiling")
	fs.Bool("mem-profile", false, "enable memory profiling")
	fs.Bool("exec-trace", false, "enable execution tracing")
	fs.Bool("fgprof-profile", false, "enable fgprof")
}

// RegisterSweepFlags adds the flags of the sweep command to fs.
func RegisterSweepFlags(fs *pflag.FlagSet) {
	fs.Int("seeds", 100, "number of runs with consecutive seeds")
	fs.Int("workers", 0, "number of runs to run in parallel (defaults to GOMAXPROCS)")
}

// NewViper reads the configuration from the global viper instance.
func NewViper() (*Config, error) {
	return FromViper(viper.GetViper())
}

// FromViper reads the configuration from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Proposers:      v.GetInt("proposers"),
		Acceptors:      v.GetInt("acceptors"),
		Values:         v.GetStringSlice("values"),
		ReceiveTimeout: v.GetUint64("receive-timeout"),
		PhaseBudget:    v.GetUint64("phase-budget"),
		MaxTicks:       v.GetUint64("max-ticks"),
		Seed:           v.GetInt64("seed"),
		Progress:       v.GetDuration("progress"),
		Seeds:          v.GetInt("seeds"),
		Workers:        v.GetInt("workers"),
		Trace:          v.GetString("trace"),
		TraceFormat:    v.GetString("trace-format"),
		Plot:           v.GetString("plot"),
		Output:         v.GetString("output"),
		CPUProfile:     v.GetBool("cpu-profile"),
		MemProfile:     v.GetBool("mem-profile"),
		ExecTrace:      v.GetBool("exec-trace"),
		FgprofProfile:  v.GetBool("fgprof-profile"),
		LogLevel:       v.GetString("log-level"),
	}

	// the sweep flags are only registered on the sweep command
	if v.Get("seeds") == nil {
		cfg.Seeds = 1
	}

	var err error
	if cfg.Output != "" {
		cfg.Output, err = filepath.Abs(cfg.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		err = os.MkdirAll(cfg.Output, 0o755)
		if err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
