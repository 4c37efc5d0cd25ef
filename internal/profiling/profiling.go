// Package profiling starts and stops the Go profilers around a simulation.
package profiling

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/felixge/fgprof"
	"go.uber.org/multierr"
)

// Options selects the profilers to run. Profiles are written to Dir.
type Options struct {
	Dir       string
	CPU       bool
	Mem       bool
	ExecTrace bool
	Fgprof    bool
}

// Enabled returns true if at least one profiler is selected.
func (o Options) Enabled() bool {
	return o.CPU || o.Mem || o.ExecTrace || o.Fgprof
}

func (o Options) path(name string) string {
	return filepath.Join(o.Dir, name)
}

// StartProfilers starts the selected profilers. The returned function stops
// them and writes the memory profile.
func StartProfilers(o Options) (stop func() error, err error) {
	var (
		cpuProfile    *os.File
		traceFile     *os.File
		fgprofProfile *os.File
		fgprofStop    func() error
	)

	// undo what was started if a later profiler fails to start
	defer func() {
		if err == nil {
			return
		}
		if cpuProfile != nil {
			pprof.StopCPUProfile()
			cpuProfile.Close()
		}
		if fgprofProfile != nil {
			_ = fgprofStop()
			fgprofProfile.Close()
		}
	}()

	if o.CPU {
		cpuProfile, err = os.Create(o.path("cpuprofile"))
		if err != nil {
			return nil, err
		}
		if err = pprof.StartCPUProfile(cpuProfile); err != nil {
			return nil, fmt.Errorf("failed to start cpu profile: %w", err)
		}
	}

	if o.Fgprof {
		fgprofProfile, err = os.Create(o.path("fgprofprofile"))
		if err != nil {
			return nil, err
		}
		fgprofStop = fgprof.Start(fgprofProfile, fgprof.FormatPprof)
	}

	if o.ExecTrace {
		traceFile, err = os.Create(o.path("trace"))
		if err != nil {
			return nil, err
		}
		if err = trace.Start(traceFile); err != nil {
			traceFile.Close()
			return nil, fmt.Errorf("failed to start execution trace: %w", err)
		}
	}

	return func() (err error) {
		if o.Mem {
			err = multierr.Append(err, writeHeapProfile(o.path("memprofile")))
		}
		if cpuProfile != nil {
			pprof.StopCPUProfile()
			err = multierr.Append(err, cpuProfile.Close())
		}
		if fgprofProfile != nil {
			err = multierr.Append(err, fgprofStop())
			err = multierr.Append(err, fgprofProfile.Close())
		}
		if traceFile != nil {
			trace.Stop()
			err = multierr.Append(err, traceFile.Close())
		}
		return err
	}, nil
}

func writeHeapProfile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	runtime.GC() // get up-to-date statistics
	return pprof.WriteHeapProfile(f)
}
