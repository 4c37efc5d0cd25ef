package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/relab/synod/logging"
	"github.com/relab/synod/metrics"
	"github.com/relab/synod/scheduler"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// SweepOption configures Sweep.
type SweepOption func(*sweepOptions)

type sweepOptions struct {
	workers int
	opts    []Option
}

// WithWorkers sets the number of simulations that run in parallel.
// The default is GOMAXPROCS.
func WithWorkers(n int) SweepOption {
	return func(o *sweepOptions) {
		o.workers = n
	}
}

// WithSimOptions passes options to every simulation in the sweep.
// Observers given this way are shared by all simulations.
func WithSimOptions(opts ...Option) SweepOption {
	return func(o *sweepOptions) {
		o.opts = append(o.opts, opts...)
	}
}

// SweepReport summarizes the runs of a sweep.
type SweepReport struct {
	Runs      int
	Converged int
	// Failures maps the seed of every run that failed a check or violated the protocol to the error.
	Failures map[int64]error
	// Ticks holds statistics about the number of ticks of converged runs.
	Ticks metrics.Welford
	// Attempts holds statistics about the number of attempts each proposer made.
	Attempts metrics.Welford
	// MedianTicks and P99Ticks are quantiles of the number of ticks of converged runs.
	MedianTicks float64
	P99Ticks    float64
}

// Unsafe returns the sorted seeds of the runs in which proposers disagreed.
func (r SweepReport) Unsafe() []int64 {
	var seeds []int64
	for seed, err := range r.Failures {
		if errors.Is(err, ErrUnsafe) {
			seeds = append(seeds, seed)
		}
	}
	slices.Sort(seeds)
	return seeds
}

// Err combines the errors of all failed runs, ordered by seed.
func (r SweepReport) Err() (err error) {
	seeds := make([]int64, 0, len(r.Failures))
	for seed := range r.Failures {
		seeds = append(seeds, seed)
	}
	slices.Sort(seeds)
	for _, seed := range seeds {
		err = multierr.Append(err, fmt.Errorf("seed %d: %w", seed, r.Failures[seed]))
	}
	return err
}

func (r SweepReport) String() string {
	return fmt.Sprintf("%d runs, %d converged, %d failed; ticks: %v, median %.0f, p99 %.0f; attempts per proposer: %v",
		r.Runs, r.Converged, len(r.Failures), &r.Ticks, r.MedianTicks, r.P99Ticks, &r.Attempts)
}

type sweepRun struct {
	res Result
	err error
}

// Sweep runs one simulation per seed with the configuration cfg and reports
// on all of them. A run that violates the protocol or fails Check is recorded
// as a failure; Sweep itself only returns an error if cfg is invalid or ctx
// is canceled.
func Sweep(ctx context.Context, cfg Config, seeds []int64, logger logging.Logger, opts ...SweepOption) (SweepReport, error) {
	if err := cfg.Validate(); err != nil {
		return SweepReport{}, fmt.Errorf("invalid configuration: %w", err)
	}
	o := sweepOptions{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}

	runs := make([]sweepRun, len(seeds))
	jobs := make(chan int)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range seeds {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < o.workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				c := cfg
				c.Seed = seeds[i]
				s, err := New(c, logger, o.opts...)
				if err != nil {
					return err
				}
				res, err := s.Run(ctx)
				if ctx.Err() != nil {
					return ctx.Err()
				}
				runs[i] = sweepRun{res: res, err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return SweepReport{}, err
	}
	return summarize(seeds, runs), nil
}

func summarize(seeds []int64, runs []sweepRun) SweepReport {
	report := SweepReport{
		Runs:     len(runs),
		Failures: make(map[int64]error),
	}
	var ticks []float64
	for i, run := range runs {
		err := run.err
		if err == nil {
			err = run.res.Check()
		}
		if err != nil {
			report.Failures[seeds[i]] = err
			continue
		}
		for _, h := range run.res.Histories {
			report.Attempts.Update(float64(len(h)))
		}
		if run.res.Outcome == scheduler.Converged {
			report.Converged++
			report.Ticks.Update(float64(run.res.Ticks))
			ticks = append(ticks, float64(run.res.Ticks))
		}
	}
	if len(ticks) > 0 {
		slices.Sort(ticks)
		report.MedianTicks = stat.Quantile(0.5, stat.Empirical, ticks, nil)
		report.P99Ticks = stat.Quantile(0.99, stat.Empirical, ticks, nil)
	}
	return report
}
