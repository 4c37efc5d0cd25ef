package sim_test

import (
	"context"
	"errors"
	"testing"

	"github.com/relab/synod/logging"
	"github.com/relab/synod/sim"
)

func seedRange(n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = int64(i + 1)
	}
	return seeds
}

func TestSweep(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.MaxTicks = tickLimit
	report, err := sim.Sweep(context.Background(), cfg, seedRange(30), logging.Nop(), sim.WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}
	if report.Runs != 30 || report.Converged != 30 {
		t.Errorf("%d runs, %d converged; want 30, 30", report.Runs, report.Converged)
	}
	if err := report.Err(); err != nil {
		t.Errorf("failed runs: %v", err)
	}
	if len(report.Unsafe()) != 0 {
		t.Errorf("unsafe seeds: %v", report.Unsafe())
	}
	if report.Ticks.Count() != 30 {
		t.Errorf("tick statistics has %d samples; want 30", report.Ticks.Count())
	}
	// every proposer makes at least one attempt
	if min, _ := report.Attempts.Range(); min < 1 {
		t.Errorf("minimum number of attempts = %v", min)
	}
	if report.MedianTicks <= 0 || report.P99Ticks < report.MedianTicks {
		t.Errorf("median %v, p99 %v", report.MedianTicks, report.P99Ticks)
	}
}

func TestSweepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sim.Sweep(ctx, sim.DefaultConfig(), seedRange(10), logging.Nop())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sweep() error = %v; want %v", err, context.Canceled)
	}
}

func TestSweepInvalidConfig(t *testing.T) {
	if _, err := sim.Sweep(context.Background(), sim.Config{}, seedRange(1), logging.Nop()); err == nil {
		t.Error("Sweep() accepted an invalid configuration")
	}
}
