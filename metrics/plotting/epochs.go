// Package plotting renders simulation data as images.
package plotting

import (
	"fmt"

	"github.com/relab/synod"
	"github.com/relab/synod/metrics"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// EpochPlot plots the epoch of every attempt each proposer makes against the
// tick at which the attempt started.
type EpochPlot struct {
	series map[synod.ID]xyer
	last   map[synod.ID]synod.Epoch
}

// NewEpochPlot returns an empty epoch plot.
func NewEpochPlot() *EpochPlot {
	return &EpochPlot{
		series: make(map[synod.ID]xyer),
		last:   make(map[synod.ID]synod.Epoch),
	}
}

// Add adds a trace event to the plot. Only Prepare messages are used.
func (p *EpochPlot) Add(ev metrics.Event) {
	if ev.Type != metrics.EventSend || ev.Message != "Prepare" {
		return
	}
	p.add(ev.Process, ev.Tick, ev.Epoch)
}

// AddHistory adds the attempt history of a proposer.
func (p *EpochPlot) AddHistory(id synod.ID, history []metrics.EpochStart) {
	for _, s := range history {
		p.add(id, s.Tick, s.Epoch)
	}
}

func (p *EpochPlot) add(id synod.ID, tick synod.Tick, epoch synod.Epoch) {
	if last, ok := p.last[id]; ok && last == epoch {
		return
	}
	p.last[id] = epoch
	p.series[id] = append(p.series[id], point{x: float64(tick), y: float64(epoch)})
}

// Len returns the number of points in the plot.
func (p *EpochPlot) Len() (n int) {
	for _, s := range p.series {
		n += len(s)
	}
	return n
}

// Save writes the plot to filename. The image format is chosen from the file extension.
func (p *EpochPlot) Save(filename string) error {
	plt := newPlot("Epochs", "Tick", "Epoch")

	ids := maps.Keys(p.series)
	slices.Sort(ids)
	lines := make([]interface{}, 0, 2*len(ids))
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("proposer %d", id), p.series[id])
	}
	if err := plotutil.AddLinePoints(plt, lines...); err != nil {
		return fmt.Errorf("failed to add line plot: %w", err)
	}

	if err := plt.Save(6*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
