package plotting

import (
	"fmt"
	"io"

	"github.com/relab/synod/metrics"
)

// Plotter processes trace events.
type Plotter interface {
	Add(metrics.Event)
}

// ReadTrace reads every event of a trace in the given format and adds it to the plotters.
func ReadTrace(src io.Reader, format metrics.Format, plotters ...Plotter) error {
	var (
		events []metrics.Event
		err    error
	)
	switch format {
	case metrics.FormatJSON:
		events, err = metrics.ReadJSONTrace(src)
	case metrics.FormatBinary:
		events, err = metrics.NewTraceReader(src).ReadAll()
	default:
		return fmt.Errorf("unknown trace format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}
	for _, ev := range events {
		for _, p := range plotters {
			p.Add(ev)
		}
	}
	return nil
}
