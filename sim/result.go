package sim

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/relab/synod"
	"github.com/relab/synod/metrics"
	"github.com/relab/synod/scheduler"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	// ErrUnsafe is returned by Check when two proposers believe different values were chosen.
	ErrUnsafe = errors.New("proposers disagree on the chosen value")
	// ErrNoQuorum is returned by Check when a proposer believes in an epoch
	// that was not accepted by a quorum of acceptors.
	ErrNoQuorum = errors.New("consensus reached without a quorum of acceptors")
)

// Result is the observable outcome of a run.
type Result struct {
	Seed      int64
	Ticks     synod.Tick
	Outcome   scheduler.Outcome
	Acceptors int
	// Beliefs holds what each finished proposer believes was chosen.
	Beliefs map[synod.ID]metrics.Belief
	// Acceptances holds the acceptors that sent Accept for each epoch.
	Acceptances map[synod.Epoch][]synod.ID
	// Histories holds the epochs each proposer tried, in order.
	Histories map[synod.ID][]synod.Epoch
	// Messages counts the sent messages per kind.
	Messages map[string]int
}

// Finished returns the sorted IDs of the proposers that finished.
func (r Result) Finished() []synod.ID {
	ids := maps.Keys(r.Beliefs)
	slices.Sort(ids)
	return ids
}

// Check verifies that every finished proposer believes in the same value and
// that every believed epoch was accepted by a quorum.
func (r Result) Check() (err error) {
	ids := r.Finished()
	for i, id := range ids {
		b := r.Beliefs[id]
		if accepted := len(r.Acceptances[b.Epoch]); !synod.IsQuorum(accepted, r.Acceptors) {
			err = multierr.Append(err, fmt.Errorf("%w: proposer %d believes in %v, accepted by %d of %d",
				ErrNoQuorum, id, b.Epoch, accepted, r.Acceptors))
		}
		if i == 0 {
			continue
		}
		if first := r.Beliefs[ids[0]]; b.Value != first.Value {
			err = multierr.Append(err, fmt.Errorf("%w: proposer %d believes %q (%v) while proposer %d believes %q (%v)",
				ErrUnsafe, ids[0], first.Value, first.Epoch, id, b.Value, b.Epoch))
		}
	}
	return err
}

// Chosen returns the value that the finished proposers agree on.
// It returns false if no proposer finished or if they disagree.
func (r Result) Chosen() (synod.Value, bool) {
	ids := r.Finished()
	if len(ids) == 0 {
		return "", false
	}
	v := r.Beliefs[ids[0]].Value
	for _, id := range ids[1:] {
		if r.Beliefs[id].Value != v {
			return "", false
		}
	}
	return v, true
}

// Report writes a human readable summary of the run.
func (r Result) Report(w io.Writer) error {
	var b strings.Builder
	switch r.Outcome {
	case scheduler.Converged:
		fmt.Fprintf(&b, "All proposers think consensus has been reached (seed %d, %d ticks)\n", r.Seed, r.Ticks)
	default:
		fmt.Fprintf(&b, "Run stopped after %d ticks (%v); %d of %d proposers finished (seed %d)\n",
			r.Ticks, r.Outcome, len(r.Beliefs), len(r.Histories), r.Seed)
	}
	for _, id := range r.Finished() {
		belief := r.Beliefs[id]
		fmt.Fprintf(&b, "proposer %d believes consensus has been reached for epoch %v with value %q at tick %d after %d attempts\n",
			id, belief.Epoch, belief.Value, belief.Tick, len(r.Histories[id]))
		fmt.Fprintf(&b, "  acceptors: %v\n", r.Acceptances[belief.Epoch])
	}
	kinds := maps.Keys(r.Messages)
	slices.Sort(kinds)
	counts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		counts = append(counts, fmt.Sprintf("%s=%d", k, r.Messages[k]))
	}
	fmt.Fprintf(&b, "messages: %s\n", strings.Join(counts, " "))

	_, err := io.WriteString(w, b.String())
	return err
}
