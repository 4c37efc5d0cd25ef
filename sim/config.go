package sim

import (
	"fmt"

	"github.com/relab/synod"
	"github.com/relab/synod/protocol/acceptor"
	"github.com/relab/synod/protocol/proposer"
	"go.uber.org/multierr"
)

// Config describes a simulation.
type Config struct {
	// Proposers is the number of proposers.
	Proposers int
	// Acceptors is the number of acceptors.
	Acceptors int
	// Values holds the input value of each proposer.
	Values []synod.Value
	// ReceiveTimeout is the timeout used by every receive.
	ReceiveTimeout synod.Tick
	// PhaseBudget is the number of ticks a proposer waits for a quorum in each phase.
	PhaseBudget synod.Tick
	// MaxTicks bounds the run. Zero means that the run ends only when every proposer has finished.
	MaxTicks synod.Tick
	// Seed makes the run reproducible.
	Seed int64
}

// DefaultConfig returns the configuration with three proposers with inputs a, b
// and c and three acceptors.
func DefaultConfig() Config {
	return Config{
		Proposers:      3,
		Acceptors:      3,
		Values:         []synod.Value{"a", "b", "c"},
		ReceiveTimeout: proposer.DefaultReceiveTimeout,
		PhaseBudget:    proposer.DefaultPhaseBudget,
		Seed:           1,
	}
}

// Validate returns every problem with the configuration.
func (c Config) Validate() (err error) {
	if c.Proposers < 1 {
		err = multierr.Append(err, fmt.Errorf("need at least one proposer, got %d", c.Proposers))
	}
	if c.Acceptors < 1 {
		err = multierr.Append(err, fmt.Errorf("need at least one acceptor, got %d", c.Acceptors))
	}
	if len(c.Values) != c.Proposers && c.Proposers >= 1 {
		err = multierr.Append(err, fmt.Errorf("got %d input values for %d proposers", len(c.Values), c.Proposers))
	}
	if c.PhaseBudget == 0 {
		err = multierr.Append(err, fmt.Errorf("phase budget must be at least one tick"))
	}
	return err
}

// ProposerIDs returns the IDs of the proposers. Proposers are numbered from zero.
func (c Config) ProposerIDs() []synod.ID {
	return idRange(0, c.Proposers)
}

// AcceptorIDs returns the IDs of the acceptors. They follow the proposers.
func (c Config) AcceptorIDs() []synod.ID {
	return idRange(c.Proposers, c.Acceptors)
}

func idRange(first, n int) []synod.ID {
	ids := make([]synod.ID, n)
	for i := range ids {
		ids[i] = synod.ID(first + i)
	}
	return ids
}

func (c Config) acceptorOptions() []acceptor.Option {
	return []acceptor.Option{acceptor.WithReceiveTimeout(c.ReceiveTimeout)}
}
