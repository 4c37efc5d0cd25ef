package proposer

import (
	"math/rand"

	"github.com/relab/synod"
)

// Option configures a Proposer.
type Option func(*Proposer)

// WithReceiveTimeout sets the timeout of each wait for a reply.
func WithReceiveTimeout(ticks synod.Tick) Option {
	return func(p *Proposer) {
		p.timeout = ticks
	}
}

// WithPhaseBudget sets the number of ticks a phase may last before the
// attempt is abandoned.
func WithPhaseBudget(ticks synod.Tick) Option {
	return func(p *Proposer) {
		p.budget = ticks
	}
}

// WithRand sets the source used to shuffle the order of requests.
func WithRand(rnd *rand.Rand) Option {
	return func(p *Proposer) {
		p.rnd = rnd
	}
}
