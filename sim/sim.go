// Package sim wires proposers, acceptors and the scheduler into a complete
// simulation and checks the outcome.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/relab/synod"
	"github.com/relab/synod/logging"
	"github.com/relab/synod/metrics"
	"github.com/relab/synod/protocol/acceptor"
	"github.com/relab/synod/protocol/proposer"
	"github.com/relab/synod/scheduler"
)

// Option configures a Simulation.
type Option func(*Simulation)

// WithObserver adds an observer to the scheduler in addition to the collector.
func WithObserver(o scheduler.Observer) Option {
	return func(s *Simulation) {
		s.observers = append(s.observers, o)
	}
}

// WithChooser replaces the seeded random chooser.
func WithChooser(c scheduler.Chooser) Option {
	return func(s *Simulation) {
		s.chooser = c
	}
}

// WithProgress logs the progress of the run at most once per interval.
func WithProgress(interval time.Duration) Option {
	return func(s *Simulation) {
		s.progress = interval
	}
}

// Simulation is a single run of the protocol.
type Simulation struct {
	cfg    Config
	logger logging.Logger

	observers []scheduler.Observer
	chooser   scheduler.Chooser
	progress  time.Duration

	sched     *scheduler.Scheduler
	collector *metrics.Collector
	proposers []*proposer.Proposer
	acceptors []*acceptor.Acceptor
}

// New creates the processes described by cfg.
func New(cfg Config, logger logging.Logger, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	s := &Simulation{
		cfg:       cfg,
		logger:    logger,
		collector: metrics.NewCollector(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// every source of randomness is derived from the seed
	rnd := rand.New(rand.NewSource(cfg.Seed))
	if s.chooser == nil {
		s.chooser = scheduler.NewRandomChooser(rnd.Int63())
	}

	schedOpts := []scheduler.Option{
		scheduler.WithChooser(s.chooser),
		scheduler.WithMaxTicks(cfg.MaxTicks),
		scheduler.WithObserver(s.collector),
	}
	for _, o := range s.observers {
		schedOpts = append(schedOpts, scheduler.WithObserver(o))
	}
	if s.progress > 0 {
		schedOpts = append(schedOpts, scheduler.WithObserver(newProgress(logger, s.progress)))
	}
	s.sched = scheduler.New(logger, schedOpts...)

	acceptorIDs := cfg.AcceptorIDs()
	for i, id := range cfg.ProposerIDs() {
		p, err := proposer.New(id, i, cfg.Proposers, acceptorIDs, cfg.Values[i], logger,
			proposer.WithReceiveTimeout(cfg.ReceiveTimeout),
			proposer.WithPhaseBudget(cfg.PhaseBudget),
			proposer.WithRand(rand.New(rand.NewSource(rnd.Int63()))),
		)
		if err != nil {
			return nil, err
		}
		if err := s.sched.Spawn(id, synod.Proposer, p); err != nil {
			return nil, err
		}
		s.proposers = append(s.proposers, p)
	}
	for _, id := range acceptorIDs {
		a := acceptor.New(id, logger, cfg.acceptorOptions()...)
		if err := s.sched.Spawn(id, synod.Acceptor, a); err != nil {
			return nil, err
		}
		s.acceptors = append(s.acceptors, a)
	}
	return s, nil
}

// Run runs the simulation until every proposer has finished or the tick budget
// is exhausted. An error means that a process violated the protocol or that
// ctx was canceled; the result then describes the run up to that point.
func (s *Simulation) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	outcome, err := s.sched.Run(ctx)
	res := s.result(outcome)
	if err != nil {
		return res, err
	}
	s.logger.Debugf("run with seed %d %v after %d ticks (%v)", s.cfg.Seed, outcome, res.Ticks, time.Since(start))
	return res, nil
}

// Collector returns the collector that records the run.
func (s *Simulation) Collector() *metrics.Collector {
	return s.collector
}

// Acceptor returns the state of the acceptor with the given ID.
func (s *Simulation) Acceptor(id synod.ID) (acceptor.State, bool) {
	for _, a := range s.acceptors {
		if a.ID() == id {
			return a.State(), true
		}
	}
	return acceptor.State{}, false
}

func (s *Simulation) result(outcome scheduler.Outcome) Result {
	res := Result{
		Seed:        s.cfg.Seed,
		Ticks:       s.sched.Clock(),
		Outcome:     outcome,
		Acceptors:   s.cfg.Acceptors,
		Beliefs:     s.collector.Beliefs(),
		Acceptances: make(map[synod.Epoch][]synod.ID),
		Histories:   make(map[synod.ID][]synod.Epoch),
		Messages:    s.collector.MessageCounts(),
	}
	for _, e := range s.collector.AcceptedEpochs() {
		res.Acceptances[e] = s.collector.Acceptances(e)
	}
	for _, p := range s.proposers {
		res.Histories[p.ID()] = p.Epochs()
	}
	return res
}
