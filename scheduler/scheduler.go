// Package scheduler implements the runtime that executes simulated processes.
//
// The scheduler owns the logical clock, one mailbox per process and the
// run-state of every process. Each step advances the clock by one tick, picks
// one eligible process at random and resumes it until it suspends. Processes
// never run concurrently, so neither the scheduler nor the processes need
// locks.
package scheduler

import (
	"context"
	"fmt"

	"github.com/relab/synod"
	"github.com/relab/synod/logging"
	"golang.org/x/exp/slices"
)

// State is the run-state of a process.
type State uint8

const (
	// Ready processes will be resumed when picked.
	Ready State = iota
	// Awaiting processes wait for a message or for their deadline.
	Awaiting
	// Finished processes are never resumed again.
	Finished
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Awaiting:
		return "awaiting"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Status describes a process as seen by the scheduler.
type Status struct {
	Role  synod.Role
	State State
	// Deadline is the tick at which an awaiting process times out.
	Deadline synod.Tick
	// FinishedAt is the tick at which the process finished.
	FinishedAt synod.Tick
	// Queued is the number of messages in the mailbox.
	Queued int
}

// Outcome tells why Run returned.
type Outcome uint8

const (
	// Running means Run has not returned yet.
	Running Outcome = iota
	// Converged means that every proposer finished.
	Converged
	// BudgetExhausted means that the tick budget ran out first.
	BudgetExhausted
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case BudgetExhausted:
		return "tick budget exhausted"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

type process struct {
	proc    synod.Process
	role    synod.Role
	state   State
	pending any

	deadline   synod.Tick
	finishedAt synod.Tick

	mailbox mailbox
}

// Scheduler runs processes one at a time on a shared logical clock.
type Scheduler struct {
	logger    logging.Logger
	chooser   Chooser
	observers Observers
	maxTicks  synod.Tick

	clock     synod.Tick
	processes map[synod.ID]*process
	ids       []synod.ID // sorted
	running   int        // number of proposers that have not finished
	outcome   Outcome
}

// New returns a scheduler without processes.
func New(logger logging.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:    logger,
		processes: make(map[synod.ID]*process),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chooser == nil {
		s.chooser = NewRandomChooser(0)
	}
	return s
}

// Spawn adds a process in the Ready state. It will be resumed with a nil input
// the first time it is picked.
func (s *Scheduler) Spawn(id synod.ID, role synod.Role, proc synod.Process) error {
	if _, ok := s.processes[id]; ok {
		return fmt.Errorf("process %d already exists", id)
	}
	s.processes[id] = &process{
		proc:    proc,
		role:    role,
		state:   Ready,
		mailbox: newMailbox(4),
	}
	s.ids = append(s.ids, id)
	slices.Sort(s.ids)
	if role == synod.Proposer {
		s.running++
	}
	return nil
}

// Clock returns the current tick.
func (s *Scheduler) Clock() synod.Tick {
	return s.clock
}

// Outcome returns why the last call to Run returned.
func (s *Scheduler) Outcome() Outcome {
	return s.outcome
}

// Status returns the status of the process with the given id.
func (s *Scheduler) Status(id synod.ID) (Status, bool) {
	p, ok := s.processes[id]
	if !ok {
		return Status{}, false
	}
	return Status{
		Role:       p.role,
		State:      p.state,
		Deadline:   p.deadline,
		FinishedAt: p.finishedAt,
		Queued:     p.mailbox.len(),
	}, true
}

// Done returns true when every proposer has finished.
func (s *Scheduler) Done() bool {
	return s.running == 0
}

// Run steps the scheduler until every proposer has finished or the tick budget
// is exhausted. It returns an error if a process violates the protocol or if
// the context is canceled.
func (s *Scheduler) Run(ctx context.Context) (Outcome, error) {
	s.outcome = Running
	for {
		if s.Done() {
			s.outcome = Converged
			return s.outcome, nil
		}
		if s.maxTicks > 0 && s.clock >= s.maxTicks {
			s.outcome = BudgetExhausted
			return s.outcome, nil
		}
		if err := ctx.Err(); err != nil {
			return s.outcome, err
		}
		if err := s.Step(); err != nil {
			return s.outcome, err
		}
	}
}

// Step advances the clock by one tick and runs one eligible process, if any.
func (s *Scheduler) Step() error {
	s.clock++

	eligible := s.eligible()
	if len(eligible) == 0 {
		return nil
	}

	id := s.chooser.Choose(eligible)
	if !slices.Contains(eligible, id) {
		return fmt.Errorf("chooser picked process %d, which is not eligible", id)
	}
	p := s.processes[id]

	if p.state == Awaiting {
		s.wake(id, p)
	}
	return s.resume(id, p)
}

func (s *Scheduler) eligible() []synod.ID {
	var eligible []synod.ID
	for _, id := range s.ids {
		p := s.processes[id]
		switch p.state {
		case Ready:
			eligible = append(eligible, id)
		case Awaiting:
			if p.mailbox.len() > 0 || s.clock >= p.deadline {
				eligible = append(eligible, id)
			}
		}
	}
	return eligible
}

// wake makes an awaiting process ready, with either the oldest message in its
// mailbox or a timeout as input.
func (s *Scheduler) wake(id synod.ID, p *process) {
	if d, ok := p.mailbox.pop(); ok {
		p.pending = d
		s.observers.OnDeliver(s.clock, id, d)
	} else {
		p.pending = synod.TimedOut{}
		s.observers.OnTimeout(s.clock, id)
	}
	p.state = Ready
}

// resume runs a ready process until it suspends or finishes.
func (s *Scheduler) resume(id synod.ID, p *process) error {
	for {
		in := p.pending
		p.pending = nil

		effect, err := p.proc.Resume(in)
		if err != nil {
			return fmt.Errorf("process %d failed at tick %d: %w", id, s.clock, err)
		}

		switch e := effect.(type) {
		case synod.Send:
			if e.Msg == nil {
				return synod.Violation(id, "sent a nil message to %d", e.To)
			}
			target, ok := s.processes[e.To]
			if !ok {
				return synod.Violation(id, "sent %v to unknown process %d", e.Msg, e.To)
			}
			target.mailbox.push(synod.Delivery{From: id, Msg: e.Msg})
			s.logger.Debugf("%d: %d sending to %d: %v", s.clock, id, e.To, e.Msg)
			s.observers.OnSend(s.clock, id, e.To, e.Msg)

		case synod.ReadClock:
			p.pending = s.clock

		case synod.ReceiveFromAny:
			p.state = Awaiting
			p.deadline = s.clock + e.Timeout
			return nil

		case synod.ConsensusReached:
			p.state = Finished
			p.finishedAt = s.clock
			if p.role == synod.Proposer {
				s.running--
			}
			s.logger.Infof("%d: process %d thinks consensus has been reached for epoch %v with value %q", s.clock, id, e.Epoch, e.Value)
			s.observers.OnFinished(s.clock, id, e.Epoch, e.Value)
			return nil

		default:
			return synod.Violation(id, "could not recognize effect %#v", effect)
		}
	}
}
