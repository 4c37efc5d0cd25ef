// Package acceptor implements the acceptor side of single-decree Paxos.
package acceptor

import (
	"github.com/relab/synod"
	"github.com/relab/synod/logging"
)

// DefaultReceiveTimeout is the number of ticks an acceptor waits for a message
// before it starts waiting again.
const DefaultReceiveTimeout synod.Tick = 1000

// State is the protocol state of an acceptor. Fields are NoEpoch and the empty
// value until something has been promised or accepted.
type State struct {
	Promised      synod.Epoch
	AcceptedEpoch synod.Epoch
	AcceptedValue synod.Value
}

// Option configures an Acceptor.
type Option func(*Acceptor)

// WithReceiveTimeout sets the timeout used when waiting for messages.
func WithReceiveTimeout(ticks synod.Tick) Option {
	return func(a *Acceptor) {
		a.timeout = ticks
	}
}

// Acceptor answers Prepare and Propose requests. Its state lives as long as
// the simulation and is never shared with other processes.
type Acceptor struct {
	id      synod.ID
	logger  logging.Logger
	timeout synod.Tick

	state State
}

// New returns an acceptor that has neither promised nor accepted anything.
func New(id synod.ID, logger logging.Logger, opts ...Option) *Acceptor {
	a := &Acceptor{
		id:      id,
		logger:  logger,
		timeout: DefaultReceiveTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID returns the id of the acceptor.
func (a *Acceptor) ID() synod.ID {
	return a.id
}

// State returns a copy of the current state.
func (a *Acceptor) State() State {
	return a.state
}

// Resume implements synod.Process. The acceptor waits for a message, answers
// it and waits again; timeouts and messages it does not handle only lead to
// more waiting.
func (a *Acceptor) Resume(in any) (synod.Effect, error) {
	switch in := in.(type) {
	case nil, synod.TimedOut:
		return a.receive(), nil
	case synod.Delivery:
		reply, ok := a.Handle(in.Msg)
		if !ok {
			a.logger.Debugf("acceptor %d: ignoring %v from %d", a.id, in.Msg, in.From)
			return a.receive(), nil
		}
		return synod.Send{To: in.From, Msg: reply}, nil
	default:
		return nil, synod.Violation(a.id, "unexpected input %#v", in)
	}
}

func (a *Acceptor) receive() synod.Effect {
	return synod.ReceiveFromAny{Timeout: a.timeout}
}

// Handle updates the state according to msg and returns the reply.
// It returns false for messages that acceptors do not answer.
func (a *Acceptor) Handle(msg synod.Message) (reply synod.Message, ok bool) {
	switch msg := msg.(type) {
	case synod.Prepare:
		return a.onPrepare(msg), true
	case synod.Propose:
		return a.onPropose(msg), true
	default:
		return nil, false
	}
}

func (a *Acceptor) onPrepare(msg synod.Prepare) synod.Message {
	// Equal epochs are promised again, since a proposer may resend its Prepare.
	if a.state.Promised != synod.NoEpoch && a.state.Promised > msg.Epoch {
		a.logger.Debugf("acceptor %d: rejecting %v, promised %v", a.id, msg, a.state.Promised)
		return synod.NoPromise{Epoch: msg.Epoch}
	}
	a.state.Promised = msg.Epoch
	return synod.Promise{
		Epoch:         msg.Epoch,
		AcceptedEpoch: a.state.AcceptedEpoch,
		AcceptedValue: a.state.AcceptedValue,
	}
}

func (a *Acceptor) onPropose(msg synod.Propose) synod.Message {
	if a.state.Promised != synod.NoEpoch && msg.Epoch < a.state.Promised {
		a.logger.Debugf("acceptor %d: rejecting %v, promised %v", a.id, msg, a.state.Promised)
		return synod.NoAccept{Epoch: msg.Epoch}
	}
	if msg.Epoch > a.state.Promised {
		a.state.Promised = msg.Epoch
	}
	a.state.AcceptedEpoch = msg.Epoch
	a.state.AcceptedValue = msg.Value
	a.logger.Debugf("acceptor %d: accepted %q at %v", a.id, msg.Value, msg.Epoch)
	return synod.Accept{Epoch: msg.Epoch}
}

var _ synod.Process = (*Acceptor)(nil)
