// Package proposer implements the proposer side of single-decree Paxos.
//
// A proposer runs attempts until it has collected a quorum of Accept replies.
// Each attempt uses a new, higher epoch and consists of a prepare phase and a
// propose phase. An attempt is abandoned when a phase runs out of time or when
// an acceptor rejects the current epoch.
package proposer

import (
	"fmt"
	"math/rand"

	"github.com/relab/synod"
	"github.com/relab/synod/logging"
)

const (
	// DefaultReceiveTimeout is the default timeout of each wait for a reply.
	DefaultReceiveTimeout synod.Tick = 1000
	// DefaultPhaseBudget is the default number of ticks a phase may last.
	DefaultPhaseBudget synod.Tick = 100
)

type phase uint8

const (
	preparing phase = iota
	proposing
)

func (p phase) String() string {
	if p == preparing {
		return "prepare"
	}
	return "propose"
}

// step is what the proposer is waiting for.
type step uint8

const (
	stepStart    step = iota // first resume
	stepSend                 // a send went through
	stepDeadline             // the clock, to set the phase deadline
	stepReceive              // a reply or a timeout
	stepCheck                // the clock, to check the phase deadline
	stepDone                 // nothing; consensus was reached
)

type outcome uint8

const (
	waiting outcome = iota
	abandon
	quorum
)

// Proposer tries to get its input value, or a value adopted from the
// acceptors, chosen.
type Proposer struct {
	id           synod.ID
	index        int
	numProposers int
	acceptors    []synod.ID
	members      map[synod.ID]struct{}
	input        synod.Value
	logger       logging.Logger

	timeout synod.Tick
	budget  synod.Tick
	rnd     *rand.Rand

	step     step
	outbox   []synod.Send
	deadline synod.Tick

	counter uint64
	epoch   synod.Epoch
	phase   phase
	votes   map[synod.ID]struct{}

	adoptedEpoch synod.Epoch
	adoptedValue synod.Value
	value        synod.Value

	history []synod.Epoch
}

// New returns a proposer at position index among numProposers proposers.
// The acceptors slice lists every acceptor of the consensus instance.
func New(
	id synod.ID,
	index, numProposers int,
	acceptors []synod.ID,
	input synod.Value,
	logger logging.Logger,
	opts ...Option,
) (*Proposer, error) {
	if numProposers < 1 || index < 0 || index >= numProposers {
		return nil, fmt.Errorf("proposer index %d out of range [0, %d)", index, numProposers)
	}
	members := make(map[synod.ID]struct{}, len(acceptors))
	unique := make([]synod.ID, 0, len(acceptors))
	for _, a := range acceptors {
		if _, ok := members[a]; ok {
			continue
		}
		members[a] = struct{}{}
		unique = append(unique, a)
	}
	if len(unique) == 0 {
		return nil, fmt.Errorf("proposer %d has no acceptors", id)
	}
	p := &Proposer{
		id:           id,
		index:        index,
		numProposers: numProposers,
		acceptors:    unique,
		members:      members,
		input:        input,
		logger:       logger,
		timeout:      DefaultReceiveTimeout,
		budget:       DefaultPhaseBudget,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewSource(int64(id)))
	}
	return p, nil
}

// ID returns the id of the proposer.
func (p *Proposer) ID() synod.ID {
	return p.id
}

// Epochs returns the external epochs of all attempts so far, in order.
func (p *Proposer) Epochs() []synod.Epoch {
	return append([]synod.Epoch(nil), p.history...)
}

// Decided returns the epoch and value for which the proposer reached
// consensus, if it has.
func (p *Proposer) Decided() (synod.Epoch, synod.Value, bool) {
	if p.step != stepDone {
		return synod.NoEpoch, "", false
	}
	return p.epoch, p.value, true
}

// Resume implements synod.Process.
func (p *Proposer) Resume(in any) (synod.Effect, error) {
	switch p.step {
	case stepStart:
		p.startAttempt()
		return p.next(), nil

	case stepSend:
		if in != nil {
			return nil, synod.Violation(p.id, "unexpected input %#v after send", in)
		}
		return p.next(), nil

	case stepDeadline:
		now, ok := in.(synod.Tick)
		if !ok {
			return nil, synod.Violation(p.id, "expected clock value, got %#v", in)
		}
		p.deadline = now + p.budget
		return p.receive(), nil

	case stepReceive:
		switch in := in.(type) {
		case synod.TimedOut:
		case synod.Delivery:
			res, err := p.onDelivery(in)
			if err != nil {
				return nil, err
			}
			switch res {
			case abandon:
				p.startAttempt()
				return p.next(), nil
			case quorum:
				return p.onQuorum(), nil
			}
		default:
			return nil, synod.Violation(p.id, "expected reply or timeout, got %#v", in)
		}
		p.step = stepCheck
		return synod.ReadClock{}, nil

	case stepCheck:
		now, ok := in.(synod.Tick)
		if !ok {
			return nil, synod.Violation(p.id, "expected clock value, got %#v", in)
		}
		if now >= p.deadline {
			p.logger.Debugf("proposer %d: %s phase of %v timed out at tick %d", p.id, p.phase, p.epoch, now)
			p.startAttempt()
			return p.next(), nil
		}
		return p.receive(), nil

	default:
		return nil, synod.Violation(p.id, "resumed after consensus was reached")
	}
}

// next returns the next queued send, or asks for the clock to start the phase
// deadline once all requests are out.
func (p *Proposer) next() synod.Effect {
	if len(p.outbox) > 0 {
		send := p.outbox[0]
		p.outbox = p.outbox[1:]
		p.step = stepSend
		return send
	}
	p.step = stepDeadline
	return synod.ReadClock{}
}

func (p *Proposer) receive() synod.Effect {
	p.step = stepReceive
	return synod.ReceiveFromAny{Timeout: p.timeout}
}

// broadcast queues msg for every acceptor in random order.
func (p *Proposer) broadcast(msg synod.Message) {
	order := append([]synod.ID(nil), p.acceptors...)
	p.rnd.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	p.outbox = p.outbox[:0]
	for _, to := range order {
		p.outbox = append(p.outbox, synod.Send{To: to, Msg: msg})
	}
}

func (p *Proposer) startAttempt() {
	p.counter++
	p.epoch = synod.Encode(p.counter, p.index, p.numProposers)
	p.history = append(p.history, p.epoch)
	p.phase = preparing
	p.votes = make(map[synod.ID]struct{}, len(p.acceptors))
	p.adoptedEpoch = synod.NoEpoch
	p.adoptedValue = ""
	p.logger.Debugf("proposer %d: starting attempt %d with epoch %v", p.id, p.counter, p.epoch)
	p.broadcast(synod.Prepare{Epoch: p.epoch})
}

func (p *Proposer) startPropose() {
	p.phase = proposing
	p.votes = make(map[synod.ID]struct{}, len(p.acceptors))
	p.value = p.input
	if p.adoptedEpoch != synod.NoEpoch {
		p.value = p.adoptedValue
		p.logger.Debugf("proposer %d: adopting %q accepted at %v", p.id, p.adoptedValue, p.adoptedEpoch)
	}
	p.broadcast(synod.Propose{Epoch: p.epoch, Value: p.value})
}

func (p *Proposer) onQuorum() synod.Effect {
	if p.phase == preparing {
		p.startPropose()
		return p.next()
	}
	p.step = stepDone
	p.logger.Debugf("proposer %d: reached consensus for epoch %v", p.id, p.epoch)
	return synod.ConsensusReached{Epoch: p.epoch, Value: p.value}
}

func (p *Proposer) onDelivery(d synod.Delivery) (outcome, error) {
	if _, ok := p.members[d.From]; !ok {
		return waiting, synod.Violation(p.id, "got %v from %d, which is not an acceptor", d.Msg, d.From)
	}
	if d.Msg == nil || d.Msg.GetEpoch() != p.epoch {
		// a reply from an earlier attempt
		return waiting, nil
	}

	switch p.phase {
	case preparing:
		promise, ok := d.Msg.(synod.Promise)
		if !ok {
			p.logger.Debugf("proposer %d: abandoning %v after %v from %d", p.id, p.epoch, d.Msg, d.From)
			return abandon, nil
		}
		if promise.HasAccepted() && promise.AcceptedEpoch > p.adoptedEpoch {
			p.adoptedEpoch = promise.AcceptedEpoch
			p.adoptedValue = promise.AcceptedValue
		}
		return p.vote(d.From), nil

	default:
		switch d.Msg.(type) {
		case synod.Accept:
			return p.vote(d.From), nil
		case synod.NoAccept:
			p.logger.Debugf("proposer %d: abandoning %v after %v from %d", p.id, p.epoch, d.Msg, d.From)
			return abandon, nil
		default:
			// late replies to the prepare phase of this attempt
			return waiting, nil
		}
	}
}

func (p *Proposer) vote(from synod.ID) outcome {
	p.votes[from] = struct{}{}
	if synod.IsQuorum(len(p.votes), len(p.acceptors)) {
		return quorum
	}
	return waiting
}

var _ synod.Process = (*Proposer)(nil)
