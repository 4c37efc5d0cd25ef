package metrics

import (
	"github.com/relab/synod"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// EpochStart records the tick at which a proposer started an attempt.
type EpochStart struct {
	Tick  synod.Tick
	Epoch synod.Epoch
}

// Belief is what a proposer reported when it finished.
type Belief struct {
	Tick  synod.Tick
	Epoch synod.Epoch
	Value synod.Value
}

// Collector is a scheduler observer that records acceptances, beliefs and
// attempt histories.
type Collector struct {
	acceptances map[synod.Epoch][]synod.ID
	history     map[synod.ID][]EpochStart
	beliefs     map[synod.ID]Belief
	counts      map[string]int
	delivered   int
	timeouts    int
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{
		acceptances: make(map[synod.Epoch][]synod.ID),
		history:     make(map[synod.ID][]EpochStart),
		beliefs:     make(map[synod.ID]Belief),
		counts:      make(map[string]int),
	}
}

// OnSend records Prepare bursts and Accept replies.
func (c *Collector) OnSend(tick synod.Tick, from, _ synod.ID, msg synod.Message) {
	c.counts[synod.Kind(msg)]++

	switch m := msg.(type) {
	case synod.Prepare:
		h := c.history[from]
		// a burst sends the same Prepare to every acceptor
		if len(h) > 0 && h[len(h)-1].Epoch == m.Epoch {
			return
		}
		c.history[from] = append(h, EpochStart{Tick: tick, Epoch: m.Epoch})
	case synod.Accept:
		ids := c.acceptances[m.Epoch]
		if !slices.Contains(ids, from) {
			c.acceptances[m.Epoch] = append(ids, from)
		}
	}
}

func (c *Collector) OnDeliver(synod.Tick, synod.ID, synod.Delivery) {
	c.delivered++
}

func (c *Collector) OnTimeout(synod.Tick, synod.ID) {
	c.timeouts++
}

func (c *Collector) OnFinished(tick synod.Tick, id synod.ID, epoch synod.Epoch, value synod.Value) {
	c.beliefs[id] = Belief{Tick: tick, Epoch: epoch, Value: value}
}

// Acceptances returns the sorted IDs of the acceptors that sent Accept for the epoch.
func (c *Collector) Acceptances(epoch synod.Epoch) []synod.ID {
	ids := slices.Clone(c.acceptances[epoch])
	slices.Sort(ids)
	return ids
}

// AcceptedEpochs returns every epoch that at least one acceptor accepted, in increasing order.
func (c *Collector) AcceptedEpochs() []synod.Epoch {
	epochs := maps.Keys(c.acceptances)
	slices.Sort(epochs)
	return epochs
}

// Beliefs returns a copy of the beliefs of the processes that finished.
func (c *Collector) Beliefs() map[synod.ID]Belief {
	return maps.Clone(c.beliefs)
}

// EpochHistory returns the attempts of a proposer in the order they were started.
func (c *Collector) EpochHistory(id synod.ID) []EpochStart {
	return slices.Clone(c.history[id])
}

// Proposers returns the sorted IDs of the processes that sent at least one Prepare.
func (c *Collector) Proposers() []synod.ID {
	ids := maps.Keys(c.history)
	slices.Sort(ids)
	return ids
}

// MessageCounts returns the number of sent messages per message kind.
func (c *Collector) MessageCounts() map[string]int {
	return maps.Clone(c.counts)
}

// Sent returns the total number of sent messages.
func (c *Collector) Sent() (total int) {
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Delivered returns the number of messages taken from a mailbox.
func (c *Collector) Delivered() int {
	return c.delivered
}

// Timeouts returns the number of times a process woke up without a message.
func (c *Collector) Timeouts() int {
	return c.timeouts
}
