package synod

import "fmt"

// Effect is a request from a process to the runtime. The runtime understands
// Send, ReceiveFromAny, ReadClock and ConsensusReached; anything else is a
// protocol violation.
type Effect any

// Send enqueues Msg in the mailbox of To. The process is resumed right away
// with a nil input.
type Send struct {
	To  ID
	Msg Message
}

// ReceiveFromAny suspends the process until a message is available in its
// mailbox, in which case it is resumed with a Delivery, or until Timeout
// ticks have passed, in which case it is resumed with TimedOut.
type ReceiveFromAny struct {
	Timeout Tick
}

// ReadClock resumes the process right away with the current Tick.
type ReadClock struct{}

// ConsensusReached is the terminal effect of a proposer that believes Value
// was chosen in Epoch. The process is never resumed again.
type ConsensusReached struct {
	Epoch Epoch
	Value Value
}

// Delivery is a message taken from a mailbox.
type Delivery struct {
	From ID
	Msg  Message
}

func (d Delivery) String() string {
	return fmt.Sprintf("%d: %v", d.From, d.Msg)
}

// TimedOut is the input given to a process whose ReceiveFromAny expired.
type TimedOut struct{}

// Process is a suspendable unit of sequential logic.
//
// Resume receives the answer to the previously returned effect: nil on the
// first call and after a Send, a Tick after ReadClock, and a Delivery or
// TimedOut after ReceiveFromAny. A returned error aborts the simulation.
type Process interface {
	Resume(in any) (Effect, error)
}
