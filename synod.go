// Package synod defines the core types of a discrete-event simulation of the
// single-decree Paxos (Synod) protocol.
//
// A simulation consists of proposer and acceptor processes. Processes never
// call each other; they describe what they want the runtime to do by
// returning effects from Resume, and the scheduler answers with an input on
// the next call to Resume:
//
//	+-----------+   Send/ReadClock    +-------------+   enqueue    +-----------+
//	|           |-------------------->|             |------------->|  Mailbox  |
//	|  Process  |   ReceiveFromAny    |  Scheduler  |              +-----------+
//	|           |-------------------->|             |<---- dequeue ------+
//	|           |<--------------------|             |
//	+-----------+  Delivery/TimedOut  +-------------+
//	                     Tick                |
//	                                         +--OnSend()/OnFinished()--> Observer
//
// The protocol state machines live in protocol/acceptor and protocol/proposer,
// the runtime in scheduler, and the run harness in sim.
package synod

import "fmt"

// ID uniquely identifies a process in a simulation.
type ID uint32

// Role tells whether a process is a proposer or an acceptor.
type Role uint8

const (
	// Proposer processes drive rounds until they believe a value is chosen.
	Proposer Role = iota
	// Acceptor processes answer proposers and remember what they accepted.
	Acceptor
)

func (r Role) String() string {
	switch r {
	case Proposer:
		return "proposer"
	case Acceptor:
		return "acceptor"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Tick is a value of the logical clock.
type Tick uint64

// Value is a value that proposers try to get chosen.
type Value string
