package synod

import "fmt"

// Message is implemented by every protocol message. All messages are
// comparable values; replies echo the epoch of the request they answer.
type Message interface {
	GetEpoch() Epoch
	fmt.Stringer
}

// Prepare is the phase-1 request.
type Prepare struct {
	Epoch Epoch
}

// Promise grants a Prepare. If the acceptor has accepted a value before, the
// accepted epoch and value are included; otherwise AcceptedEpoch is NoEpoch.
type Promise struct {
	Epoch         Epoch
	AcceptedEpoch Epoch
	AcceptedValue Value
}

// HasAccepted returns true if the promise carries a previously accepted value.
func (p Promise) HasAccepted() bool {
	return p.AcceptedEpoch != NoEpoch
}

// NoPromise rejects a Prepare whose epoch is lower than one already promised.
type NoPromise struct {
	Epoch Epoch
}

// Propose is the phase-2 request.
type Propose struct {
	Epoch Epoch
	Value Value
}

// Accept grants a Propose.
type Accept struct {
	Epoch Epoch
}

// NoAccept rejects a Propose.
type NoAccept struct {
	Epoch Epoch
}

func (m Prepare) GetEpoch() Epoch   { return m.Epoch }
func (m Promise) GetEpoch() Epoch   { return m.Epoch }
func (m NoPromise) GetEpoch() Epoch { return m.Epoch }
func (m Propose) GetEpoch() Epoch   { return m.Epoch }
func (m Accept) GetEpoch() Epoch    { return m.Epoch }
func (m NoAccept) GetEpoch() Epoch  { return m.Epoch }

func (m Prepare) String() string { return fmt.Sprintf("Prepare(%v)", m.Epoch) }

func (m Promise) String() string {
	if !m.HasAccepted() {
		return fmt.Sprintf("Promise(%v)", m.Epoch)
	}
	return fmt.Sprintf("Promise(%v, accepted %q at %v)", m.Epoch, m.AcceptedValue, m.AcceptedEpoch)
}

func (m NoPromise) String() string { return fmt.Sprintf("NoPromise(%v)", m.Epoch) }
func (m Propose) String() string   { return fmt.Sprintf("Propose(%v, %q)", m.Epoch, m.Value) }
func (m Accept) String() string    { return fmt.Sprintf("Accept(%v)", m.Epoch) }
func (m NoAccept) String() string  { return fmt.Sprintf("NoAccept(%v)", m.Epoch) }

// Kind returns the name of the message type, e.g. "Prepare".
func Kind(msg Message) string {
	switch msg.(type) {
	case Prepare:
		return "Prepare"
	case Promise:
		return "Promise"
	case NoPromise:
		return "NoPromise"
	case Propose:
		return "Propose"
	case Accept:
		return "Accept"
	case NoAccept:
		return "NoAccept"
	default:
		return fmt.Sprintf("%T", msg)
	}
}
