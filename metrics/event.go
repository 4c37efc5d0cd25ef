package metrics

import (
	"fmt"

	"github.com/relab/synod"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventType identifies a scheduler event in a trace.
type EventType string

// The event types written by the TraceWriter.
const (
	EventSend     EventType = "send"
	EventDeliver  EventType = "deliver"
	EventTimeout  EventType = "timeout"
	EventFinished EventType = "finished"
)

// Event is one entry in a trace.
type Event struct {
	Tick synod.Tick
	Type EventType
	// Process is the sender of a send event and the affected process otherwise.
	Process synod.ID
	// Peer is the receiver of a send event and the sender of a delivered message.
	Peer synod.ID
	// Message is the kind of the sent or delivered message.
	Message string
	Epoch   synod.Epoch
	Value   synod.Value
}

func (e Event) String() string {
	switch e.Type {
	case EventSend:
		return fmt.Sprintf("%d: %d -> %d %s(%v)", e.Tick, e.Process, e.Peer, e.Message, e.Epoch)
	case EventDeliver:
		return fmt.Sprintf("%d: %d <- %d %s(%v)", e.Tick, e.Process, e.Peer, e.Message, e.Epoch)
	case EventTimeout:
		return fmt.Sprintf("%d: %d timed out", e.Tick, e.Process)
	case EventFinished:
		return fmt.Sprintf("%d: %d finished with %v %q", e.Tick, e.Process, e.Epoch, e.Value)
	default:
		return fmt.Sprintf("%d: %s", e.Tick, e.Type)
	}
}

func sendEvent(tick synod.Tick, from, to synod.ID, msg synod.Message) Event {
	ev := Event{
		Tick:    tick,
		Type:    EventSend,
		Process: from,
		Peer:    to,
		Message: synod.Kind(msg),
		Epoch:   msg.GetEpoch(),
	}
	if p, ok := msg.(synod.Propose); ok {
		ev.Value = p.Value
	}
	return ev
}

func deliverEvent(tick synod.Tick, to synod.ID, d synod.Delivery) Event {
	ev := sendEvent(tick, d.From, to, d.Msg)
	ev.Type = EventDeliver
	ev.Process, ev.Peer = to, d.From
	return ev
}

// toStruct converts the event to a protobuf struct. Fields that are not set
// are left out.
func (e Event) toStruct() (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"tick":    uint64(e.Tick),
		"type":    string(e.Type),
		"process": uint32(e.Process),
	}
	if e.Type == EventSend || e.Type == EventDeliver {
		fields["peer"] = uint32(e.Peer)
		fields["message"] = e.Message
	}
	if e.Epoch != synod.NoEpoch {
		fields["epoch"] = uint64(e.Epoch)
	}
	if e.Value != "" {
		fields["value"] = string(e.Value)
	}
	return structpb.NewStruct(fields)
}

func eventFromStruct(s *structpb.Struct) (Event, error) {
	f := s.GetFields()
	typ, ok := f["type"]
	if !ok {
		return Event{}, fmt.Errorf("event has no type")
	}
	tick, ok := f["tick"]
	if !ok {
		return Event{}, fmt.Errorf("event has no tick")
	}
	return Event{
		Tick:    synod.Tick(tick.GetNumberValue()),
		Type:    EventType(typ.GetStringValue()),
		Process: synod.ID(f["process"].GetNumberValue()),
		Peer:    synod.ID(f["peer"].GetNumberValue()),
		Message: f["message"].GetStringValue(),
		Epoch:   synod.Epoch(f["epoch"].GetNumberValue()),
		Value:   synod.Value(f["value"].GetStringValue()),
	}, nil
}
