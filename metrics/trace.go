package metrics

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/relab/synod"
	"go.uber.org/multierr"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Format is the encoding of a trace.
type Format string

const (
	// FormatBinary writes length-prefixed protobuf messages.
	FormatBinary Format = "proto"
	// FormatJSON writes a JSON array of protobuf messages.
	FormatJSON Format = "json"
)

// ParseFormat returns the trace format with the given name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatBinary, FormatJSON:
		return Format(name), nil
	case "binary", "":
		return FormatBinary, nil
	}
	return "", fmt.Errorf("unknown trace format %q", name)
}

// maxMessageSize is the largest message a TraceReader accepts.
const maxMessageSize = 1 << 31

// TraceWriter is a scheduler observer that writes every event to a log.
// Observer methods cannot return errors, so the first write error is kept
// and returned by Err and Close.
type TraceWriter struct {
	mut       sync.Mutex
	dest      io.Writer
	format    Format
	first     bool
	err       error
	marshaler proto.MarshalOptions
	jsonOpts  protojson.MarshalOptions
}

// NewTraceWriter returns a TraceWriter that writes to dest in the given format.
// Close closes dest if it implements io.Closer.
func NewTraceWriter(dest io.Writer, format Format) (*TraceWriter, error) {
	w := &TraceWriter{
		dest:     dest,
		format:   format,
		first:    true,
		jsonOpts: protojson.MarshalOptions{Indent: "\t", EmitUnpopulated: true},
	}
	switch format {
	case FormatBinary:
	case FormatJSON:
		if _, err := io.WriteString(dest, "[\n"); err != nil {
			return nil, fmt.Errorf("failed to write start of JSON array: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown trace format %q", format)
	}
	return w, nil
}

// Log writes the event to the trace.
func (w *TraceWriter) Log(ev Event) error {
	s, err := ev.toStruct()
	if err != nil {
		return fmt.Errorf("failed to convert event: %w", err)
	}
	msg, err := anypb.New(s)
	if err != nil {
		return fmt.Errorf("failed to create Any message: %w", err)
	}

	w.mut.Lock()
	defer w.mut.Unlock()

	if w.format == FormatJSON {
		return w.writeJSON(msg)
	}
	return w.writeBinary(msg)
}

func (w *TraceWriter) writeBinary(msg proto.Message) error {
	buf, err := w.marshaler.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Any message: %w", err)
	}

	var msgLen [4]byte
	binary.LittleEndian.PutUint32(msgLen[:], uint32(len(buf)))

	if _, err = w.dest.Write(msgLen[:]); err != nil {
		return fmt.Errorf("failed to write message length to trace: %w", err)
	}
	if _, err = w.dest.Write(buf); err != nil {
		return fmt.Errorf("failed to write message to trace: %w", err)
	}
	return nil
}

func (w *TraceWriter) writeJSON(msg proto.Message) error {
	if w.first {
		w.first = false
	} else if _, err := io.WriteString(w.dest, ",\n"); err != nil {
		return err
	}
	b, err := w.jsonOpts.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON: %w", err)
	}
	_, err = w.dest.Write(b)
	return err
}

func (w *TraceWriter) record(ev Event) {
	if err := w.Log(ev); err != nil {
		w.mut.Lock()
		if w.err == nil {
			w.err = err
		}
		w.mut.Unlock()
	}
}

func (w *TraceWriter) OnSend(tick synod.Tick, from, to synod.ID, msg synod.Message) {
	w.record(sendEvent(tick, from, to, msg))
}

func (w *TraceWriter) OnDeliver(tick synod.Tick, to synod.ID, d synod.Delivery) {
	w.record(deliverEvent(tick, to, d))
}

func (w *TraceWriter) OnTimeout(tick synod.Tick, id synod.ID) {
	w.record(Event{Tick: tick, Type: EventTimeout, Process: id})
}

func (w *TraceWriter) OnFinished(tick synod.Tick, id synod.ID, epoch synod.Epoch, value synod.Value) {
	w.record(Event{Tick: tick, Type: EventFinished, Process: id, Epoch: epoch, Value: value})
}

// Err returns the first error that occurred while writing events.
func (w *TraceWriter) Err() error {
	w.mut.Lock()
	defer w.mut.Unlock()
	return w.err
}

// Close ends the trace and closes the destination if it is an io.Closer.
func (w *TraceWriter) Close() (err error) {
	w.mut.Lock()
	defer w.mut.Unlock()

	err = w.err
	if w.format == FormatJSON {
		_, werr := io.WriteString(w.dest, "\n]")
		err = multierr.Append(err, werr)
	}
	if closer, ok := w.dest.(io.Closer); ok {
		err = multierr.Append(err, closer.Close())
	}
	return err
}

// TraceReader reads events from a binary trace.
type TraceReader struct {
	src         io.Reader
	unmarshaler proto.UnmarshalOptions
}

// NewTraceReader returns a TraceReader that reads from src.
// Close closes src if it implements io.Closer.
func NewTraceReader(src io.Reader) *TraceReader {
	return &TraceReader{src: src}
}

// Close closes the source if it is an io.Closer.
func (r *TraceReader) Close() error {
	if closer, ok := r.src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Read reads the next event. It returns io.EOF when the trace has no more events.
func (r *TraceReader) Read() (Event, error) {
	var msgLenBuf [4]byte
	if _, err := io.ReadFull(r.src, msgLenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Event{}, io.EOF
		}
		return Event{}, fmt.Errorf("failed to read message length: %w", err)
	}

	msgLen := binary.LittleEndian.Uint32(msgLenBuf[:])
	if msgLen > maxMessageSize {
		return Event{}, errors.New("message length is greater than 2 GiB")
	}

	buf := make([]byte, msgLen)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return Event{}, fmt.Errorf("failed to read message: %w", err)
	}

	var msg anypb.Any
	if err := r.unmarshaler.Unmarshal(buf, &msg); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal to Any message: %w", err)
	}
	return eventFromAny(&msg)
}

// ReadAll reads events until the end of the trace.
func (r *TraceReader) ReadAll() ([]Event, error) {
	var events []Event
	for {
		ev, err := r.Read()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

// ReadJSONTrace reads every event from a JSON trace.
func ReadJSONTrace(src io.Reader) ([]Event, error) {
	decoder := json.NewDecoder(src)

	t, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read first JSON token: %w", err)
	}
	if d, ok := t.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("expected first JSON token to be the start of an array")
	}

	var events []Event
	for decoder.More() {
		var b json.RawMessage
		if err := decoder.Decode(&b); err != nil {
			return events, err
		}
		var msg anypb.Any
		if err := protojson.Unmarshal(b, &msg); err != nil {
			return events, fmt.Errorf("failed to unmarshal JSON message: %w", err)
		}
		ev, err := eventFromAny(&msg)
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}

	t, err = decoder.Token()
	if err != nil {
		return events, fmt.Errorf("failed to read last JSON token: %w", err)
	}
	if d, ok := t.(json.Delim); !ok || d != ']' {
		return events, fmt.Errorf("expected last JSON token to be the end of an array")
	}
	return events, nil
}

func eventFromAny(msg *anypb.Any) (Event, error) {
	var s structpb.Struct
	if err := msg.UnmarshalTo(&s); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event from Any message: %w", err)
	}
	return eventFromStruct(&s)
}
