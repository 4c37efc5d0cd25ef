package metrics_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/relab/synod"
	"github.com/relab/synod/metrics"
)

// emit replays a short run into an observer.
func emit(w *metrics.TraceWriter) {
	w.OnSend(1, 0, 3, synod.Prepare{Epoch: 1})
	w.OnDeliver(2, 3, synod.Delivery{From: 0, Msg: synod.Prepare{Epoch: 1}})
	w.OnSend(2, 3, 0, synod.Promise{Epoch: 1})
	w.OnTimeout(5, 4)
	w.OnSend(6, 0, 3, synod.Propose{Epoch: 1, Value: "b"})
	w.OnFinished(9, 0, 1, "b")
}

var wantEvents = []metrics.Event{
	{Tick: 1, Type: metrics.EventSend, Process: 0, Peer: 3, Message: "Prepare", Epoch: 1},
	{Tick: 2, Type: metrics.EventDeliver, Process: 3, Peer: 0, Message: "Prepare", Epoch: 1},
	{Tick: 2, Type: metrics.EventSend, Process: 3, Peer: 0, Message: "Promise", Epoch: 1},
	{Tick: 5, Type: metrics.EventTimeout, Process: 4},
	{Tick: 6, Type: metrics.EventSend, Process: 0, Peer: 3, Message: "Propose", Epoch: 1, Value: "b"},
	{Tick: 9, Type: metrics.EventFinished, Process: 0, Epoch: 1, Value: "b"},
}

func TestBinaryTrace(t *testing.T) {
	var buf bytes.Buffer
	w, err := metrics.NewTraceWriter(&buf, metrics.FormatBinary)
	if err != nil {
		t.Fatal(err)
	}
	emit(w)
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := metrics.NewTraceReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if diff := cmp.Diff(wantEvents, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONTrace(t *testing.T) {
	var buf bytes.Buffer
	w, err := metrics.NewTraceWriter(&buf, metrics.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	emit(w)
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := metrics.ReadJSONTrace(&buf)
	if err != nil {
		t.Fatalf("ReadJSONTrace failed: %v", err)
	}
	if diff := cmp.Diff(wantEvents, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyJSONTrace(t *testing.T) {
	var buf bytes.Buffer
	w, err := metrics.NewTraceWriter(&buf, metrics.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := metrics.ReadJSONTrace(&buf)
	if err != nil || len(got) != 0 {
		t.Errorf("ReadJSONTrace() = %v, %v; want no events", got, err)
	}
}

type failingWriter struct{}

var errDiskFull = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errDiskFull }

func TestTraceWriterKeepsFirstError(t *testing.T) {
	w, err := metrics.NewTraceWriter(failingWriter{}, metrics.FormatBinary)
	if err != nil {
		t.Fatal(err)
	}
	w.OnTimeout(1, 0)
	if !errors.Is(w.Err(), errDiskFull) {
		t.Errorf("Err() = %v; want %v", w.Err(), errDiskFull)
	}
	if !errors.Is(w.Close(), errDiskFull) {
		t.Error("Close() did not report the write error")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    metrics.Format
		wantErr bool
	}{
		{in: "proto", want: metrics.FormatBinary},
		{in: "binary", want: metrics.FormatBinary},
		{in: "", want: metrics.FormatBinary},
		{in: "json", want: metrics.FormatJSON},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := metrics.ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
