package acceptor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	fuzz "github.com/google/gofuzz"
	"github.com/relab/synod"
	"github.com/relab/synod/logging"
)

func newAcceptor() *Acceptor {
	return New(3, logging.Nop())
}

func handle(t *testing.T, a *Acceptor, msg synod.Message) synod.Message {
	t.Helper()
	reply, ok := a.Handle(msg)
	if !ok {
		t.Fatalf("Handle(%v) did not reply", msg)
	}
	return reply
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name  string
		msgs  []synod.Message
		want  []synod.Message
		state State
	}{
		{
			name:  "PrepareOnFresh",
			msgs:  []synod.Message{synod.Prepare{Epoch: 4}},
			want:  []synod.Message{synod.Promise{Epoch: 4}},
			state: State{Promised: 4},
		},
		{
			name:  "PrepareLower",
			msgs:  []synod.Message{synod.Prepare{Epoch: 4}, synod.Prepare{Epoch: 2}},
			want:  []synod.Message{synod.Promise{Epoch: 4}, synod.NoPromise{Epoch: 2}},
			state: State{Promised: 4},
		},
		{
			name:  "PrepareHigher",
			msgs:  []synod.Message{synod.Prepare{Epoch: 4}, synod.Prepare{Epoch: 7}},
			want:  []synod.Message{synod.Promise{Epoch: 4}, synod.Promise{Epoch: 7}},
			state: State{Promised: 7},
		},
		{
			name:  "ProposeOnFresh",
			msgs:  []synod.Message{synod.Propose{Epoch: 9, Value: "a"}},
			want:  []synod.Message{synod.Accept{Epoch: 9}},
			state: State{Promised: 9, AcceptedEpoch: 9, AcceptedValue: "a"},
		},
		{
			name: "ProposeAtPromise",
			msgs: []synod.Message{synod.Prepare{Epoch: 5}, synod.Propose{Epoch: 5, Value: "b"}},
			want: []synod.Message{synod.Promise{Epoch: 5}, synod.Accept{Epoch: 5}},
			state: State{Promised: 5, AcceptedEpoch: 5, AcceptedValue: "b"},
		},
		{
			name:  "ProposeBelowPromise",
			msgs:  []synod.Message{synod.Prepare{Epoch: 5}, synod.Propose{Epoch: 3, Value: "b"}},
			want:  []synod.Message{synod.Promise{Epoch: 5}, synod.NoAccept{Epoch: 3}},
			state: State{Promised: 5},
		},
		{
			name: "ProposeRaisesPromise",
			msgs: []synod.Message{synod.Prepare{Epoch: 5}, synod.Propose{Epoch: 8, Value: "c"}, synod.Prepare{Epoch: 7}},
			want: []synod.Message{synod.Promise{Epoch: 5}, synod.Accept{Epoch: 8}, synod.NoPromise{Epoch: 7}},
			state: State{Promised: 8, AcceptedEpoch: 8, AcceptedValue: "c"},
		},
		{
			name: "PromiseCarriesAccepted",
			msgs: []synod.Message{
				synod.Prepare{Epoch: 3},
				synod.Propose{Epoch: 3, Value: "a"},
				synod.Prepare{Epoch: 6},
			},
			want: []synod.Message{
				synod.Promise{Epoch: 3},
				synod.Accept{Epoch: 3},
				synod.Promise{Epoch: 6, AcceptedEpoch: 3, AcceptedValue: "a"},
			},
			state: State{Promised: 6, AcceptedEpoch: 3, AcceptedValue: "a"},
		},
		{
			name: "LaterAcceptReplacesValue",
			msgs: []synod.Message{
				synod.Propose{Epoch: 3, Value: "a"},
				synod.Propose{Epoch: 4, Value: "b"},
				synod.Prepare{Epoch: 10},
			},
			want: []synod.Message{
				synod.Accept{Epoch: 3},
				synod.Accept{Epoch: 4},
				synod.Promise{Epoch: 10, AcceptedEpoch: 4, AcceptedValue: "b"},
			},
			state: State{Promised: 10, AcceptedEpoch: 4, AcceptedValue: "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAcceptor()
			var got []synod.Message
			for _, msg := range tt.msgs {
				got = append(got, handle(t, a, msg))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("replies mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.state, a.State()); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// A duplicate Prepare must be promised again without touching the accepted value.
func TestIdempotentRePromise(t *testing.T) {
	a := newAcceptor()
	handle(t, a, synod.Propose{Epoch: 2, Value: "x"})
	before := a.State()

	want := synod.Promise{Epoch: 6, AcceptedEpoch: 2, AcceptedValue: "x"}
	for i := 0; i < 2; i++ {
		if got := handle(t, a, synod.Prepare{Epoch: 6}); got != want {
			t.Errorf("Prepare #%d: got %v, want %v", i+1, got, want)
		}
	}
	after := a.State()
	if after.AcceptedEpoch != before.AcceptedEpoch || after.AcceptedValue != before.AcceptedValue {
		t.Errorf("accepted state changed from %+v to %+v", before, after)
	}
}

func TestIgnoresReplies(t *testing.T) {
	a := newAcceptor()
	for _, msg := range []synod.Message{
		synod.Promise{Epoch: 1},
		synod.NoPromise{Epoch: 1},
		synod.Accept{Epoch: 1},
		synod.NoAccept{Epoch: 1},
	} {
		if reply, ok := a.Handle(msg); ok {
			t.Errorf("Handle(%v) = %v; want no reply", msg, reply)
		}
	}
	if a.State() != (State{}) {
		t.Errorf("state changed to %+v", a.State())
	}
}

func TestResume(t *testing.T) {
	a := New(3, logging.Nop(), WithReceiveTimeout(7))
	wait := synod.ReceiveFromAny{Timeout: 7}

	steps := []struct {
		in   any
		want synod.Effect
	}{
		{in: nil, want: wait},
		{in: synod.TimedOut{}, want: wait},
		{in: synod.Delivery{From: 0, Msg: synod.Prepare{Epoch: 3}}, want: synod.Send{To: 0, Msg: synod.Promise{Epoch: 3}}},
		{in: nil, want: wait},
		{in: synod.Delivery{From: 1, Msg: synod.Prepare{Epoch: 2}}, want: synod.Send{To: 1, Msg: synod.NoPromise{Epoch: 2}}},
		{in: nil, want: wait},
		{in: synod.Delivery{From: 1, Msg: synod.Accept{Epoch: 2}}, want: wait},
		{in: synod.Delivery{From: 0, Msg: synod.Propose{Epoch: 3, Value: "a"}}, want: synod.Send{To: 0, Msg: synod.Accept{Epoch: 3}}},
	}
	for i, step := range steps {
		got, err := a.Resume(step.in)
		if err != nil {
			t.Fatalf("step %d: Resume(%v) failed: %v", i, step.in, err)
		}
		if diff := cmp.Diff(step.want, got); diff != "" {
			t.Fatalf("step %d: effect mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestResumeUnexpectedInput(t *testing.T) {
	a := newAcceptor()
	_, err := a.Resume(synod.Tick(12))
	if !errors.Is(err, synod.ErrProtocolViolation) {
		t.Errorf("Resume(Tick) error = %v; want ErrProtocolViolation", err)
	}
}

type fuzzMsg struct {
	msg synod.Message
}

// TestMonotonicity feeds random request streams to an acceptor and checks
// that the promised and accepted epochs never go backwards, and that every
// Promise reports the latest accepted value.
func TestMonotonicity(t *testing.T) {
	values := []synod.Value{"a", "b", "c"}
	for seed := int64(0); seed < 20; seed++ {
		f := fuzz.NewWithSeed(seed).NilChance(0).Funcs(
			func(m *fuzzMsg, c fuzz.Continue) {
				e := synod.Epoch(c.Intn(30) + 1)
				if c.Intn(2) == 0 {
					m.msg = synod.Prepare{Epoch: e}
				} else {
					m.msg = synod.Propose{Epoch: e, Value: values[c.Intn(len(values))]}
				}
			},
		)

		a := newAcceptor()
		prev := a.State()
		for i := 0; i < 500; i++ {
			var m fuzzMsg
			f.Fuzz(&m)
			reply := handle(t, a, m.msg)
			cur := a.State()

			if cur.Promised < prev.Promised {
				t.Fatalf("seed %d: promised epoch went from %v to %v after %v", seed, prev.Promised, cur.Promised, m.msg)
			}
			if cur.AcceptedEpoch < prev.AcceptedEpoch {
				t.Fatalf("seed %d: accepted epoch went from %v to %v after %v", seed, prev.AcceptedEpoch, cur.AcceptedEpoch, m.msg)
			}
			if cur.AcceptedEpoch > cur.Promised {
				t.Fatalf("seed %d: accepted epoch %v above promised epoch %v", seed, cur.AcceptedEpoch, cur.Promised)
			}
			if reply.GetEpoch() != m.msg.GetEpoch() {
				t.Fatalf("seed %d: reply %v does not echo the epoch of %v", seed, reply, m.msg)
			}
			if p, ok := reply.(synod.Promise); ok {
				if p.AcceptedEpoch != prev.AcceptedEpoch || p.AcceptedValue != prev.AcceptedValue {
					t.Fatalf("seed %d: %v does not carry accepted state %+v", seed, p, prev)
				}
			}
			prev = cur
		}
	}
}
