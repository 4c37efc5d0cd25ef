package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/relab/synod"
	"github.com/relab/synod/internal/mocks"
	"github.com/relab/synod/logging"
	"github.com/relab/synod/scheduler"
)

var errExhausted = errors.New("script exhausted")

// script is a process that returns a fixed sequence of effects and records
// every input it was resumed with.
type script struct {
	effects []synod.Effect
	inputs  []any
}

func (s *script) Resume(in any) (synod.Effect, error) {
	s.inputs = append(s.inputs, in)
	if len(s.inputs) > len(s.effects) {
		return nil, errExhausted
	}
	return s.effects[len(s.inputs)-1], nil
}

func newScheduler(t *testing.T, opts ...scheduler.Option) *scheduler.Scheduler {
	t.Helper()
	opts = append([]scheduler.Option{scheduler.WithChooser(scheduler.FirstChooser())}, opts...)
	return scheduler.New(logging.Nop(), opts...)
}

func spawn(t *testing.T, s *scheduler.Scheduler, id synod.ID, role synod.Role, proc synod.Process) {
	t.Helper()
	if err := s.Spawn(id, role, proc); err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	obs := mocks.NewMockObserver(ctrl)

	first := synod.Delivery{From: 0, Msg: synod.Prepare{Epoch: 1}}
	second := synod.Delivery{From: 0, Msg: synod.Prepare{Epoch: 2}}

	gomock.InOrder(
		obs.EXPECT().OnSend(synod.Tick(1), synod.ID(0), synod.ID(1), first.Msg),
		obs.EXPECT().OnSend(synod.Tick(1), synod.ID(0), synod.ID(1), second.Msg),
		obs.EXPECT().OnDeliver(synod.Tick(3), synod.ID(1), first),
		obs.EXPECT().OnDeliver(synod.Tick(4), synod.ID(1), second),
		obs.EXPECT().OnTimeout(synod.Tick(6), synod.ID(0)),
		obs.EXPECT().OnFinished(synod.Tick(6), synod.ID(0), synod.Epoch(2), synod.Value("x")),
	)

	proposer := &script{effects: []synod.Effect{
		synod.Send{To: 1, Msg: first.Msg},
		synod.Send{To: 1, Msg: second.Msg},
		synod.ReadClock{},
		synod.ReceiveFromAny{Timeout: 5},
		synod.ConsensusReached{Epoch: 2, Value: "x"},
	}}
	acceptor := &script{effects: []synod.Effect{
		synod.ReceiveFromAny{Timeout: 100},
		synod.ReceiveFromAny{Timeout: 100},
		synod.ReceiveFromAny{Timeout: 100},
	}}

	s := newScheduler(t, scheduler.WithObserver(obs))
	spawn(t, s, 0, synod.Proposer, proposer)
	spawn(t, s, 1, synod.Acceptor, acceptor)

	outcome, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != scheduler.Converged {
		t.Errorf("outcome = %v; want %v", outcome, scheduler.Converged)
	}
	if s.Clock() != 6 {
		t.Errorf("clock = %d; want 6", s.Clock())
	}

	wantProposer := []any{nil, nil, nil, synod.Tick(1), synod.TimedOut{}}
	if diff := cmp.Diff(wantProposer, proposer.inputs); diff != "" {
		t.Errorf("proposer inputs mismatch (-want +got):\n%s", diff)
	}
	wantAcceptor := []any{nil, first, second}
	if diff := cmp.Diff(wantAcceptor, acceptor.inputs); diff != "" {
		t.Errorf("acceptor inputs mismatch (-want +got):\n%s", diff)
	}

	st, ok := s.Status(0)
	if !ok {
		t.Fatal("proposer not found")
	}
	if st.State != scheduler.Finished || st.FinishedAt != 6 {
		t.Errorf("proposer status = %+v", st)
	}
	st, _ = s.Status(1)
	if st.State != scheduler.Awaiting || st.Deadline != 104 {
		t.Errorf("acceptor status = %+v", st)
	}
}

func TestDeadlineElapses(t *testing.T) {
	tests := []struct {
		timeout synod.Tick
		wakeAt  synod.Tick
	}{
		{timeout: 0, wakeAt: 2},
		{timeout: 1, wakeAt: 2},
		{timeout: 3, wakeAt: 4},
	}
	for _, tt := range tests {
		proc := &script{effects: []synod.Effect{
			synod.ReceiveFromAny{Timeout: tt.timeout},
			synod.ConsensusReached{Epoch: 1, Value: "v"},
		}}
		s := newScheduler(t)
		spawn(t, s, 0, synod.Proposer, proc)

		for !s.Done() {
			if s.Clock() > 10 {
				t.Fatalf("timeout %d: process never woke up", tt.timeout)
			}
			if err := s.Step(); err != nil {
				t.Fatal(err)
			}
		}
		st, _ := s.Status(0)
		if st.FinishedAt != tt.wakeAt {
			t.Errorf("timeout %d: woke up at tick %d; want %d", tt.timeout, st.FinishedAt, tt.wakeAt)
		}
		if diff := cmp.Diff([]any{nil, synod.TimedOut{}}, proc.inputs); diff != "" {
			t.Errorf("timeout %d: inputs mismatch (-want +got):\n%s", tt.timeout, diff)
		}
	}
}

func TestIdleTicks(t *testing.T) {
	proc := &script{effects: []synod.Effect{synod.ReceiveFromAny{Timeout: 50}}}
	s := newScheduler(t)
	spawn(t, s, 0, synod.Proposer, proc)

	for i := 0; i < 10; i++ {
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if len(proc.inputs) != 1 {
		t.Errorf("process resumed %d times; want 1", len(proc.inputs))
	}
	if s.Clock() != 10 {
		t.Errorf("clock = %d; want 10", s.Clock())
	}
}

func TestMaxTicks(t *testing.T) {
	proc := &script{effects: []synod.Effect{synod.ReceiveFromAny{Timeout: 1000}}}
	s := newScheduler(t, scheduler.WithMaxTicks(25))
	spawn(t, s, 0, synod.Proposer, proc)

	outcome, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != scheduler.BudgetExhausted {
		t.Errorf("outcome = %v; want %v", outcome, scheduler.BudgetExhausted)
	}
	if s.Clock() != 25 {
		t.Errorf("clock = %d; want 25", s.Clock())
	}
}

func TestNoProposers(t *testing.T) {
	s := newScheduler(t)
	spawn(t, s, 0, synod.Acceptor, &script{})
	outcome, err := s.Run(context.Background())
	if err != nil || outcome != scheduler.Converged {
		t.Errorf("Run() = %v, %v; want %v, nil", outcome, err, scheduler.Converged)
	}
	if s.Clock() != 0 {
		t.Errorf("clock = %d; want 0", s.Clock())
	}
}

func TestContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newScheduler(t)
	spawn(t, s, 0, synod.Proposer, &script{effects: []synod.Effect{synod.ReceiveFromAny{Timeout: 1}}})
	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v; want %v", err, context.Canceled)
	}
}

func TestDuplicateSpawn(t *testing.T) {
	s := newScheduler(t)
	spawn(t, s, 3, synod.Acceptor, &script{})
	if err := s.Spawn(3, synod.Proposer, &script{}); err == nil {
		t.Error("expected an error when spawning a duplicate process")
	}
}

func TestViolations(t *testing.T) {
	tests := []struct {
		name   string
		effect synod.Effect
	}{
		{name: "UnknownEffect", effect: "sleep"},
		{name: "NilEffect", effect: nil},
		{name: "UnknownTarget", effect: synod.Send{To: 42, Msg: synod.Accept{Epoch: 1}}},
		{name: "NilMessage", effect: synod.Send{To: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScheduler(t)
			spawn(t, s, 0, synod.Proposer, &script{effects: []synod.Effect{tt.effect}})
			_, err := s.Run(context.Background())
			if !errors.Is(err, synod.ErrProtocolViolation) {
				t.Errorf("Run() error = %v; want %v", err, synod.ErrProtocolViolation)
			}
		})
	}
}

func TestProcessError(t *testing.T) {
	s := newScheduler(t)
	// resuming the empty script fails immediately
	spawn(t, s, 0, synod.Proposer, &script{})
	if _, err := s.Run(context.Background()); !errors.Is(err, errExhausted) {
		t.Errorf("Run() error = %v; want %v", err, errExhausted)
	}
}

func TestChooserPicksIneligible(t *testing.T) {
	chooser := scheduler.ChooserFunc(func([]synod.ID) synod.ID { return 99 })
	s := scheduler.New(logging.Nop(), scheduler.WithChooser(chooser))
	spawn(t, s, 0, synod.Proposer, &script{effects: []synod.Effect{synod.ReceiveFromAny{}}})
	if err := s.Step(); err == nil {
		t.Error("expected an error when the chooser picks an ineligible process")
	}
}

func TestRandomChooserOnlyPicksEligible(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		var picked []synod.ID
		chooser := scheduler.NewRandomChooser(seed)
		record := scheduler.ChooserFunc(func(eligible []synod.ID) synod.ID {
			id := chooser.Choose(eligible)
			picked = append(picked, id)
			return id
		})
		s := scheduler.New(logging.Nop(), scheduler.WithChooser(record))
		// only process 1 can finish; process 0 waits forever once it has run
		spawn(t, s, 0, synod.Acceptor, &script{effects: []synod.Effect{synod.ReceiveFromAny{Timeout: 1000}}})
		spawn(t, s, 1, synod.Proposer, &script{effects: []synod.Effect{synod.ConsensusReached{Epoch: 1, Value: "v"}}})
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(picked) == 0 || len(picked) > 2 {
			t.Errorf("seed %d: picked %v", seed, picked)
		}
	}
}
