package scheduler

import "github.com/relab/synod"

//go:generate mockgen -destination=../internal/mocks/observer_mock.go -package=mocks . Observer

// Observer is notified about everything the scheduler does.
// It must not modify the simulation.
type Observer interface {
	// OnSend is called when a message is put in the mailbox of to.
	OnSend(tick synod.Tick, from, to synod.ID, msg synod.Message)
	// OnDeliver is called when a message is taken from the mailbox of to.
	OnDeliver(tick synod.Tick, to synod.ID, delivery synod.Delivery)
	// OnTimeout is called when a process wakes up without a message.
	OnTimeout(tick synod.Tick, id synod.ID)
	// OnFinished is called when a process signals that consensus was reached.
	OnFinished(tick synod.Tick, id synod.ID, epoch synod.Epoch, value synod.Value)
}

// Observers notifies each observer in turn.
type Observers []Observer

func (o Observers) OnSend(tick synod.Tick, from, to synod.ID, msg synod.Message) {
	for _, obs := range o {
		obs.OnSend(tick, from, to, msg)
	}
}

func (o Observers) OnDeliver(tick synod.Tick, to synod.ID, delivery synod.Delivery) {
	for _, obs := range o {
		obs.OnDeliver(tick, to, delivery)
	}
}

func (o Observers) OnTimeout(tick synod.Tick, id synod.ID) {
	for _, obs := range o {
		obs.OnTimeout(tick, id)
	}
}

func (o Observers) OnFinished(tick synod.Tick, id synod.ID, epoch synod.Epoch, value synod.Value) {
	for _, obs := range o {
		obs.OnFinished(tick, id, epoch, value)
	}
}

var _ Observer = Observers(nil)
