package scheduler

import (
	"math/rand"

	wr "github.com/mroth/weightedrand"
	"github.com/relab/synod"
)

// Chooser picks the process to run next among the eligible ones.
// The eligible slice is sorted by ID and is never empty.
type Chooser interface {
	Choose(eligible []synod.ID) synod.ID
}

// ChooserFunc allows a plain function to be used as a Chooser.
type ChooserFunc func(eligible []synod.ID) synod.ID

// Choose calls f(eligible).
func (f ChooserFunc) Choose(eligible []synod.ID) synod.ID {
	return f(eligible)
}

// RandomChooser picks uniformly at random from the eligible processes.
type RandomChooser struct {
	rnd *rand.Rand
}

// NewRandomChooser returns a chooser whose choices are reproducible for a given seed.
func NewRandomChooser(seed int64) *RandomChooser {
	return &RandomChooser{rnd: rand.New(rand.NewSource(seed))}
}

// Choose picks one of the eligible processes, each with the same weight.
func (c *RandomChooser) Choose(eligible []synod.ID) synod.ID {
	if len(eligible) == 1 {
		return eligible[0]
	}
	choices := make([]wr.Choice, len(eligible))
	for i, id := range eligible {
		choices[i] = wr.Choice{Item: id, Weight: 1}
	}
	chooser, err := wr.NewChooser(choices...)
	if err != nil {
		// only fails for empty or zero-weight choices
		panic(err)
	}
	return chooser.PickSource(c.rnd).(synod.ID)
}

// FirstChooser always picks the eligible process with the lowest ID.
func FirstChooser() Chooser {
	return ChooserFunc(func(eligible []synod.ID) synod.ID {
		return eligible[0]
	})
}
