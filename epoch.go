package synod

import "fmt"

// Epoch is a globally unique, totally ordered ballot number.
type Epoch uint64

// NoEpoch is never produced by Encode. It marks the absence of an epoch.
const NoEpoch Epoch = 0

// Encode maps the local attempt counter n of the proposer at position index
// (0 <= index < numProposers) to an external epoch. Two proposers never map
// to the same epoch, and a higher counter always yields a higher epoch for
// the same proposer. The counter must be at least 1.
func Encode(n uint64, index, numProposers int) Epoch {
	if n == 0 {
		panic("synod: epoch counter must start at 1")
	}
	if index < 0 || index >= numProposers {
		panic(fmt.Sprintf("synod: proposer index %d out of range [0, %d)", index, numProposers))
	}
	return Epoch(n*uint64(numProposers) + uint64(index))
}

// Decode returns the counter and proposer index that produced the epoch.
func (e Epoch) Decode(numProposers int) (n uint64, index int) {
	return uint64(e) / uint64(numProposers), int(uint64(e) % uint64(numProposers))
}

func (e Epoch) String() string {
	if e == NoEpoch {
		return "none"
	}
	return fmt.Sprintf("e%d", uint64(e))
}
