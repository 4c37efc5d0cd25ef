package synod

import (
	"errors"
	"fmt"
)

// ErrProtocolViolation indicates a programming defect: a process returned an
// effect the runtime does not understand, addressed an unknown process, or
// received a reply from a process outside its acceptor set.
var ErrProtocolViolation = errors.New("protocol violation")

// Violation returns an error wrapping ErrProtocolViolation for process id.
func Violation(id ID, format string, args ...any) error {
	return fmt.Errorf("%w: process %d: %s", ErrProtocolViolation, id, fmt.Sprintf(format, args...))
}
