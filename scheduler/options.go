package scheduler

import "github.com/relab/synod"

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithChooser sets the function that picks the next process to run.
// The default is NewRandomChooser(0).
func WithChooser(c Chooser) Option {
	return func(s *Scheduler) {
		s.chooser = c
	}
}

// WithObserver adds an observer. Observers are notified in the order they were added.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observers = append(s.observers, o)
	}
}

// WithMaxTicks bounds the run. Zero means no bound.
func WithMaxTicks(ticks synod.Tick) Option {
	return func(s *Scheduler) {
		s.maxTicks = ticks
	}
}
