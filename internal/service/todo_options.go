package service

import "time"

type Option func(*TodoService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) {
		s.clock = now
	}
}
