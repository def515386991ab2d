package session

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithCapacity sets the maximum number of sessions kept in memory.
// The least recently used session is evicted once it is reached.
func WithCapacity(capacity int) Option {
	return func(s *Store) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how session ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}
