package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/riskterm/pkg/metrics"
)

const defaultCapacity = 10000

// Store keeps sessions in memory, bounded by capacity. The least recently
// used session is evicted once the bound is reached.
type Store struct {
	// mu serialises Create so id collision checks and inserts are atomic.
	mu       sync.Mutex
	cache    *lru.Cache[string, *Session]
	capacity int
	now      func() time.Time
	newID    func() string
}

// NewStore creates a session store with configuration options.
func NewStore(opts ...Option) *Store {
	s := &Store{
		capacity: defaultCapacity,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	cache, err := lru.NewWithEvict[string, *Session](s.capacity, func(string, *Session) {
		metrics.RecordSessionEvicted()
	})
	if err != nil {
		// WithCapacity only accepts positive sizes.
		panic(fmt.Sprintf("session store: %v", err))
	}
	s.cache = cache
	return s
}

// Create registers a new idle session, evicting the least recently used one
// when the store is full.
func (s *Store) Create(ctx context.Context) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.cache.Contains(id) {
		id = s.newID()
	}

	sess := newSession(id, s.now)
	s.cache.Add(id, sess)
	metrics.UpdateActiveSessions(s.cache.Len())
	return sess
}

// Get returns the session with id and marks it as recently used.
func (s *Store) Get(ctx context.Context, id string) (*Session, bool) {
	return s.cache.Get(id)
}

// GetOrCreate returns the session with id, or a fresh one when id is unknown.
// The bool reports whether a new session was created.
func (s *Store) GetOrCreate(ctx context.Context, id string) (*Session, bool) {
	if id != "" {
		if sess, ok := s.Get(ctx, id); ok {
			return sess, false
		}
	}
	return s.Create(ctx), true
}

// Size returns the number of sessions held.
func (s *Store) Size() int { return s.cache.Len() }

// Capacity returns the configured bound.
func (s *Store) Capacity() int { return s.capacity }
