package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/cart"
)

// Store keeps session states in memory. States idle for longer than the
// TTL are dropped by Run.
type Store struct {
	deps *Deps
	ttl  time.Duration
	log  *logrus.Entry
	now  func() time.Time

	mu     sync.Mutex
	states map[string]*State
}

func NewStore(deps Deps, ttl time.Duration) *Store {
	return &Store{
		deps:   &deps,
		ttl:    ttl,
		log:    deps.Logger.WithField("component", "session_store"),
		now:    time.Now,
		states: make(map[string]*State),
	}
}

// Get returns the live state for id and marks it as used.
func (s *Store) Get(id string) (*State, bool) {
	s.mu.Lock()
	st, ok := s.states[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.ttl > 0 && now.Sub(st.idleSince()) > s.ttl {
		s.Delete(id)
		return nil, false
	}
	st.touch(now)
	return st, true
}

// GetOrCreate returns the state for id, creating it when unknown or expired.
// An unknown id is only adopted when it still has a cart snapshot, so a
// restarted gateway can restore it; any other id is replaced by a fresh one.
// created reports creation.
func (s *Store) GetOrCreate(ctx context.Context, id string) (st *State, created bool) {
	if id != "" {
		if st, ok := s.Get(id); ok {
			return st, false
		}
	}
	if !s.adoptable(ctx, id) {
		id = uuid.NewString()
	}
	st = newState(ctx, id, s.deps)

	s.mu.Lock()
	if existing, ok := s.states[id]; ok {
		s.mu.Unlock()
		return existing, false
	}
	s.states[id] = st
	n := len(s.states)
	s.mu.Unlock()
	s.log.WithField("sessions", n).Debugf("Session %s created", id)
	return st, true
}

func (s *Store) adoptable(ctx context.Context, id string) bool {
	if _, err := uuid.Parse(id); err != nil {
		return false
	}
	return cart.HasSnapshot(ctx, s.deps.Snapshots, id)
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.states, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.log.Infof("Expired %d idle sessions", n)
			}
		}
	}
}

func (s *Store) sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, st := range s.states {
		if st.idleSince().Before(cutoff) {
			delete(s.states, id)
			n++
		}
	}
	return n
}
