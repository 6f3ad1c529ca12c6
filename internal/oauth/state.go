package oauth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventverteiler/internal/model"
)

var ErrStateInvalid = errors.New("oauth state invalid or expired")

// stateTTL bounds how long an authorization round-trip may take.
const stateTTL = 10 * time.Minute

type State struct {
	Platform     model.Platform
	RedirectPath string
	IssuedAt     time.Time
}

// StateStore tracks pending OAuth authorization states. Expiry is checked
// on lookup; stale entries are pruned opportunistically on Issue instead of
// by timers.
type StateStore struct {
	mu     sync.Mutex
	states map[string]State
	ttl    time.Duration
	now    func() time.Time
}

func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[string]State),
		ttl:    stateTTL,
		now:    time.Now,
	}
}

// Issue registers a new state token for the platform and returns its opaque
// id, to be echoed back by the platform's callback.
func (s *StateStore) Issue(p model.Platform, redirectPath string) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.states[id] = State{
		Platform:     p,
		RedirectPath: redirectPath,
		IssuedAt:     s.now(),
	}
	return id
}

// Consume validates and removes the state in one step; a state token is
// single-use.
func (s *StateStore) Consume(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[id]
	if !ok {
		return State{}, ErrStateInvalid
	}
	delete(s.states, id)
	if s.now().Sub(state.IssuedAt) > s.ttl {
		return State{}, ErrStateInvalid
	}
	return state, nil
}

func (s *StateStore) prune() {
	cutoff := s.now().Add(-s.ttl)
	for id, state := range s.states {
		if state.IssuedAt.Before(cutoff) {
			delete(s.states, id)
		}
	}
}
