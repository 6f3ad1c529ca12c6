package oauth

import (
	"errors"
	"testing"
	"time"

	"eventverteiler/internal/model"
)

func TestStateRoundTrip(t *testing.T) {
	s := NewStateStore()

	id := s.Issue(model.PlatformMeetup, "/settings")
	if id == "" {
		t.Fatal("empty state id")
	}

	state, err := s.Consume(id)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if state.Platform != model.PlatformMeetup || state.RedirectPath != "/settings" {
		t.Errorf("state = %+v", state)
	}
}

func TestStateSingleUse(t *testing.T) {
	s := NewStateStore()
	id := s.Issue(model.PlatformEventbrite, "")

	if _, err := s.Consume(id); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if _, err := s.Consume(id); !errors.Is(err, ErrStateInvalid) {
		t.Errorf("second consume err = %v, want ErrStateInvalid", err)
	}
}

func TestStateUnknown(t *testing.T) {
	s := NewStateStore()
	if _, err := s.Consume("never-issued"); !errors.Is(err, ErrStateInvalid) {
		t.Errorf("err = %v, want ErrStateInvalid", err)
	}
}

func TestStateExpiry(t *testing.T) {
	now := time.Now()
	s := NewStateStore()
	s.now = func() time.Time { return now }

	id := s.Issue(model.PlatformFacebook, "")

	now = now.Add(stateTTL + time.Second)
	if _, err := s.Consume(id); !errors.Is(err, ErrStateInvalid) {
		t.Errorf("err = %v, want ErrStateInvalid after expiry", err)
	}
	// expired-consume already removed it
	if _, err := s.Consume(id); !errors.Is(err, ErrStateInvalid) {
		t.Errorf("err = %v", err)
	}
}

func TestStatePruneOnIssue(t *testing.T) {
	now := time.Now()
	s := NewStateStore()
	s.now = func() time.Time { return now }

	stale := s.Issue(model.PlatformMeetup, "")
	now = now.Add(stateTTL + time.Minute)
	s.Issue(model.PlatformSpontacts, "")

	if _, ok := s.states[stale]; ok {
		t.Error("stale state survived the prune")
	}
	if len(s.states) != 1 {
		t.Errorf("got %d states, want 1", len(s.states))
	}
}
