package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	contractx "github.com/vitalmech/assistant/agent/contract"
)

func TestWithSessionCreatesOnFirstUse(t *testing.T) {
	t.Parallel()

	r := NewRegistry(WithDefaultFlags(Flags{Booking: true}))

	err := r.WithSession(context.Background(), "s1", func(s *Session) error {
		if s.ID != "s1" {
			t.Fatalf("unexpected id: %s", s.ID)
		}
		if len(s.History) != 0 {
			t.Fatalf("expected empty history, got %d", len(s.History))
		}
		if !s.Flags.Booking {
			t.Fatal("expected default flags applied")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", r.Len())
	}
}

func TestWithSessionEmptyIDUsesDefault(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.WithSession(context.Background(), "", func(s *Session) error {
		if s.ID != DefaultSessionID {
			t.Fatalf("unexpected id: %s", s.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResetClearsHistoryOnly(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_ = r.WithSession(context.Background(), "s1", func(s *Session) error {
		s.History = append(s.History, contractx.UserText("hi"))
		s.Flags.Quotes = true
		return nil
	})

	if !r.Reset("s1") {
		t.Fatal("expected reset to find session")
	}
	if r.Reset("missing") {
		t.Fatal("expected reset of unknown session to report not found")
	}

	_ = r.WithSession(context.Background(), "s1", func(s *Session) error {
		if len(s.History) != 0 {
			t.Fatalf("expected cleared history, got %d", len(s.History))
		}
		if !s.Flags.Quotes {
			t.Fatal("expected flags to survive reset")
		}
		return nil
	})
}

func TestPerSessionSerialization(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	const workers = 32

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.WithSession(context.Background(), "shared", func(s *Session) error {
				// Non-atomic read-modify-write; loses updates unless turns
				// are serialized per session.
				history := s.History
				time.Sleep(time.Millisecond)
				s.History = append(history, contractx.UserText("m"))
				return nil
			})
		}()
	}
	wg.Wait()

	_ = r.WithSession(context.Background(), "shared", func(s *Session) error {
		if len(s.History) != workers {
			t.Fatalf("lost updates: expected %d messages, got %d", workers, len(s.History))
		}
		return nil
	})
}

func TestLRUEviction(t *testing.T) {
	t.Parallel()

	r := NewRegistry(WithMaxSessions(2))

	for _, id := range []string{"a", "b"} {
		_ = r.WithSession(context.Background(), id, func(s *Session) error { return nil })
	}

	// Touch "a" so "b" becomes the eviction candidate.
	_ = r.WithSession(context.Background(), "a", func(s *Session) error {
		s.History = append(s.History, contractx.UserText("keep me"))
		return nil
	})

	_ = r.WithSession(context.Background(), "c", func(s *Session) error { return nil })

	if r.Len() != 2 {
		t.Fatalf("expected 2 sessions after eviction, got %d", r.Len())
	}
	if r.Reset("b") {
		t.Fatal("expected b to have been evicted")
	}
	_ = r.WithSession(context.Background(), "a", func(s *Session) error {
		if len(s.History) != 1 {
			t.Fatal("expected a to survive eviction with history intact")
		}
		return nil
	})
}

func TestSetDefaultFlagBroadcasts(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_ = r.WithSession(context.Background(), "live", func(s *Session) error { return nil })

	r.SetDefaultFlag(FlagBooking, true)

	_ = r.WithSession(context.Background(), "live", func(s *Session) error {
		if !s.Flags.Booking {
			t.Fatal("expected live session to observe toggle")
		}
		return nil
	})
	_ = r.WithSession(context.Background(), "new", func(s *Session) error {
		if !s.Flags.Booking {
			t.Fatal("expected new session to inherit toggled default")
		}
		return nil
	})
}

func TestParseFlag(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"lead_capture_enabled", "booking_enabled", "quotes_enabled"} {
		if _, err := ParseFlag(name); err != nil {
			t.Fatalf("expected %s to parse: %v", name, err)
		}
	}

	_, err := ParseFlag("dark_mode")
	if !errors.Is(err, contractx.ErrUnknownFlag) {
		t.Fatalf("expected ErrUnknownFlag, got %v", err)
	}
}

func TestFlagsLeadCaptureAlwaysOn(t *testing.T) {
	t.Parallel()

	var f Flags
	if !f.Enabled(FlagLeadCapture) {
		t.Fatal("lead capture must always be enabled")
	}
	f.Set(FlagLeadCapture, false)
	if !f.Enabled(FlagLeadCapture) {
		t.Fatal("lead capture must not be toggleable")
	}
}

func TestWithSessionContextCancelled(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.WithSession(ctx, "s1", func(s *Session) error {
		return fmt.Errorf("should not run")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
