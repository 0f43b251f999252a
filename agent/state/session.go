package state

import (
	"fmt"
	"time"

	contractx "github.com/vitalmech/assistant/agent/contract"
)

// Flag is one entry in the closed set of feature flags. Unknown names are a
// reportable condition, not a silent no-op.
type Flag string

const (
	FlagLeadCapture Flag = "lead_capture_enabled"
	FlagBooking     Flag = "booking_enabled"
	FlagQuotes      Flag = "quotes_enabled"
)

func ParseFlag(name string) (Flag, error) {
	switch Flag(name) {
	case FlagLeadCapture, FlagBooking, FlagQuotes:
		return Flag(name), nil
	}
	return "", fmt.Errorf("%w: %q", contractx.ErrUnknownFlag, name)
}

// Flags holds the toggle state for the known flag set. Lead capture is a
// standing capability and stays on regardless of what a toggle asks for.
type Flags struct {
	Booking bool `json:"booking_enabled"`
	Quotes  bool `json:"quotes_enabled"`
}

func (f Flags) Enabled(flag Flag) bool {
	switch flag {
	case FlagLeadCapture:
		return true
	case FlagBooking:
		return f.Booking
	case FlagQuotes:
		return f.Quotes
	}
	return false
}

// Set flips a flag. Setting lead_capture_enabled is accepted but ignored.
func (f *Flags) Set(flag Flag, enabled bool) {
	switch flag {
	case FlagBooking:
		f.Booking = enabled
	case FlagQuotes:
		f.Quotes = enabled
	}
}

func (f Flags) Map() map[string]bool {
	return map[string]bool{
		string(FlagLeadCapture): true,
		string(FlagBooking):     f.Booking,
		string(FlagQuotes):      f.Quotes,
	}
}

// Session is the live conversation state for one session id. The registry
// owns exactly one instance per id; the orchestrator mutates it only while
// holding the session's lock.
type Session struct {
	ID        string              `json:"session_id"`
	History   []contractx.Message `json:"history"`
	Flags     Flags               `json:"flags"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewSession(id string, flags Flags, now time.Time) *Session {
	return &Session{
		ID:        id,
		Flags:     flags,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// ClearHistory drops the transcript. Flags survive a reset.
func (s *Session) ClearHistory() {
	s.History = nil
}
