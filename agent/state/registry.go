package state

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultSessionID is used when the caller supplies no session id.
	DefaultSessionID = "default"

	defaultMaxSessions = 1024
)

type entry struct {
	mu      sync.Mutex
	session *Session
	elem    *list.Element // position in the LRU list
}

// Registry maps session ids to live Sessions. Access to one session is
// serialized by a per-session mutex so two turns for the same id cannot
// interleave; unrelated sessions do not contend. The map is bounded: when
// capacity is exceeded the least recently used session is evicted.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	lru      *list.List // front = most recently used; values are session ids
	max      int

	defaultFlags Flags

	now func() time.Time
}

// Option configures the Registry.
type Option func(*Registry)

// WithMaxSessions bounds the registry. Values <= 0 keep the default.
func WithMaxSessions(max int) Option {
	return func(r *Registry) {
		if max > 0 {
			r.max = max
		}
	}
}

// WithDefaultFlags sets the flags new sessions start with.
func WithDefaultFlags(flags Flags) Option {
	return func(r *Registry) {
		r.defaultFlags = flags
	}
}

func withClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*entry),
		lru:      list.New(),
		max:      defaultMaxSessions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithSession runs fn with exclusive access to the session for id, creating
// the session on first use. The session must not be retained past fn.
func (r *Registry) WithSession(ctx context.Context, id string, fn func(s *Session) error) error {
	if id == "" {
		id = DefaultSessionID
	}
	e := r.resolve(id)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(e.session)
}

// Reset clears the history of an existing session. Returns whether the
// session existed. Flags are left as they are.
func (r *Registry) Reset(id string) bool {
	if id == "" {
		id = DefaultSessionID
	}

	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	e.session.ClearHistory()
	e.session.Touch(r.now())
	e.mu.Unlock()
	return true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// SetDefaultFlag flips a flag on the default flag set and on every live
// session, matching the administrative toggle semantics of the HTTP surface.
// A toggle racing an in-flight turn takes effect on that session's next turn.
func (r *Registry) SetDefaultFlag(flag Flag, enabled bool) {
	r.mu.Lock()
	r.defaultFlags.Set(flag, enabled)
	entries := make([]*entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		e.session.Flags.Set(flag, enabled)
		e.mu.Unlock()
	}
}

// DefaultFlags returns the flag set new sessions are created with.
func (r *Registry) DefaultFlags() Flags {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultFlags
}

func (r *Registry) resolve(id string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		r.lru.MoveToFront(e.elem)
		return e
	}

	e := &entry{session: NewSession(id, r.defaultFlags, r.now())}
	e.elem = r.lru.PushFront(id)
	r.sessions[id] = e

	for len(r.sessions) > r.max {
		r.evictOldest()
	}
	return e
}

// evictOldest drops the least recently used session. Caller holds r.mu.
// Eviction does not wait on the victim's lock: a turn already running on an
// evicted session finishes against its own state and is then unreachable,
// which matches the single-process, best-effort session model.
func (r *Registry) evictOldest() {
	back := r.lru.Back()
	if back == nil {
		return
	}
	id := back.Value.(string)
	r.lru.Remove(back)
	delete(r.sessions, id)
	log.Debug().Str("session_id", id).Msg("evicted least recently used session")
}
