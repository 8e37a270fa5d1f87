// Package session provides the verify-or-create session collaborator
// attached to each request record.
package session

import (
	"sync"
	"time"

	"webstack/application/util/param"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// DefaultCookieName is the cookie carrying the session identifier.
const DefaultCookieName = "sid"

// Verifier resolves the session a request belongs to, creating a new
// one when the request carries no usable session cookie.
type Verifier interface {
	VerifyOrCreate(cookies param.List, remoteAddr string) *Session
}

// Session is per-client state surviving across requests. A request
// record holds it as an opaque back-reference; the store owns its
// lifetime.
type Session struct {
	id      string
	created time.Time

	mu         sync.Mutex
	lastAccess time.Time
	values     map[string]any
}

func (s *Session) ID() string         { return s.id }
func (s *Session) Created() time.Time { return s.created }

func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

func (s *Session) Value(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) SetValue(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Store is an in-memory session store. Unlike the request record it
// is shared across workers, so access is guarded.
type Store struct {
	clock clock.Clock
	ttl   time.Duration
	name  string

	mu       sync.Mutex
	sessions map[string]*Session
}

var _ Verifier = (*Store)(nil)

type StoreOptions struct {
	// TTL expires sessions idle for longer. Zero means no expiry.
	TTL time.Duration

	// CookieName overrides [DefaultCookieName].
	CookieName string
}

func NewStore(clock clock.Clock, opts StoreOptions) *Store {
	name := opts.CookieName
	if name == "" {
		name = DefaultCookieName
	}

	return &Store{
		clock:    clock,
		ttl:      opts.TTL,
		name:     name,
		sessions: make(map[string]*Session),
	}
}

// CookieName is the cookie the store keys sessions by.
func (st *Store) CookieName() string { return st.name }

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// VerifyOrCreate returns the live session named by the request's
// session cookie, or a fresh one when the cookie is absent, unknown
// or expired. Resolving a session counts as access.
func (st *Store) VerifyOrCreate(cookies param.List, remoteAddr string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.clock.Now()

	if id, ok := cookies.Lookup(st.name); ok {
		if s, ok := st.sessions[id]; ok {
			if st.touch(s, now) {
				return s
			}
			delete(st.sessions, id)
		}
	}

	s := &Session{
		id:         uuid.NewString(),
		created:    now,
		lastAccess: now,
		values:     make(map[string]any),
	}
	st.sessions[s.id] = s

	return s
}

// touch refreshes the session's last access time, reporting false if
// it already sat idle past the TTL.
func (st *Store) touch(s *Session, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ttl > 0 && now.Sub(s.lastAccess) > st.ttl {
		return false
	}

	s.lastAccess = now
	return true
}
