package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	// ErrStaleReference is returned when a reference outlived the session
	// generation it was created under.
	ErrStaleReference = errors.New("stale reference")
	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// Token identifies one generation of one session.
type Token struct {
	id  uuid.UUID
	gen uint64
}

// NoToken is the zero token; it is never valid.
var NoToken Token

func (t Token) IsZero() bool { return t == NoToken }

func (t Token) String() string {
	if t.IsZero() {
		return "<none>"
	}
	return fmt.Sprintf("%s#%d", t.id, t.gen)
}

// Options configure a new session.
type Options struct {
	Features FeatureSet
	// ES6Mode selects the alternate object model; constructor lowering is
	// bypassed entirely.
	ES6Mode bool
}

// Session is the analysis session handle.
type Session struct {
	id       uuid.UUID
	gen      atomic.Uint64
	closed   atomic.Bool
	features FeatureSet
	es6      bool

	mu     sync.Mutex
	caches map[string]resettable
}

type resettable interface{ reset() }

// Open starts a new session.
func Open(opts Options) *Session {
	s := &Session{
		id:       uuid.New(),
		features: opts.Features.Clone(),
		es6:      opts.ES6Mode,
		caches:   make(map[string]resettable),
	}
	s.gen.Store(1)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Token returns the token of the current generation.
func (s *Session) Token() Token {
	if s == nil || s.closed.Load() {
		return NoToken
	}
	return Token{id: s.id, gen: s.gen.Load()}
}

// Check reports whether tok is still valid for s.
func (s *Session) Check(tok Token) error {
	if s == nil || s.closed.Load() {
		return ErrSessionClosed
	}
	if tok.id != s.id || tok.gen != s.gen.Load() {
		return fmt.Errorf("%w: token %s, session %s#%d", ErrStaleReference, tok, s.id, s.gen.Load())
	}
	return nil
}

// Invalidate starts a new generation and drops every cache.
func (s *Session) Invalidate() {
	s.gen.Add(1)
	s.resetCaches()
}

// Close ends the session. Further Check calls fail with ErrSessionClosed.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.resetCaches()
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool { return s.closed.Load() }

// Features returns the enabled language features.
func (s *Session) Features() FeatureSet { return s.features }

// ES6Mode reports whether the alternate object model is active.
func (s *Session) ES6Mode() bool { return s.es6 }

func (s *Session) resetCaches() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.caches {
		c.reset()
	}
}

// CacheFor returns the session cache registered under name, creating it on
// first use. Using one name with two value types panics.
func CacheFor[V any](s *Session, name string) *Cache[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.caches[name]; ok {
		typed, ok := c.(*Cache[V])
		if !ok {
			panic(fmt.Sprintf("session: cache %q registered with another value type", name))
		}
		return typed
	}
	c := &Cache[V]{}
	s.caches[name] = c
	return c
}
