package source

import (
	"slices"
	"sync"

	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Strings is the lookup surface shared by Interner and SharedInterner.
type Strings interface {
	Intern(s string) StringID
	Lookup(id StringID) (string, bool)
	MustLookup(id StringID) string
}

// Interner maps identifiers to dense ids. It is not goroutine-safe; each
// unit owns one unless it shares a SharedInterner.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern returns the id of s, inserting it when new. Identifiers are NFC
// normalized so that visually identical names compare equal.
func (i *Interner) Intern(s string) StringID {
	s = norm.NFC.String(s)
	if id, ok := i.index[s]; ok {
		return id
	}
	cpy := string([]byte(s))
	id := StringID(len(i.byID)) //nolint:gosec // interner size is bounded by source size
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Lookup returns the string for id.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics on an unknown id.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// Find returns the id of s without inserting it.
func (i *Interner) Find(s string) (StringID, bool) {
	id, ok := i.index[norm.NFC.String(s)]
	return id, ok
}

func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of all interned strings indexed by id.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}

// SharedInterner is the session-wide interner: concurrent readers, writers
// serialized. Ids are never reassigned once handed out.
type SharedInterner struct {
	mu sync.RWMutex
	in *Interner
}

func NewSharedInterner() *SharedInterner {
	return &SharedInterner{in: NewInterner()}
}

func (s *SharedInterner) Intern(str string) StringID {
	s.mu.RLock()
	id, ok := s.in.Find(str)
	s.mu.RUnlock()
	if ok {
		return id
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.in.Intern(str)
}

func (s *SharedInterner) Lookup(id StringID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.in.Lookup(id)
}

func (s *SharedInterner) MustLookup(id StringID) string {
	str, ok := s.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return str
}

func (s *SharedInterner) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.in.Len()
}
