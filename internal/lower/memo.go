package lower

import (
	"sync"
	"sync/atomic"

	"vela/internal/diag"
	"vela/internal/ir"
)

type ctorState uint8

const (
	stateUnvisited ctorState = iota
	stateTransforming
	stateRewritten
)

func (s ctorState) String() string {
	switch s {
	case stateTransforming:
		return "transforming"
	case stateRewritten:
		return "rewritten"
	default:
		return "unvisited"
	}
}

// ctorArtifacts are the functions that replace one secondary constructor.
type ctorArtifacts struct {
	Init    *ir.Function
	Factory *ir.Function
}

type memoEntry struct {
	state ctorState
	owner *visit
	art   ctorArtifacts
}

// visit identifies one walker. A walker that meets its own unfinished
// entry has recursed into the constructor it is building.
type visit struct{ id uint64 }

var visitSeq atomic.Uint64

func newVisit() *visit { return &visit{id: visitSeq.Add(1)} }

// memo holds one artifact pair per constructor. Other walkers wait while a
// pair is being built.
type memo struct {
	mu      sync.Mutex
	cond    *sync.Cond
	entries map[*ir.Constructor]*memoEntry
}

func newMemo() *memo {
	m := &memo{entries: make(map[*ir.Constructor]*memoEntry)}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// acquire returns the finished pair for ctor, or claims ctor for v and
// reports build=true. The claimant must call publish or abandon.
func (m *memo) acquire(ctor *ir.Constructor, v *visit) (art ctorArtifacts, build bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[ctor]
	if e == nil {
		e = &memoEntry{}
		m.entries[ctor] = e
	}
	for {
		switch e.state {
		case stateRewritten:
			return e.art, false
		case stateUnvisited:
			e.state, e.owner = stateTransforming, v
			return ctorArtifacts{}, true
		case stateTransforming:
			if e.owner == v {
				fail(diag.InternalDuplicateSynthesis, ctor.Span,
					"constructor of %s is already being lowered on this path", className(ctor))
			}
			m.cond.Wait()
		}
	}
}

func (m *memo) publish(ctor *ir.Constructor, art ctorArtifacts) {
	m.mu.Lock()
	e := m.entries[ctor]
	e.state, e.owner, e.art = stateRewritten, nil, art
	m.mu.Unlock()
	m.cond.Broadcast()
}

// abandon resets a failed claim so the memo never holds a partial pair.
func (m *memo) abandon(ctor *ir.Constructor) {
	m.mu.Lock()
	if e := m.entries[ctor]; e != nil && e.state == stateTransforming {
		e.state, e.owner = stateUnvisited, nil
	}
	m.mu.Unlock()
	m.cond.Broadcast()
}

func (m *memo) state(ctor *ir.Constructor) ctorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.entries[ctor]; e != nil {
		return e.state
	}
	return stateUnvisited
}

// lookup returns a finished pair without waiting.
func (m *memo) lookup(ctor *ir.Constructor) (ctorArtifacts, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.entries[ctor]; e != nil && e.state == stateRewritten {
		return e.art, true
	}
	return ctorArtifacts{}, false
}

func className(ctor *ir.Constructor) string {
	if cls := ctor.Class(); cls != nil {
		return cls.Name
	}
	return "<detached>"
}
