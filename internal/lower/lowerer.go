package lower

import (
	"sync"

	"vela/internal/ir"
	"vela/internal/session"
	"vela/internal/symbols"
	"vela/internal/types"
)

// Lowerer holds what the constructor passes share while lowering one
// module.
type Lowerer struct {
	sess   *session.Session
	module *ir.Module
	table  *symbols.Table
	types  *types.Interner
	memo   *memo
	// ctors indexes every constructor of the module by symbol, including
	// the ones already replaced.
	ctors map[symbols.SymbolID]*ir.Constructor

	// tableMu serializes symbol table writes of concurrent walkers.
	tableMu sync.Mutex
}

// NewLowerer prepares to lower m.
func NewLowerer(sess *session.Session, m *ir.Module) *Lowerer {
	l := &Lowerer{
		sess:   sess,
		module: m,
		table:  m.Symbols,
		types:  m.Types,
		memo:   newMemo(),
		ctors:  make(map[symbols.SymbolID]*ir.Constructor),
	}
	m.Inspect(func(n ir.Node) bool {
		if ctor, ok := n.(*ir.Constructor); ok && ctor.Symbol.IsValid() {
			l.ctors[ctor.Symbol] = ctor
		}
		return true
	})
	return l
}

// bypassed reports whether the constructors of cls stay as they are.
func (l *Lowerer) bypassed(cls *ir.Class) bool {
	return cls == nil || cls.IsValue() || l.sess.ES6Mode()
}

// isSecondaryCall reports whether calls to ctor must be redirected. The
// default throwable constructor and library constructors have no IR and
// are never redirected.
func (l *Lowerer) isSecondaryCall(id symbols.SymbolID) (*ir.Constructor, bool) {
	ctor := l.ctors[id]
	if ctor == nil || ctor.Primary || ctor.External {
		return nil, false
	}
	return ctor, !l.bypassed(ctor.Class())
}

// Artifacts returns the initializer and factory built for ctor.
func (l *Lowerer) Artifacts(ctor *ir.Constructor) (init, factory *ir.Function, ok bool) {
	art, ok := l.memo.lookup(ctor)
	return art.Init, art.Factory, ok
}

// artifactsFor returns the pair for ctor, building it on first use.
func (l *Lowerer) artifactsFor(ctor *ir.Constructor, v *visit) ctorArtifacts {
	art, build := l.memo.acquire(ctor, v)
	if !build {
		return art
	}
	done := false
	defer func() {
		if !done {
			l.memo.abandon(ctor)
		}
	}()
	art = l.synthesize(ctor, ctor.Class())
	l.memo.publish(ctor, art)
	done = true
	return art
}
