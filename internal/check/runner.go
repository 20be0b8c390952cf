package check

import (
	"context"
	"errors"
	"fmt"

	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/session"
	"vela/internal/symbols"
	"vela/internal/trace"
)

// ErrNoModule is returned when Run is given nothing to check.
var ErrNoModule = errors.New("check: no module")

// Run checks m with every rule of reg and reports to r. It fails only when
// m cannot be checked at all: a missing module or a stale session.
func Run(ctx context.Context, sess *session.Session, m *ir.Module, reg *Registry, r diag.Reporter) error {
	if m == nil || m.Symbols == nil || m.Types == nil {
		return ErrNoModule
	}
	if err := sess.Check(m.Symbols.Token()); err != nil {
		return fmt.Errorf("check %s: %w", m.Name, err)
	}
	if reg == nil {
		reg = DefaultRegistry()
	}
	if r == nil {
		r = diag.NopReporter{}
	}
	ctx, span := trace.Start(ctx, trace.ScopePass, "check")
	defer span.End(m.Name)

	w := &walker{reg: reg, c: newContext(sess, m, r)}
	for _, f := range m.Files {
		_, fileSpan := trace.Start(ctx, trace.ScopeUnit, "check_file")
		ir.WalkStack(f, w)
		fileSpan.End(f.Path)
	}
	return nil
}

type walker struct {
	reg *Registry
	c   *Context
}

func (w *walker) Enter(n ir.Node) bool {
	// A declaration is checked inside the scope that declares it; its own
	// scope applies to its children.
	for _, rule := range w.reg.Rules(ShapeOf(n)) {
		rule.Check(w.c, n)
	}
	if id := scopeOf(n); id.IsValid() {
		w.c.push(id)
	} else {
		w.c.push(w.c.Scope())
	}
	return true
}

func (w *walker) Leave(ir.Node) {
	w.c.pop()
}

func scopeOf(n ir.Node) symbols.ScopeID {
	switch n := n.(type) {
	case *ir.File:
		return n.Scope
	case *ir.Class:
		return n.Scope
	case *ir.Function:
		return n.Scope
	case *ir.Constructor:
		return n.Scope
	case *ir.Block:
		return n.Scope
	}
	return symbols.NoScopeID
}
