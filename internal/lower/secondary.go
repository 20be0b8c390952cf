package lower

import (
	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/symbols"
)

// SecondaryConstructors replaces each secondary constructor of an
// ordinary class with its initializer and factory.
type SecondaryConstructors struct {
	l *Lowerer
}

// NewSecondaryConstructors returns the declaration transformer of l.
func NewSecondaryConstructors(l *Lowerer) SecondaryConstructors {
	return SecondaryConstructors{l: l}
}

func (t SecondaryConstructors) TransformFlat(d ir.Decl) []ir.Decl {
	ctor, ok := d.(*ir.Constructor)
	if !ok || ctor.Primary || t.l.bypassed(ctor.Class()) {
		return nil
	}
	art := t.l.artifactsFor(ctor, newVisit())
	return []ir.Decl{art.Init, art.Factory}
}

// CallSiteRedirection points calls of lowered constructors at their
// replacements: `C(args)` calls the factory, and a delegating call runs
// the initializer on the instance under construction.
type CallSiteRedirection struct {
	l *Lowerer
}

// NewCallSiteRedirection returns the body lowering of l.
func NewCallSiteRedirection(l *Lowerer) CallSiteRedirection {
	return CallSiteRedirection{l: l}
}

func (r CallSiteRedirection) LowerBody(body ir.Node, container ir.Decl) {
	var callable ir.Node = container
	if p, ok := container.(*ir.ValueParam); ok {
		callable = p.ParentNode()
	}
	v := newVisit()
	ir.Walk(body, func(n ir.Node) bool {
		e, ok := n.(*ir.Expr)
		if !ok {
			return true
		}
		switch data := e.Data.(type) {
		case *ir.NewData:
			if ctor, redirect := r.l.isSecondaryCall(data.Ctor); redirect {
				factory := r.l.artifactsFor(ctor, v).Factory
				e.Kind = ir.ExprCall
				e.Data = &ir.CallData{Name: factory.Name, Callee: factory.Symbol, Args: data.Args, TypeArgs: data.TypeArgs}
			}
		case *ir.DelegatingCallData:
			if ctor, redirect := r.l.isSecondaryCall(data.Ctor); redirect {
				init := r.l.artifactsFor(ctor, v).Init
				args := append(data.Args[:len(data.Args):len(data.Args)], r.readThis(callable, e))
				e.Kind = ir.ExprCall
				e.Type = init.Result
				e.Data = &ir.CallData{Name: init.Name, Callee: init.Symbol, Args: args}
			}
		}
		return true
	})
	ir.Link(body)
}

// readThis loads the instance a delegating call initializes: the
// receiver of a constructor, or the trailing parameter of an initializer.
func (r CallSiteRedirection) readThis(callable ir.Node, call *ir.Expr) *ir.Expr {
	switch fn := callable.(type) {
	case *ir.Constructor:
		if cls := fn.Class(); cls != nil && fn.Receiver.IsValid() {
			return &ir.Expr{
				Kind: ir.ExprGetValue,
				Type: cls.Type,
				Span: call.Span,
				Data: &ir.GetValueData{Name: "this", Symbol: fn.Receiver},
			}
		}
	case *ir.Function:
		if fn.Role == ir.RoleInitializer && fn.This != nil {
			return getValue(fn.This, call.Span)
		}
	}
	fail(diag.InternalUnresolvedDelegation, call.Span,
		"delegating call to %s outside of a constructor or initializer", r.l.table.Describe(delegationTarget(call)))
	return nil
}

func delegationTarget(e *ir.Expr) symbols.SymbolID {
	if data, ok := e.Data.(*ir.DelegatingCallData); ok {
		return data.Ctor
	}
	return symbols.NoSymbolID
}
