package build

import (
	"fmt"

	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/syntax"
)

// args builds call arguments; spreads stay wrapped so the vararg grouping
// and the checkers can see them.
func (b *builder) args(ctx *bodyCtx, in []*syntax.Expr) []*ir.Expr {
	out := make([]*ir.Expr, 0, len(in))
	for _, a := range in {
		if a.Kind != syntax.ExprSpread {
			if e := b.expr(ctx, a); e != nil {
				out = append(out, e)
			}
			continue
		}
		value := b.expr(ctx, a.Operand)
		if value == nil {
			continue
		}
		span := ctx.span(a.Pos, 1)
		if a.Pos.IsZero() {
			span = value.Span
		}
		out = append(out, &ir.Expr{
			Kind: ir.ExprSpread,
			Type: value.Type,
			Span: span,
			Data: &ir.SpreadData{Value: value, Fake: a.Fake},
		})
	}
	return out
}

func (b *builder) typeArgs(ctx *bodyCtx, in []*syntax.TypeRef, span source.Span) []*ir.TypeRef {
	if len(in) == 0 {
		return nil
	}
	out := make([]*ir.TypeRef, 0, len(in))
	for _, ref := range in {
		out = append(out, b.typeRef(ctx.f, b.resolver.CurrentScope(), ref, ir.RefTypeArgument, span))
	}
	return out
}

func (b *builder) call(ctx *bodyCtx, e *syntax.Expr) *ir.Expr {
	span := ctx.span(e.Pos, len(e.Name))
	name := b.intern(e.Name)
	var recv *ir.Expr
	var res symbols.LookupResult
	if e.Receiver != nil {
		recv = b.expr(ctx, e.Receiver)
		if recv != nil {
			if cls := b.classSymbolOf(recv.Type); cls.IsValid() {
				res = b.table.LookupMember(cls, name, symbols.SymbolFunction.Mask())
			}
		}
	} else {
		res = b.table.Lookup(b.resolver.CurrentScope(), name, symbols.KindMaskCallable)
		if !res.Found() && ctx.class != nil {
			res = b.table.LookupMember(ctx.class.Symbol, name, symbols.KindMaskCallable)
		}
	}
	args := b.args(ctx, e.Args)
	typeArgs := b.typeArgs(ctx, e.TypeArgs, span)

	var fns []symbols.SymbolID
	class := symbols.NoSymbolID
	for _, id := range res.Symbols {
		switch b.sym(id).Kind {
		case symbols.SymbolFunction:
			fns = append(fns, id)
		case symbols.SymbolClass:
			if !class.IsValid() {
				class = id
			}
		}
	}
	if len(fns) == 0 && class.IsValid() && recv == nil {
		return b.construct(class, args, typeArgs, span)
	}
	data := &ir.CallData{Name: e.Name, Receiver: recv, Args: args, TypeArgs: typeArgs}
	out := &ir.Expr{Kind: ir.ExprCall, Span: span, Data: data}
	if len(fns) == 0 {
		if recv == nil || !b.types.IsError(recv.Type) {
			diag.ReportError(b.reporter, diag.SemaUnresolvedReference, span,
				fmt.Sprintf("unresolved function '%s'", e.Name)).WithArgs(e.Name).Emit()
		}
		out.Type = b.types.Builtins().Error
		return out
	}
	data.Callee = b.selectCallee(fns, args, e.Name, span, false)
	sig := b.signatureOf(data.Callee)
	data.Args = b.groupArgs(sig, args, span)
	out.Type = b.types.Builtins().Error
	if sig != nil {
		out.Type = sig.Result
	}
	return out
}

func (b *builder) newExpr(ctx *bodyCtx, e *syntax.Expr) *ir.Expr {
	span := ctx.span(e.Pos, len(e.Name))
	args := b.args(ctx, e.Args)
	typeArgs := b.typeArgs(ctx, e.TypeArgs, span)
	id := b.classifier(b.resolver.CurrentScope(), e.Name, span)
	if id.IsValid() && b.sym(id).Kind != symbols.SymbolClass {
		diag.ReportError(b.reporter, diag.SemaNoMatchingConstructor, span,
			fmt.Sprintf("'%s' is not a class and cannot be instantiated", e.Name)).WithArgs(e.Name).Emit()
		id = symbols.NoSymbolID
	}
	if !id.IsValid() {
		errType := b.types.Builtins().Error
		return &ir.Expr{Kind: ir.ExprNew, Type: errType, Span: span, Data: &ir.NewData{Class: errType, Args: args, TypeArgs: typeArgs}}
	}
	return b.construct(id, args, typeArgs, span)
}

// construct binds a constructor call of class.
func (b *builder) construct(class symbols.SymbolID, args []*ir.Expr, typeArgs []*ir.TypeRef, span source.Span) *ir.Expr {
	classType := b.sym(class).Type
	ctor := b.selectCallee(b.table.Constructors(class), args, b.table.Name(class), span, true)
	return &ir.Expr{
		Kind: ir.ExprNew,
		Type: classType,
		Span: span,
		Data: &ir.NewData{Class: classType, Ctor: ctor, Args: b.groupArgs(b.signatureOf(ctor), args, span), TypeArgs: typeArgs},
	}
}

// delegation binds `this(...)` or `super(...)` of ctor.
func (b *builder) delegation(ctx *bodyCtx, ctor *ir.Constructor, e *syntax.Expr) *ir.Expr {
	isSuper := e.Kind == syntax.ExprDelegateSuper
	span := ctx.span(e.Pos, len("this"))
	if isSuper {
		span = ctx.span(e.Pos, len("super"))
	}
	args := b.args(ctx, e.Args)
	data := &ir.DelegatingCallData{Super: isSuper, Args: args}
	out := &ir.Expr{Kind: ir.ExprDelegatingCall, Type: b.types.Builtins().Unit, Span: span, Data: data}

	target := ctx.class.Symbol
	if isSuper {
		target = symbols.NoSymbolID
		if supers := b.sym(ctx.class.Symbol).Supers; len(supers) > 0 {
			target = supers[0]
		}
	}
	if !target.IsValid() {
		// super() of a class without a superclass calls Any's constructor
		if len(args) > 0 {
			diag.ReportError(b.reporter, diag.SemaNoMatchingConstructor, span, "Any() takes no arguments").Emit()
		}
		return out
	}
	var candidates []symbols.SymbolID
	for _, id := range b.table.Constructors(target) {
		if id != ctor.Symbol {
			candidates = append(candidates, id)
		}
	}
	data.Ctor = b.selectCallee(candidates, args, b.table.Name(target), span, true)
	data.Args = b.groupArgs(b.signatureOf(data.Ctor), args, span)
	return out
}

func (b *builder) signatureOf(id symbols.SymbolID) *symbols.Signature {
	if sym := b.sym(id); sym != nil {
		return sym.Signature
	}
	return nil
}

// selectCallee picks the overload for args: candidates that accept the
// argument count first, then those whose parameter types fit, then the
// most specific one. A single arity match is bound even when its types do
// not fit; the mismatch is a checker finding.
func (b *builder) selectCallee(candidates []symbols.SymbolID, args []*ir.Expr, name string, span source.Span, ctor bool) symbols.SymbolID {
	var byArity []symbols.SymbolID
	for _, id := range candidates {
		if sig := b.signatureOf(id); sig != nil && arityMatches(sig, args) {
			byArity = append(byArity, id)
		}
	}
	switch len(byArity) {
	case 0:
		code, what := diag.SemaUnresolvedReference, "function '"+name+"'"
		if ctor {
			code, what = diag.SemaNoMatchingConstructor, "constructor of '"+name+"'"
		}
		diag.ReportError(b.reporter, code, span,
			fmt.Sprintf("no %s accepts %d argument(s)", what, len(args))).WithArgs(name).Emit()
		return symbols.NoSymbolID
	case 1:
		return byArity[0]
	}
	var typed []symbols.SymbolID
	for _, id := range byArity {
		if b.typesMatch(b.signatureOf(id), args) {
			typed = append(typed, id)
		}
	}
	switch len(typed) {
	case 0:
		return byArity[0]
	case 1:
		return typed[0]
	}
	if best := b.mostSpecific(typed); best.IsValid() {
		return best
	}
	builder := diag.ReportError(b.reporter, diag.SemaAmbiguousCall, span,
		fmt.Sprintf("call to '%s' is ambiguous", name)).WithArgs(name)
	for _, id := range typed {
		if sym := b.sym(id); !sym.Span.IsZero() {
			builder.WithNote(sym.Span, "candidate here")
		}
	}
	builder.Emit()
	return typed[0]
}

func arityMatches(sig *symbols.Signature, args []*ir.Expr) bool {
	n := len(sig.Params)
	fixed := n
	if sig.Vararg >= 0 {
		fixed = sig.Vararg
		// parameters after a vararg can only be defaulted
		for i := sig.Vararg + 1; i < n; i++ {
			if !sig.HasDefault(i) {
				return false
			}
		}
	} else if len(args) > n {
		return false
	}
	for i := 0; i < fixed; i++ {
		if i >= len(args) {
			if !sig.HasDefault(i) {
				return false
			}
			continue
		}
		if args[i].Kind == ir.ExprSpread {
			return false
		}
	}
	return true
}

func (b *builder) typesMatch(sig *symbols.Signature, args []*ir.Expr) bool {
	for i, a := range args {
		if sig.Vararg >= 0 && i >= sig.Vararg {
			elem := sig.Params[sig.Vararg]
			if a.Kind == ir.ExprSpread {
				if !b.types.Assignable(b.types.ArrayOf(elem), b.types.MakeNotNull(a.Type)) {
					return false
				}
				continue
			}
			if !b.types.Assignable(elem, a.Type) {
				return false
			}
			continue
		}
		if !b.types.Assignable(sig.Params[i], a.Type) {
			return false
		}
	}
	return true
}

// mostSpecific returns the candidate whose parameters are all subtypes of
// every other candidate's, or NoSymbolID.
func (b *builder) mostSpecific(candidates []symbols.SymbolID) symbols.SymbolID {
	for _, c := range candidates {
		cs := b.signatureOf(c)
		best := true
		for _, o := range candidates {
			if o == c {
				continue
			}
			os := b.signatureOf(o)
			if !b.paramsNarrower(cs, os) || b.paramsNarrower(os, cs) {
				best = false
				break
			}
		}
		if best {
			return c
		}
	}
	return symbols.NoSymbolID
}

func (b *builder) paramsNarrower(a, c *symbols.Signature) bool {
	n := min(len(a.Params), len(c.Params))
	for i := 0; i < n; i++ {
		if !b.types.IsSubtype(a.Params[i], c.Params[i]) {
			return false
		}
	}
	return true
}

// groupArgs wraps the arguments passed to a vararg parameter into one
// Vararg expression.
func (b *builder) groupArgs(sig *symbols.Signature, args []*ir.Expr, span source.Span) []*ir.Expr {
	if sig == nil {
		return args
	}
	if sig.Vararg < 0 {
		for i, a := range args {
			if spread, ok := a.Data.(*ir.SpreadData); ok {
				diag.ReportError(b.reporter, diag.SemaTypeMismatch, a.Span, "spread argument passed to a parameter that is not vararg").Emit()
				args[i] = spread.Value
			}
		}
		return args
	}
	fixed := min(sig.Vararg, len(args))
	out := make([]*ir.Expr, 0, fixed+1)
	out = append(out, args[:fixed]...)
	elems := args[fixed:]
	group := &ir.Expr{
		Kind: ir.ExprVararg,
		Type: b.types.ArrayOf(sig.Params[sig.Vararg]),
		Span: span,
		Data: &ir.VarargData{Elems: elems},
	}
	if len(elems) > 0 {
		group.Span = elems[0].Span.Cover(elems[len(elems)-1].Span)
	}
	return append(out, group)
}
