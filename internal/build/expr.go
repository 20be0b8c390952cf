package build

import (
	"fmt"

	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/syntax"
	"vela/internal/types"
)

var literalKinds = map[syntax.ExprKind]ir.LiteralKind{
	syntax.ExprInt:    ir.LiteralInt,
	syntax.ExprLong:   ir.LiteralLong,
	syntax.ExprDouble: ir.LiteralDouble,
	syntax.ExprBool:   ir.LiteralBool,
	syntax.ExprString: ir.LiteralString,
	syntax.ExprNull:   ir.LiteralNull,
}

func (b *builder) literalType(kind ir.LiteralKind) types.TypeID {
	bt := b.types.Builtins()
	switch kind {
	case ir.LiteralInt:
		return bt.Int
	case ir.LiteralLong:
		return bt.Long
	case ir.LiteralDouble:
		return bt.Double
	case ir.LiteralBool:
		return bt.Bool
	case ir.LiteralString:
		return bt.String
	default:
		return b.types.MakeNullable(bt.Nothing)
	}
}

// expr builds e in the current scope. Unresolvable parts are reported and
// typed as errors so the tree keeps its shape.
func (b *builder) expr(ctx *bodyCtx, e *syntax.Expr) *ir.Expr {
	if e == nil {
		return nil
	}
	if kind, ok := literalKinds[e.Kind]; ok {
		width := len(e.Value)
		if kind == ir.LiteralNull {
			width = len("null")
		}
		return &ir.Expr{
			Kind: ir.ExprLiteral,
			Type: b.literalType(kind),
			Span: ctx.span(e.Pos, width),
			Data: &ir.LiteralData{Kind: kind, Value: e.Value},
		}
	}
	switch e.Kind {
	case syntax.ExprRef:
		span := ctx.span(e.Pos, len(e.Name))
		id := b.resolveValue(ctx, e.Name, span)
		return &ir.Expr{Kind: ir.ExprGetValue, Type: b.typeOf(id), Span: span, Data: &ir.GetValueData{Name: e.Name, Symbol: id}}
	case syntax.ExprThis:
		return b.this(ctx, ctx.span(e.Pos, len("this")))
	case syntax.ExprField:
		return b.field(ctx, e)
	case syntax.ExprCall:
		return b.call(ctx, e)
	case syntax.ExprNew:
		return b.newExpr(ctx, e)
	case syntax.ExprSpread:
		span := ctx.span(e.Pos, 1)
		diag.ReportError(b.reporter, diag.SemaSpreadOutsideArguments, span, "spread operator is only allowed in an argument list").Emit()
		return b.expr(ctx, e.Operand)
	case syntax.ExprBinary:
		return b.binary(ctx, e)
	case syntax.ExprDelegateThis, syntax.ExprDelegateSuper:
		span := ctx.span(e.Pos, 4)
		diag.ReportError(b.reporter, diag.SynUnexpectedMember, span, "delegating call outside of a constructor header").Emit()
		return nil
	}
	return nil
}

func (b *builder) typeOf(id symbols.SymbolID) types.TypeID {
	sym := b.sym(id)
	if sym == nil || sym.Type == types.NoTypeID {
		return b.types.Builtins().Error
	}
	return sym.Type
}

// resolveValue finds the variable, parameter or property name. Inherited
// members of the enclosing class are consulted after the lexical chain.
func (b *builder) resolveValue(ctx *bodyCtx, name string, span source.Span) symbols.SymbolID {
	nameID := b.intern(name)
	res := b.table.Lookup(b.resolver.CurrentScope(), nameID, symbols.KindMaskValue)
	if !res.Found() && ctx.class != nil {
		res = b.table.LookupMember(ctx.class.Symbol, nameID, symbols.KindMaskValue)
	}
	if !res.Found() {
		diag.ReportError(b.reporter, diag.SemaUnresolvedReference, span,
			fmt.Sprintf("unresolved reference '%s'", name)).WithArgs(name).Emit()
		return symbols.NoSymbolID
	}
	if res.Ambiguous {
		b.reportAmbiguous(name, res, span)
	}
	return res.First()
}

func (b *builder) this(ctx *bodyCtx, span source.Span) *ir.Expr {
	res := b.table.Lookup(b.resolver.CurrentScope(), b.intern("this"), symbols.SymbolReceiver.Mask())
	if !res.Found() {
		diag.ReportError(b.reporter, diag.SemaThisOutsideClass, span, "'this' is not defined in this context").Emit()
	}
	id := res.First()
	return &ir.Expr{Kind: ir.ExprGetValue, Type: b.typeOf(id), Span: span, Data: &ir.GetValueData{Name: "this", Symbol: id}}
}

// classSymbolOf returns the class symbol behind a (possibly nullable) type.
func (b *builder) classSymbolOf(t types.TypeID) symbols.SymbolID {
	info, ok := b.types.ClassInfo(b.types.MakeNotNull(t))
	if !ok {
		return symbols.NoSymbolID
	}
	id, _ := b.table.ClassByFQName(info.FQName)
	return id
}

func (b *builder) field(ctx *bodyCtx, e *syntax.Expr) *ir.Expr {
	span := ctx.span(e.Pos, len(e.Name))
	recv := b.expr(ctx, e.Receiver)
	data := &ir.GetFieldData{Receiver: recv, Name: e.Name}
	out := &ir.Expr{Kind: ir.ExprGetField, Span: span, Data: data}
	var res symbols.LookupResult
	if recv != nil {
		if cls := b.classSymbolOf(recv.Type); cls.IsValid() {
			res = b.table.LookupMember(cls, b.intern(e.Name), symbols.KindMaskValue)
		}
	}
	if !res.Found() {
		if recv == nil || !b.types.IsError(recv.Type) {
			diag.ReportError(b.reporter, diag.SemaUnresolvedReference, span,
				fmt.Sprintf("unresolved member '%s'", e.Name)).WithArgs(e.Name).Emit()
		}
		out.Type = b.types.Builtins().Error
		return out
	}
	data.Field = res.First()
	out.Type = b.typeOf(data.Field)
	return out
}

func (b *builder) binary(ctx *bodyCtx, e *syntax.Expr) *ir.Expr {
	left := b.expr(ctx, e.Left)
	right := b.expr(ctx, e.Right)
	if left == nil || right == nil {
		return nil
	}
	bt := b.types.Builtins()
	var t types.TypeID
	switch e.Op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		t = bt.Bool
	case "+":
		t = left.Type
		if left.Type == bt.String || right.Type == bt.String {
			t = bt.String
		}
	default:
		t = left.Type
	}
	return &ir.Expr{
		Kind: ir.ExprBinary,
		Type: t,
		Span: left.Span.Cover(right.Span),
		Data: &ir.BinaryData{Op: e.Op, Left: left, Right: right},
	}
}
