package build

import (
	"fmt"

	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/syntax"
)

// bodyCtx is the position of the body builder inside a declaration.
type bodyCtx struct {
	f     *fileState
	class *ir.Class
	// owner is the function or constructor that returns target.
	owner symbols.SymbolID
	// at is the fallback span for nodes without a position.
	at source.Span
}

func (c *bodyCtx) span(p syntax.Pos, width int) source.Span {
	return c.f.span(p, width, c.at)
}

// buildBodies builds statements and expressions of every declaration.
func (b *builder) buildBodies(f *fileState) {
	for _, decl := range f.node.Decls {
		b.body(f, decl, nil, f.scope)
	}
}

func (b *builder) body(f *fileState, decl ir.Decl, cls *ir.Class, lexical symbols.ScopeID) {
	switch decl := decl.(type) {
	case *ir.Class:
		for _, m := range decl.Members {
			b.body(f, m, decl, decl.Scope)
		}
	case *ir.Function:
		d := b.syntaxOf[decl]
		ctx := &bodyCtx{f: f, class: cls, owner: decl.Symbol, at: decl.Span}
		b.resolver.Push(decl.Scope)
		b.paramDefaults(ctx, decl.Params, d.Params)
		if d.HasBody {
			decl.Body = b.block(ctx, d.Body, decl.Span)
		}
		b.resolver.Leave(decl.Scope)
	case *ir.Constructor:
		b.constructorBody(f, decl, cls)
	case *ir.Property:
		b.propertyInit(f, decl, cls, lexical)
	}
}

func (b *builder) constructorBody(f *fileState, ctor *ir.Constructor, cls *ir.Class) {
	d := b.syntaxOf[ctor]
	if d == nil {
		return
	}
	ctx := &bodyCtx{f: f, class: cls, owner: ctor.Symbol, at: ctor.Span}
	b.resolver.Push(ctor.Scope)
	b.paramDefaults(ctx, ctor.Params, d.Params)
	if d.Delegate != nil {
		ctor.Delegation = b.delegation(ctx, ctor, d.Delegate)
	}
	if d.HasBody {
		ctor.Body = b.block(ctx, d.Body, ctor.Span)
	}
	b.resolver.Leave(ctor.Scope)
}

func (b *builder) propertyInit(f *fileState, prop *ir.Property, cls *ir.Class, lexical symbols.ScopeID) {
	d := b.syntaxOf[prop]
	if d.Init != nil {
		ctx := &bodyCtx{f: f, class: cls, owner: prop.Symbol, at: prop.Span}
		b.resolver.Push(lexical)
		prop.Init = b.expr(ctx, d.Init)
		b.resolver.Leave(lexical)
	}
	if prop.TypeRef != nil {
		return
	}
	switch {
	case prop.Init != nil:
		prop.Type = prop.Init.Type
	default:
		diag.ReportError(b.reporter, diag.SemaUnresolvedType, prop.Span,
			fmt.Sprintf("property '%s' needs a type or an initializer", prop.Name)).WithArgs(prop.Name).Emit()
		prop.Type = b.types.Builtins().Error
	}
	b.sym(prop.Symbol).Type = prop.Type
}

func (b *builder) paramDefaults(ctx *bodyCtx, params []*ir.ValueParam, in []*syntax.Param) {
	for i, p := range params {
		if i < len(in) && in[i].Default != nil {
			p.Default = b.expr(ctx, in[i].Default)
		}
	}
}

// block builds stmts in a fresh block scope.
func (b *builder) block(ctx *bodyCtx, stmts []*syntax.Stmt, span source.Span) *ir.Block {
	scope := b.resolver.Enter(symbols.ScopeBlock, symbols.NoSymbolID, span)
	blk := &ir.Block{Span: span, Scope: scope, Stmts: make([]*ir.Stmt, 0, len(stmts))}
	for _, s := range stmts {
		if st := b.stmt(ctx, s); st != nil {
			blk.Stmts = append(blk.Stmts, st)
		}
	}
	b.resolver.Leave(scope)
	return blk
}

func (b *builder) stmt(ctx *bodyCtx, s *syntax.Stmt) *ir.Stmt {
	span := ctx.span(s.Pos, len(s.Kind.String()))
	switch s.Kind {
	case syntax.StmtVar:
		return b.varStmt(ctx, s, span)
	case syntax.StmtExpr:
		e := b.expr(ctx, s.Expr)
		if e == nil {
			return nil
		}
		return &ir.Stmt{Kind: ir.StmtExpr, Span: span, Data: &ir.ExprStmtData{Expr: e}}
	case syntax.StmtAssign:
		target := b.expr(ctx, s.Target)
		value := b.expr(ctx, s.Value)
		if target == nil || value == nil {
			return nil
		}
		if target.Kind != ir.ExprGetValue && target.Kind != ir.ExprGetField {
			diag.ReportError(b.reporter, diag.SemaTypeMismatch, target.Span, "left side of an assignment must be a variable or a property").Emit()
		}
		return &ir.Stmt{Kind: ir.StmtAssign, Span: span, Data: &ir.AssignData{Target: target, Value: value}}
	case syntax.StmtReturn:
		return &ir.Stmt{Kind: ir.StmtReturn, Span: span, Data: &ir.ReturnData{Value: b.expr(ctx, s.Value), Target: ctx.owner}}
	case syntax.StmtIf:
		cond := b.expr(ctx, s.Cond)
		if cond == nil {
			return nil
		}
		data := &ir.IfData{Cond: cond, Then: b.block(ctx, s.Then, span)}
		if len(s.Else) > 0 {
			data.Else = b.block(ctx, s.Else, span)
		}
		return &ir.Stmt{Kind: ir.StmtIf, Span: span, Data: data}
	case syntax.StmtThrow:
		value := b.expr(ctx, s.Value)
		if value == nil {
			return nil
		}
		return &ir.Stmt{Kind: ir.StmtThrow, Span: span, Data: &ir.ThrowData{Value: value}}
	case syntax.StmtBlock:
		return &ir.Stmt{Kind: ir.StmtBlock, Span: span, Data: &ir.BlockData{Block: b.block(ctx, s.Body, span)}}
	}
	return nil
}

func (b *builder) varStmt(ctx *bodyCtx, s *syntax.Stmt, span source.Span) *ir.Stmt {
	data := &ir.VarData{Name: s.Name, Mutable: s.Mutable, Value: b.expr(ctx, s.Value)}
	switch {
	case s.Type != nil:
		data.TypeRef = b.typeRef(ctx.f, b.resolver.CurrentScope(), s.Type, ir.RefVariable, span)
		data.Type = data.TypeRef.Type
	case data.Value != nil:
		data.Type = data.Value.Type
	default:
		diag.ReportError(b.reporter, diag.SemaUnresolvedType, span,
			fmt.Sprintf("variable '%s' needs a type or an initializer", s.Name)).WithArgs(s.Name).Emit()
		data.Type = b.types.Builtins().Error
	}
	flags := symbols.SymbolFlags(0)
	if s.Mutable {
		flags |= symbols.SymbolFlagMutable
	}
	// declared after the initializer so `val x = x` sees the outer x
	data.Symbol, _ = b.resolver.Declare(symbols.Symbol{
		Name:  b.intern(s.Name),
		Kind:  symbols.SymbolVariable,
		Owner: ctx.owner,
		Span:  span,
		Flags: flags,
		Type:  data.Type,
	})
	return &ir.Stmt{Kind: ir.StmtVar, Span: span, Data: data}
}
