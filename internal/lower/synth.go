package lower

import (
	"slices"

	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/source"
	"vela/internal/symbols"
)

const (
	initSuffix    = "_init_$Init$"
	factorySuffix = "_init_$Create$"
	thisParamName = "$this"
)

// synthesize builds the initializer and the factory of ctor. cls is not
// modified; the caller swaps the constructor for the pair.
func (l *Lowerer) synthesize(ctor *ir.Constructor, cls *ir.Class) ctorArtifacts {
	if cls == nil {
		fail(diag.InternalMalformedIR, ctor.Span, "secondary constructor outside of a class")
	}
	sym := l.table.Get(ctor.Symbol)
	if sym == nil || sym.Signature == nil {
		fail(diag.InternalMalformedIR, ctor.Span, "constructor of %s has no signature", cls.Name)
	}
	init := l.declareFunction(ctor, cls, sym, cls.Name+initSuffix, true)
	factory := l.declareFunction(ctor, cls, sym, cls.Name+factorySuffix, false)
	l.initBody(ctor, init)
	l.factoryBody(cls, factory, init)
	return ctorArtifacts{Init: init, Factory: factory}
}

// declareFunction creates the shell shared by both artifacts: the class
// type parameters, copies of the constructor parameters and, for the
// initializer, the trailing instance parameter.
func (l *Lowerer) declareFunction(ctor *ir.Constructor, cls *ir.Class, ctorSym *symbols.Symbol, name string, initializer bool) *ir.Function {
	flags, fnFlags := symbols.SymbolFlagFinal, ir.FuncFinal
	if ctor.External {
		flags |= symbols.SymbolFlagExternal
		fnFlags |= ir.FuncExternal
	}
	if ctorSym.Flags.Has(symbols.SymbolFlagInline) {
		flags |= symbols.SymbolFlagInline
		fnFlags |= ir.FuncInline
	}
	fn := &ir.Function{
		Name:   name,
		Span:   ctor.Span,
		Flags:  fnFlags,
		Result: cls.Type,
	}
	sym := symbols.Symbol{
		Kind:  symbols.SymbolFunction,
		Owner: cls.Symbol,
		Span:  ctor.Span,
		Type:  cls.Type,
	}
	if initializer {
		fn.Visibility, fn.Origin, fn.Role = symbols.VisInternal, ir.OriginSynthesized, ir.RoleInitializer
		flags |= symbols.SymbolFlagSynthesized
	} else {
		fn.Visibility, fn.Origin, fn.Role = ctor.Visibility, ir.OriginSource, ir.RoleFactory
		fn.Annotations = slices.Clone(ctor.Annotations)
		sym.Annotations = slices.Clone(ctorSym.Annotations)
	}
	sym.Flags, sym.Visibility = flags, fn.Visibility
	if clsSym := l.table.Get(cls.Symbol); clsSym != nil && clsSym.FQName != "" {
		sym.FQName = clsSym.FQName + "." + name
	}

	sig := &symbols.Signature{
		Params:     slices.Clone(ctorSym.Signature.Params),
		ParamNames: slices.Clone(ctorSym.Signature.ParamNames),
		Vararg:     ctorSym.Signature.Vararg,
		Defaults:   slices.Clone(ctorSym.Signature.Defaults),
		Result:     cls.Type,
	}
	fn.TypeParams = copyTypeParams(cls.TypeParams)
	for _, tp := range fn.TypeParams {
		sig.TypeParams = append(sig.TypeParams, tp.Type)
	}
	sym.Signature = sig
	fn.Symbol = l.declare(cls.Scope, name, sym)
	fn.Scope = l.newScope(cls.Scope, fn.Symbol, ctor.Span)

	remap := ir.NewRemap()
	for _, p := range ctor.Params {
		np := &ir.ValueParam{
			Name:     p.Name,
			Span:     p.Span,
			Type:     p.Type,
			ElemType: p.ElemType,
			TypeRef:  ir.CopyTypeRef(p.TypeRef),
			Vararg:   p.Vararg,
		}
		var pflags symbols.SymbolFlags
		if old := l.table.Get(p.Symbol); old != nil {
			pflags = old.Flags
		}
		np.Symbol = l.declare(fn.Scope, p.Name, symbols.Symbol{
			Kind:  symbols.SymbolParam,
			Owner: fn.Symbol,
			Span:  p.Span,
			Flags: pflags,
			Type:  p.Type,
		})
		remap.Map(p.Symbol, np.Symbol)
		fn.Params = append(fn.Params, np)
	}
	for i, p := range ctor.Params {
		fn.Params[i].Default = ir.CopyExpr(p.Default, remap)
	}
	if initializer {
		this := &ir.ValueParam{Name: thisParamName, Span: ctor.Span, Type: cls.Type, ElemType: cls.Type}
		this.Symbol = l.declare(fn.Scope, thisParamName, symbols.Symbol{
			Kind:  symbols.SymbolParam,
			Owner: fn.Symbol,
			Span:  ctor.Span,
			Flags: symbols.SymbolFlagSynthesized,
			Type:  cls.Type,
		})
		fn.Params = append(fn.Params, this)
		fn.This = this
		sig.Params = append(sig.Params, cls.Type)
		sig.ParamNames = append(sig.ParamNames, thisParamName)
		sig.Defaults = append(sig.Defaults, false)
	}
	return fn
}

// initBody copies the constructor body into init. Parameters and the
// receiver become the initializer's own, and returns from the constructor
// return the instance.
func (l *Lowerer) initBody(ctor *ir.Constructor, init *ir.Function) {
	remap := ir.NewRemap()
	for i, p := range ctor.Params {
		remap.Map(p.Symbol, init.Params[i].Symbol)
	}
	if ctor.Receiver.IsValid() {
		remap.Map(ctor.Receiver, init.This.Symbol)
	}
	remap.Map(ctor.Symbol, init.Symbol)

	body := &ir.Block{Span: ctor.Span, Scope: l.newBlockScope(init.Scope, init.Symbol, ctor.Span)}
	if ctor.Delegation != nil {
		call := ir.CopyExpr(ctor.Delegation, remap)
		body.Stmts = append(body.Stmts, exprStmt(call))
	}
	if ctor.Body != nil {
		if ctor.Body.Scope.IsValid() {
			remap.MapScope(ctor.Body.Scope, body.Scope)
		}
		l.remapLocals(ctor.Body.Stmts, body.Scope, init.Symbol, remap)
		copied := ir.CopyBlock(ctor.Body, remap)
		body.Stmts = append(body.Stmts, copied.Stmts...)
	}
	ir.Walk(body, func(n ir.Node) bool {
		st, ok := n.(*ir.Stmt)
		if !ok {
			return true
		}
		if ret, isReturn := st.Data.(*ir.ReturnData); isReturn && ret.Target == init.Symbol && ret.Value == nil {
			ret.Value = getValue(init.This, st.Span)
		}
		return true
	})
	body.Stmts = append(body.Stmts, returnStmt(init.Symbol, getValue(init.This, ctor.Span), ctor.Span))
	init.Body = body
}

// remapLocals gives every local of stmts a fresh symbol in scope, owned by
// owner, and every nested block a fresh scope below it.
func (l *Lowerer) remapLocals(stmts []*ir.Stmt, scope symbols.ScopeID, owner symbols.SymbolID, remap *ir.Remap) {
	nested := func(b *ir.Block) {
		if b == nil {
			return
		}
		inner := l.newBlockScope(scope, owner, b.Span)
		if b.Scope.IsValid() {
			remap.MapScope(b.Scope, inner)
		}
		l.remapLocals(b.Stmts, inner, owner, remap)
	}
	for _, st := range stmts {
		switch data := st.Data.(type) {
		case *ir.VarData:
			if id, ok := l.redeclare(data.Symbol, scope, owner); ok {
				remap.Map(data.Symbol, id)
			}
		case *ir.IfData:
			nested(data.Then)
			nested(data.Else)
		case *ir.BlockData:
			nested(data.Block)
		}
	}
}

// factoryBody allocates an instance and hands it to init. Throwables also
// capture their stack with the factory frame dropped:
//
//	val tmp = init(args..., create())
//	captureStack(tmp, factory)
//	return tmp
func (l *Lowerer) factoryBody(cls *ir.Class, factory, init *ir.Function) {
	span := factory.Span
	args := make([]*ir.Expr, 0, len(factory.Params)+1)
	for _, p := range factory.Params {
		args = append(args, forward(p))
	}
	args = append(args, &ir.Expr{
		Kind: ir.ExprCreateObject,
		Type: cls.Type,
		Span: span,
		Data: &ir.CreateObjectData{Class: cls.Type},
	})
	var typeArgs []*ir.TypeRef
	for _, tp := range factory.TypeParams {
		typeArgs = append(typeArgs, &ir.TypeRef{Name: tp.Name, Type: tp.Type, Role: ir.RefTypeArgument, Span: tp.Span})
	}
	call := &ir.Expr{
		Kind: ir.ExprCall,
		Type: cls.Type,
		Span: span,
		Data: &ir.CallData{Name: init.Name, Callee: init.Symbol, Args: args, TypeArgs: typeArgs},
	}

	body := &ir.Block{Span: span, Scope: factory.Scope}
	if !l.types.IsThrowable(cls.Type) {
		body.Stmts = []*ir.Stmt{returnStmt(factory.Symbol, call, span)}
		factory.Body = body
		return
	}
	tmp := l.declare(factory.Scope, "tmp", symbols.Symbol{
		Kind:  symbols.SymbolVariable,
		Owner: factory.Symbol,
		Span:  span,
		Flags: symbols.SymbolFlagSynthesized,
		Type:  cls.Type,
	})
	readTmp := func() *ir.Expr {
		return &ir.Expr{Kind: ir.ExprGetValue, Type: cls.Type, Span: span, Data: &ir.GetValueData{Name: "tmp", Symbol: tmp}}
	}
	body.Stmts = []*ir.Stmt{
		{Kind: ir.StmtVar, Span: span, Data: &ir.VarData{Name: "tmp", Symbol: tmp, Type: cls.Type, Value: call}},
		exprStmt(&ir.Expr{
			Kind: ir.ExprCaptureStack,
			Type: l.types.Builtins().Unit,
			Span: span,
			Data: &ir.CaptureStackData{Instance: readTmp(), Function: factory.Symbol},
		}),
		returnStmt(factory.Symbol, readTmp(), span),
	}
	factory.Body = body
}

func (l *Lowerer) declare(scope symbols.ScopeID, name string, sym symbols.Symbol) symbols.SymbolID {
	l.tableMu.Lock()
	defer l.tableMu.Unlock()
	sym.Name = l.table.Strings.Intern(name)
	return l.table.Add(scope, sym)
}

// redeclare copies the symbol old into scope under a new owner.
func (l *Lowerer) redeclare(old symbols.SymbolID, scope symbols.ScopeID, owner symbols.SymbolID) (symbols.SymbolID, bool) {
	l.tableMu.Lock()
	defer l.tableMu.Unlock()
	sym := l.table.Get(old)
	if sym == nil {
		return symbols.NoSymbolID, false
	}
	local := *sym
	local.Owner = owner
	return l.table.Add(scope, local), true
}

func (l *Lowerer) newScope(parent symbols.ScopeID, owner symbols.SymbolID, span source.Span) symbols.ScopeID {
	l.tableMu.Lock()
	defer l.tableMu.Unlock()
	return l.table.Scopes.New(symbols.ScopeFunction, parent, owner, span)
}

func (l *Lowerer) newBlockScope(parent symbols.ScopeID, owner symbols.SymbolID, span source.Span) symbols.ScopeID {
	l.tableMu.Lock()
	defer l.tableMu.Unlock()
	return l.table.Scopes.New(symbols.ScopeBlock, parent, owner, span)
}

func copyTypeParams(in []*ir.TypeParam) []*ir.TypeParam {
	if len(in) == 0 {
		return nil
	}
	out := make([]*ir.TypeParam, len(in))
	for i, tp := range in {
		cp := &ir.TypeParam{Name: tp.Name, Type: tp.Type, Span: tp.Span}
		for _, b := range tp.Bounds {
			cp.Bounds = append(cp.Bounds, ir.CopyTypeRef(b))
		}
		out[i] = cp
	}
	return out
}

func getValue(p *ir.ValueParam, sp source.Span) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprGetValue, Type: p.Type, Span: sp, Data: &ir.GetValueData{Name: p.Name, Symbol: p.Symbol}}
}

// forward passes a parameter on unchanged. A vararg array is re-spread
// with a compiler spread so it is not copied or checked again.
func forward(p *ir.ValueParam) *ir.Expr {
	v := getValue(p, p.Span)
	if !p.Vararg {
		return v
	}
	spread := &ir.Expr{Kind: ir.ExprSpread, Type: p.Type, Span: p.Span, Data: &ir.SpreadData{Value: v, Fake: true}}
	return &ir.Expr{Kind: ir.ExprVararg, Type: p.Type, Span: p.Span, Data: &ir.VarargData{Elems: []*ir.Expr{spread}}}
}

func exprStmt(e *ir.Expr) *ir.Stmt {
	return &ir.Stmt{Kind: ir.StmtExpr, Span: e.Span, Data: &ir.ExprStmtData{Expr: e}}
}

func returnStmt(target symbols.SymbolID, value *ir.Expr, sp source.Span) *ir.Stmt {
	return &ir.Stmt{Kind: ir.StmtReturn, Span: sp, Data: &ir.ReturnData{Value: value, Target: target}}
}
