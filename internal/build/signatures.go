package build

import (
	"vela/internal/ir"
	"vela/internal/symbols"
	"vela/internal/syntax"
	"vela/internal/types"
)

// resolveSignatures types every declaration of f.
func (b *builder) resolveSignatures(f *fileState) {
	for _, decl := range f.node.Decls {
		b.signature(f, decl, f.scope)
	}
}

func (b *builder) signature(f *fileState, decl ir.Decl, lexical symbols.ScopeID) {
	switch decl := decl.(type) {
	case *ir.Class:
		b.classSignature(f, decl)
	case *ir.Function:
		b.functionSignature(f, decl, lexical)
	case *ir.Constructor:
		b.constructorSignature(f, decl, lexical)
	case *ir.Property:
		b.propertySignature(f, decl, lexical)
	}
}

func (b *builder) classSignature(f *fileState, cls *ir.Class) {
	d := b.syntaxOf[cls]
	b.typeParamBounds(f, cls.TypeParams, d.TypeParams, cls.Scope)

	var superTypes, superArgs []types.TypeID
	var superSyms []symbols.SymbolID
	for _, s := range d.Supers {
		ref := b.typeRef(f, cls.Scope, s, ir.RefSupertype, cls.Span)
		cls.Supers = append(cls.Supers, ref)
		superTypes = append(superTypes, ref.Type)
		superArgs = appendArgTypes(superArgs, ref.Args)
		if ref.Class.IsValid() {
			superSyms = append(superSyms, ref.Class)
		}
	}
	if len(superTypes) == 0 {
		superTypes = []types.TypeID{b.types.Builtins().Any}
	}
	b.types.SetSupertypes(cls.Type, superTypes)
	b.types.SetSuperTypeArgs(cls.Type, superArgs)
	b.sym(cls.Symbol).Supers = superSyms

	for _, m := range cls.Members {
		b.signature(f, m, cls.Scope)
	}
}

func appendArgTypes(out []types.TypeID, args []*ir.TypeRef) []types.TypeID {
	for _, a := range args {
		out = append(out, a.Type)
		out = appendArgTypes(out, a.Args)
	}
	return out
}

func (b *builder) typeParamBounds(f *fileState, params []*ir.TypeParam, in []*syntax.TypeParam, scope symbols.ScopeID) {
	byName := make(map[string]*syntax.TypeParam, len(in))
	for _, tp := range in {
		byName[tp.Name] = tp
	}
	for _, tp := range params {
		src := byName[tp.Name]
		if src == nil || len(src.Bounds) == 0 {
			continue
		}
		bounds := make([]types.TypeID, 0, len(src.Bounds))
		for _, bound := range src.Bounds {
			ref := b.typeRef(f, scope, bound, ir.RefTypeArgument, tp.Span)
			tp.Bounds = append(tp.Bounds, ref)
			bounds = append(bounds, ref.Type)
		}
		if info, ok := b.types.TypeParamInfo(tp.Type); ok {
			info.Bounds = bounds
		}
	}
}

// params declares value parameters in scope and fills sig.
func (b *builder) params(f *fileState, in []*syntax.Param, scope symbols.ScopeID, owner symbols.SymbolID, sig *symbols.Signature) []*ir.ValueParam {
	out := make([]*ir.ValueParam, 0, len(in))
	ownerSpan := b.sym(owner).Span
	for i, p := range in {
		span := f.span(p.Pos, len(p.Name), ownerSpan)
		ref := b.typeRef(f, scope, p.Type, ir.RefParam, span)
		vp := &ir.ValueParam{Name: p.Name, Span: span, TypeRef: ref, Vararg: p.Vararg, Type: ref.Type, ElemType: ref.Type}
		flags := symbols.SymbolFlags(0)
		if p.Vararg {
			vp.Type = b.types.ArrayOf(ref.Type)
			flags |= symbols.SymbolFlagVararg
			if sig.Vararg < 0 {
				sig.Vararg = i
			}
		}
		id, _ := b.resolver.DeclareIn(scope, symbols.Symbol{
			Name:  b.intern(p.Name),
			Kind:  symbols.SymbolParam,
			Owner: owner,
			Span:  span,
			Flags: flags,
			Type:  vp.Type,
		})
		vp.Symbol = id
		sig.Params = append(sig.Params, ref.Type)
		sig.ParamNames = append(sig.ParamNames, p.Name)
		sig.Defaults = append(sig.Defaults, p.Default != nil)
		out = append(out, vp)
	}
	return out
}

// receiver declares the implicit `this` of members of cls.
func (b *builder) receiver(scope symbols.ScopeID, cls *ir.Class, owner symbols.SymbolID) symbols.SymbolID {
	if cls == nil {
		return symbols.NoSymbolID
	}
	return b.table.Add(scope, symbols.Symbol{
		Name:  b.intern("this"),
		Kind:  symbols.SymbolReceiver,
		Owner: owner,
		Span:  cls.Span,
		Type:  cls.Type,
	})
}

func (b *builder) functionSignature(f *fileState, fn *ir.Function, lexical symbols.ScopeID) {
	d := b.syntaxOf[fn]
	fn.Scope = b.table.Scopes.New(symbols.ScopeFunction, lexical, fn.Symbol, fn.Span)
	fn.TypeParams = b.declareTypeParams(f, d.TypeParams, fn.Scope, b.table.Describe(fn.Symbol), fn.Span)
	b.typeParamBounds(f, fn.TypeParams, d.TypeParams, fn.Scope)
	if cls := b.classOfScope(lexical); cls != nil {
		b.receiver(fn.Scope, cls, fn.Symbol)
	}

	sig := &symbols.Signature{Vararg: -1}
	for _, tp := range fn.TypeParams {
		sig.TypeParams = append(sig.TypeParams, tp.Type)
	}
	fn.Params = b.params(f, d.Params, fn.Scope, fn.Symbol, sig)
	if d.Returns != nil {
		fn.ResultRef = b.typeRef(f, fn.Scope, d.Returns, ir.RefReturn, fn.Span)
		fn.Result = fn.ResultRef.Type
	} else {
		fn.Result = b.types.Builtins().Unit
	}
	sig.Result = fn.Result
	sym := b.sym(fn.Symbol)
	sym.Signature = sig
	sym.Type = fn.Result
}

func (b *builder) constructorSignature(f *fileState, ctor *ir.Constructor, lexical symbols.ScopeID) {
	cls := b.classOfScope(lexical)
	ctor.Scope = b.table.Scopes.New(symbols.ScopeFunction, lexical, ctor.Symbol, ctor.Span)
	ctor.Receiver = b.receiver(ctor.Scope, cls, ctor.Symbol)
	sig := &symbols.Signature{Vararg: -1, Result: cls.Type}
	if d := b.syntaxOf[ctor]; d != nil {
		ctor.Params = b.params(f, d.Params, ctor.Scope, ctor.Symbol, sig)
	}
	b.sym(ctor.Symbol).Signature = sig
}

func (b *builder) propertySignature(f *fileState, prop *ir.Property, lexical symbols.ScopeID) {
	d := b.syntaxOf[prop]
	if d.Type == nil {
		// inferred from the initializer while building bodies
		return
	}
	prop.TypeRef = b.typeRef(f, lexical, d.Type, ir.RefProperty, prop.Span)
	prop.Type = prop.TypeRef.Type
	b.sym(prop.Symbol).Type = prop.Type
}

// classOfScope returns the class whose member scope is scope.
func (b *builder) classOfScope(scope symbols.ScopeID) *ir.Class {
	s := b.table.Scopes.Get(scope)
	if s == nil || s.Kind != symbols.ScopeClass {
		return nil
	}
	return b.classOf[s.Owner]
}
