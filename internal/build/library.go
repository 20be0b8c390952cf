package build

import (
	"fmt"
	"strings"

	"vela/internal/diag"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/syntax"
	"vela/internal/types"
)

func (b *builder) reportLibraryError(err error, span source.Span) {
	diag.ReportError(b.reporter, diag.IOLibraryError, span,
		fmt.Sprintf("cannot read library: %v", err)).Emit()
}

// libraryTopLevel materializes the library declaration fq on first use.
func (b *builder) libraryTopLevel(fq string, span source.Span) []symbols.SymbolID {
	if ids, ok := b.libDone[fq]; ok {
		return ids
	}
	decl, provider, err := b.opts.Libraries.FindDecl(fq)
	if err != nil {
		b.reportLibraryError(err, span)
		b.libDone[fq] = nil
		return nil
	}
	if decl == nil {
		b.libDone[fq] = nil
		return nil
	}
	scope := b.table.LibraryPackageScope(decl.Package())
	var id symbols.SymbolID
	if decl.Kind == symbols.SymbolClass {
		id = b.materializeClass(decl, provider.LibraryName(), scope, symbols.NoSymbolID, span)
	} else {
		id = b.materializeMember(decl, provider.LibraryName(), scope, symbols.NoSymbolID, symbols.NoScopeID, span)
	}
	b.libDone[fq] = []symbols.SymbolID{id}
	return b.libDone[fq]
}

func classFlagsOf(flags symbols.SymbolFlags) types.ClassFlags {
	out := types.ClassLibrary | types.ClassExternal
	if flags.Has(symbols.SymbolFlagOpen) {
		out |= types.ClassOpen
	}
	if flags.Has(symbols.SymbolFlagAbstract) {
		out |= types.ClassAbstract
	}
	if flags.Has(symbols.SymbolFlagValue) {
		out |= types.ClassValue
	}
	return out
}

func libraryAnnotations(in []symbols.ExternalAnnotation) []symbols.Annotation {
	if len(in) == 0 {
		return nil
	}
	out := make([]symbols.Annotation, 0, len(in))
	for _, a := range in {
		out = append(out, symbols.Annotation{Name: a.Name, Args: a.Args})
	}
	return out
}

func (b *builder) materializeClass(d *symbols.ExternalDecl, lib string, scope symbols.ScopeID, owner symbols.SymbolID, span source.Span) symbols.SymbolID {
	typ := b.types.RegisterClass(d.FQName, classFlagsOf(d.Flags))
	id := b.table.Add(scope, symbols.Symbol{
		Name:        b.intern(d.SimpleName()),
		Kind:        symbols.SymbolClass,
		Owner:       owner,
		Flags:       d.Flags | symbols.SymbolFlagLibrary | symbols.SymbolFlagExternal,
		Visibility:  d.Visibility,
		Type:        typ,
		FQName:      d.FQName,
		Library:     lib,
		Annotations: libraryAnnotations(d.Annotations),
	})
	// registered before supertypes so cycles terminate
	b.libDone[d.FQName] = []symbols.SymbolID{id}

	members := b.table.Scopes.New(symbols.ScopeClass, symbols.NoScopeID, id, source.Span{})
	b.sym(id).Members = members
	tparams := make([]types.TypeID, 0, len(d.TypeParams))
	for _, name := range d.TypeParams {
		tp := b.types.RegisterTypeParam(name, d.FQName, nil)
		b.table.Add(members, symbols.Symbol{Name: b.intern(name), Kind: symbols.SymbolType, Owner: id, Type: tp})
		tparams = append(tparams, tp)
	}
	b.types.SetClassTypeParams(typ, tparams)

	var superTypes, superArgs []types.TypeID
	var superSyms []symbols.SymbolID
	for _, text := range d.Supertypes {
		t, sid := b.libraryType(text, members, span, &superArgs)
		superTypes = append(superTypes, t)
		if sid.IsValid() {
			superSyms = append(superSyms, sid)
		}
	}
	if len(superTypes) == 0 {
		superTypes = []types.TypeID{b.types.Builtins().Any}
	}
	b.types.SetSupertypes(typ, superTypes)
	b.types.SetSuperTypeArgs(typ, superArgs)
	b.sym(id).Supers = superSyms

	for _, c := range d.Constructors {
		flags := c.Flags | symbols.SymbolFlagExternal | symbols.SymbolFlagLibrary
		if c.Primary {
			flags |= symbols.SymbolFlagPrimary
		}
		sig := b.librarySignature(c.Params, typ, members, span)
		b.table.Add(members, symbols.Symbol{
			Name:       b.intern(ctorName),
			Kind:       symbols.SymbolConstructor,
			Owner:      id,
			Flags:      flags,
			Visibility: c.Visibility,
			Type:       typ,
			Signature:  sig,
			Library:    lib,
		})
	}
	for i := range d.Members {
		m := &d.Members[i]
		if m.Kind == symbols.SymbolClass {
			b.materializeClass(m, lib, members, id, span)
			continue
		}
		b.materializeMember(m, lib, members, id, members, span)
	}
	return id
}

// materializeMember declares a library function or property. tscope holds
// the type parameters visible to its signature.
func (b *builder) materializeMember(d *symbols.ExternalDecl, lib string, scope symbols.ScopeID, owner symbols.SymbolID, tscope symbols.ScopeID, span source.Span) symbols.SymbolID {
	name := d.SimpleName()
	sym := symbols.Symbol{
		Name:        b.intern(name),
		Kind:        d.Kind,
		Owner:       owner,
		Flags:       d.Flags | symbols.SymbolFlagLibrary | symbols.SymbolFlagExternal,
		Visibility:  d.Visibility,
		Library:     lib,
		Annotations: libraryAnnotations(d.Annotations),
	}
	if !owner.IsValid() {
		sym.FQName = d.FQName
	}
	switch d.Kind {
	case symbols.SymbolFunction:
		if len(d.TypeParams) > 0 {
			fscope := b.table.Scopes.New(symbols.ScopeFunction, tscope, symbols.NoSymbolID, source.Span{})
			for _, name := range d.TypeParams {
				tp := b.types.RegisterTypeParam(name, d.FQName, nil)
				b.table.Add(fscope, symbols.Symbol{Name: b.intern(name), Kind: symbols.SymbolType, Type: tp})
			}
			tscope = fscope
		}
		var result types.TypeID
		if d.Result != "" {
			result, _ = b.libraryType(d.Result, tscope, span, nil)
		} else {
			result = b.types.Builtins().Unit
		}
		sym.Signature = b.librarySignature(d.Params, result, tscope, span)
		sym.Type = result
	case symbols.SymbolProperty:
		sym.Type, _ = b.libraryType(d.Result, tscope, span, nil)
	default:
		diag.ReportError(b.reporter, diag.IOLibraryError, span,
			fmt.Sprintf("library %s: declaration %s has unsupported kind %s", lib, d.FQName, d.Kind)).Emit()
		sym.Kind = symbols.SymbolProperty
		sym.Type = b.types.Builtins().Error
	}
	return b.table.Add(scope, sym)
}

func (b *builder) librarySignature(params []symbols.ExternalParam, result types.TypeID, tscope symbols.ScopeID, span source.Span) *symbols.Signature {
	sig := &symbols.Signature{Vararg: -1, Result: result}
	for i, p := range params {
		t, _ := b.libraryType(p.Type, tscope, span, nil)
		if p.Vararg {
			sig.Vararg = i
		}
		sig.Params = append(sig.Params, t)
		sig.ParamNames = append(sig.ParamNames, p.Name)
	}
	return sig
}

// libraryType resolves type text stored in a library. Simple names are
// type parameters or builtins; qualified names are classes of the unit,
// of a library, or missing from every library on the path. Type arguments
// are resolved too and, when args is set, collected into it.
func (b *builder) libraryType(text string, tscope symbols.ScopeID, span source.Span, args *[]types.TypeID) (types.TypeID, symbols.SymbolID) {
	ref, err := syntax.ParseTypeRef(text)
	if err != nil {
		diag.ReportError(b.reporter, diag.IOLibraryError, span, fmt.Sprintf("malformed library type: %v", err)).Emit()
		return b.types.Builtins().Error, symbols.NoSymbolID
	}
	return b.libraryTypeRef(ref, tscope, span, args)
}

func (b *builder) libraryTypeRef(ref *syntax.TypeRef, tscope symbols.ScopeID, span source.Span, args *[]types.TypeID) (types.TypeID, symbols.SymbolID) {
	var t types.TypeID
	var sid symbols.SymbolID
	var resolved []types.TypeID
	for _, a := range ref.Args {
		at, _ := b.libraryTypeRef(a, tscope, span, args)
		resolved = append(resolved, at)
		if args != nil {
			*args = append(*args, at)
		}
	}
	switch {
	case ref.Name == "Array" && len(resolved) == 1:
		t = b.types.ArrayOf(resolved[0])
	case !strings.Contains(ref.Name, "."):
		name := b.intern(ref.Name)
		if id := b.libraryTypeParam(tscope, name); id.IsValid() {
			t = b.sym(id).Type
			break
		}
		if ids := b.table.LookupLocal(b.table.DefaultImports(), name, symbols.KindMaskClassifier); len(ids) > 0 {
			sid = ids[0]
			t = b.sym(sid).Type
			break
		}
		diag.ReportError(b.reporter, diag.IOLibraryError, span,
			fmt.Sprintf("library type '%s' is not a builtin or a qualified name", ref.Name)).Emit()
		t = b.types.Builtins().Error
	default:
		t, sid = b.libraryClass(ref.Name, span)
	}
	if sid.IsValid() && b.sym(sid).Kind != symbols.SymbolClass {
		sid = symbols.NoSymbolID
	}
	switch {
	case ref.Nullable:
		t = b.types.MakeNullable(t)
	case ref.Flexible:
		t = b.types.MakeFlexible(t)
	}
	return t, sid
}

// libraryTypeParam looks name up in tscope and the scopes enclosing it.
func (b *builder) libraryTypeParam(tscope symbols.ScopeID, name source.StringID) symbols.SymbolID {
	for s := tscope; s.IsValid(); s = b.table.Scopes.Get(s).Parent {
		if ids := b.table.LookupLocal(s, name, symbols.SymbolType.Mask()); len(ids) > 0 {
			return ids[0]
		}
	}
	return symbols.NoSymbolID
}

// libraryClass finds the class fq. A class that no library provides is
// registered as missing: it has a type but no symbol.
func (b *builder) libraryClass(fq string, span source.Span) (types.TypeID, symbols.SymbolID) {
	if id, ok := b.table.ClassByFQName(fq); ok {
		return b.sym(id).Type, id
	}
	for _, id := range b.libraryTopLevel(fq, span) {
		if sym := b.sym(id); sym.Kind == symbols.SymbolClass {
			return sym.Type, id
		}
	}
	return b.types.RegisterClass(fq, types.ClassLibrary|types.ClassMissing), symbols.NoSymbolID
}
