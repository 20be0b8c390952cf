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

const ctorName = "<init>"

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// declareFile registers the file and declares its top-level declarations.
func (b *builder) declareFile(u *syntax.Unit) {
	var id source.FileID
	if u.Text != "" {
		id = b.opts.Files.AddVirtual(u.File, []byte(u.Text))
	} else {
		id = b.opts.Files.AddPathOnly(u.File)
	}
	f := &fileState{unit: u, fset: b.opts.Files, id: id}
	whole := f.span(syntax.Pos{Line: 1, Col: 1}, 1, source.Span{File: id})
	if u.Text != "" {
		whole.End = uint32(len(u.Text)) //nolint:gosec // checked by FileSet.Add
	}
	f.scope, f.imports = b.table.FileScopes(u.Package, whole)
	f.node = &ir.File{Path: u.File, Package: u.Package, Span: whole, Scope: f.scope}
	b.module.Files = append(b.module.Files, f.node)
	b.files = append(b.files, f)

	b.packages[u.Package] = true
	pkgScope := b.table.PackageScope(u.Package)
	for _, d := range u.Decls {
		target := pkgScope
		if d.HasModifier("private") {
			target = f.scope
		}
		if decl := b.declare(f, d, target, f.scope, symbols.NoSymbolID, u.Package); decl != nil {
			f.node.Decls = append(f.node.Decls, decl)
		}
	}
}

// modifierSet is the decoded modifier list of a declaration.
type modifierSet struct {
	vis   symbols.Visibility
	flags symbols.SymbolFlags
}

func (b *builder) modifiers(d *syntax.Decl, span source.Span) modifierSet {
	var m modifierSet
	for _, mod := range d.Modifiers {
		switch mod {
		case "public":
			m.vis = symbols.VisPublic
		case "internal":
			m.vis = symbols.VisInternal
		case "protected":
			m.vis = symbols.VisProtected
		case "private":
			m.vis = symbols.VisPrivate
		case "open":
			m.flags |= symbols.SymbolFlagOpen
		case "abstract":
			m.flags |= symbols.SymbolFlagAbstract | symbols.SymbolFlagOpen
		case "final":
			m.flags |= symbols.SymbolFlagFinal
		case "external":
			m.flags |= symbols.SymbolFlagExternal
		case "value":
			m.flags |= symbols.SymbolFlagValue
		case "inline":
			m.flags |= symbols.SymbolFlagInline
		default:
			diag.ReportWarning(b.reporter, diag.SynUnexpectedMember, span,
				fmt.Sprintf("unknown modifier '%s' on %s %s", mod, d.Kind, d.Name)).WithArgs(mod).Emit()
		}
	}
	return m
}

func (b *builder) annotations(f *fileState, in []*syntax.Annotation, fallback source.Span) []symbols.Annotation {
	if len(in) == 0 {
		return nil
	}
	out := make([]symbols.Annotation, 0, len(in))
	for _, a := range in {
		out = append(out, symbols.Annotation{Name: a.Name, Args: a.Args, Span: f.span(a.Pos, len(a.Name)+1, fallback)})
	}
	return out
}

// declare creates the symbol and IR shell of d. Symbols go into scope;
// lexical is the scope that nested declarations see as their parent.
func (b *builder) declare(f *fileState, d *syntax.Decl, scope, lexical symbols.ScopeID, owner symbols.SymbolID, prefix string) ir.Decl {
	switch d.Kind {
	case syntax.DeclClass:
		return b.declareClass(f, d, scope, lexical, owner, prefix)
	case syntax.DeclFun:
		return b.declareFunction(f, d, scope, owner, prefix)
	case syntax.DeclConstructor:
		return b.declareConstructor(f, d, scope, owner)
	case syntax.DeclProperty:
		return b.declareProperty(f, d, scope, owner, prefix)
	}
	return nil
}

func (b *builder) declareClass(f *fileState, d *syntax.Decl, scope, lexical symbols.ScopeID, owner symbols.SymbolID, prefix string) ir.Decl {
	span := f.span(d.Pos, len(d.Name), f.node.Span)
	mods := b.modifiers(d, span)
	fq := qualify(prefix, d.Name)

	var tflags types.ClassFlags
	var cflags ir.ClassFlags
	if mods.flags.Has(symbols.SymbolFlagOpen) {
		tflags |= types.ClassOpen
		cflags |= ir.ClassOpen
	}
	if mods.flags.Has(symbols.SymbolFlagAbstract) {
		tflags |= types.ClassAbstract
		cflags |= ir.ClassAbstract
	}
	if mods.flags.Has(symbols.SymbolFlagValue) || mods.flags.Has(symbols.SymbolFlagInline) {
		tflags |= types.ClassValue
		cflags |= ir.ClassValue
		mods.flags |= symbols.SymbolFlagValue
	}
	if mods.flags.Has(symbols.SymbolFlagExternal) {
		tflags |= types.ClassExternal
		cflags |= ir.ClassExternal
	}
	typ := b.types.RegisterClass(fq, tflags)
	annotations := b.annotations(f, d.Annotations, span)
	id, ok := b.resolver.DeclareIn(scope, symbols.Symbol{
		Name:        b.intern(d.Name),
		Kind:        symbols.SymbolClass,
		Owner:       owner,
		Span:        span,
		Flags:       mods.flags,
		Visibility:  mods.vis,
		Type:        typ,
		FQName:      fq,
		Annotations: annotations,
	})
	if !ok {
		return nil
	}
	members := b.table.Scopes.New(symbols.ScopeClass, lexical, id, span)
	b.sym(id).Members = members

	cls := &ir.Class{
		Name:        d.Name,
		Symbol:      id,
		Type:        typ,
		Span:        span,
		Visibility:  mods.vis,
		Flags:       cflags,
		Annotations: annotations,
		Scope:       members,
	}
	b.classOf[id] = cls
	b.syntaxOf[cls] = d

	cls.TypeParams = b.declareTypeParams(f, d.TypeParams, members, fq, span)
	tparams := make([]types.TypeID, 0, len(cls.TypeParams))
	for _, tp := range cls.TypeParams {
		tparams = append(tparams, tp.Type)
	}
	b.types.SetClassTypeParams(typ, tparams)

	hasCtor := false
	for _, m := range d.Members {
		if m.Kind == syntax.DeclConstructor {
			hasCtor = true
		}
		if decl := b.declare(f, m, members, members, id, fq); decl != nil {
			cls.Members = append(cls.Members, decl)
		}
	}
	if !hasCtor && !cflags.Has(ir.ClassExternal) {
		cls.Members = append(cls.Members, b.implicitConstructor(cls, members))
	}
	return cls
}

// implicitConstructor adds the parameterless primary constructor a class
// without declared constructors gets.
func (b *builder) implicitConstructor(cls *ir.Class, members symbols.ScopeID) *ir.Constructor {
	id := b.table.Add(members, symbols.Symbol{
		Name:  b.intern(ctorName),
		Kind:  symbols.SymbolConstructor,
		Owner: cls.Symbol,
		Span:  cls.Span,
		Flags: symbols.SymbolFlagPrimary,
		Type:  cls.Type,
	})
	return &ir.Constructor{Symbol: id, Span: cls.Span, Visibility: cls.Visibility, Primary: true}
}

func (b *builder) declareTypeParams(f *fileState, in []*syntax.TypeParam, scope symbols.ScopeID, owner string, fallback source.Span) []*ir.TypeParam {
	out := make([]*ir.TypeParam, 0, len(in))
	for _, tp := range in {
		span := f.span(tp.Pos, len(tp.Name), fallback)
		typ := b.types.RegisterTypeParam(tp.Name, owner, nil)
		if _, ok := b.resolver.DeclareIn(scope, symbols.Symbol{
			Name: b.intern(tp.Name),
			Kind: symbols.SymbolType,
			Span: span,
			Type: typ,
		}); !ok {
			continue
		}
		out = append(out, &ir.TypeParam{Name: tp.Name, Type: typ, Span: span})
	}
	return out
}

func (b *builder) declareFunction(f *fileState, d *syntax.Decl, scope symbols.ScopeID, owner symbols.SymbolID, prefix string) ir.Decl {
	span := f.span(d.Pos, len(d.Name), f.node.Span)
	mods := b.modifiers(d, span)
	fq := ""
	if !owner.IsValid() {
		fq = qualify(prefix, d.Name)
	}
	annotations := b.annotations(f, d.Annotations, span)
	id, ok := b.resolver.DeclareIn(scope, symbols.Symbol{
		Name:        b.intern(d.Name),
		Kind:        symbols.SymbolFunction,
		Owner:       owner,
		Span:        span,
		Flags:       mods.flags,
		Visibility:  mods.vis,
		FQName:      fq,
		Annotations: annotations,
	})
	if !ok {
		return nil
	}
	var flags ir.FuncFlags
	for _, pair := range []struct {
		sym symbols.SymbolFlags
		fn  ir.FuncFlags
	}{
		{symbols.SymbolFlagFinal, ir.FuncFinal},
		{symbols.SymbolFlagOpen, ir.FuncOpen},
		{symbols.SymbolFlagAbstract, ir.FuncAbstract},
		{symbols.SymbolFlagExternal, ir.FuncExternal},
		{symbols.SymbolFlagInline, ir.FuncInline},
	} {
		if mods.flags.Has(pair.sym) {
			flags |= pair.fn
		}
	}
	fn := &ir.Function{
		Name:        d.Name,
		Symbol:      id,
		Span:        span,
		Visibility:  mods.vis,
		Flags:       flags,
		Annotations: annotations,
	}
	b.syntaxOf[fn] = d
	return fn
}

func (b *builder) declareConstructor(f *fileState, d *syntax.Decl, scope symbols.ScopeID, owner symbols.SymbolID) ir.Decl {
	span := f.span(d.Pos, len("constructor"), f.node.Span)
	ownerSym := b.sym(owner)
	if ownerSym == nil || ownerSym.Kind != symbols.SymbolClass {
		diag.ReportError(b.reporter, diag.SynUnexpectedMember, span, "constructor declared outside of a class").Emit()
		return nil
	}
	mods := b.modifiers(d, span)
	flags := mods.flags
	if d.Primary {
		flags |= symbols.SymbolFlagPrimary
	}
	if ownerSym.Flags.Has(symbols.SymbolFlagExternal) {
		flags |= symbols.SymbolFlagExternal
	}
	annotations := b.annotations(f, d.Annotations, span)
	id, ok := b.resolver.DeclareIn(scope, symbols.Symbol{
		Name:        b.intern(ctorName),
		Kind:        symbols.SymbolConstructor,
		Owner:       owner,
		Span:        span,
		Flags:       flags,
		Visibility:  mods.vis,
		Type:        ownerSym.Type,
		Annotations: annotations,
	})
	if !ok {
		return nil
	}
	ctor := &ir.Constructor{
		Symbol:      id,
		Span:        span,
		Visibility:  mods.vis,
		Primary:     d.Primary,
		External:    flags.Has(symbols.SymbolFlagExternal),
		Annotations: annotations,
	}
	b.syntaxOf[ctor] = d
	return ctor
}

func (b *builder) declareProperty(f *fileState, d *syntax.Decl, scope symbols.ScopeID, owner symbols.SymbolID, prefix string) ir.Decl {
	span := f.span(d.Pos, len(d.Name), f.node.Span)
	mods := b.modifiers(d, span)
	flags := mods.flags
	if d.Mutable {
		flags |= symbols.SymbolFlagMutable
	}
	fq := ""
	if !owner.IsValid() {
		fq = qualify(prefix, d.Name)
	}
	id, ok := b.resolver.DeclareIn(scope, symbols.Symbol{
		Name:        b.intern(d.Name),
		Kind:        symbols.SymbolProperty,
		Owner:       owner,
		Span:        span,
		Flags:       flags,
		Visibility:  mods.vis,
		FQName:      fq,
		Annotations: b.annotations(f, d.Annotations, span),
	})
	if !ok {
		return nil
	}
	prop := &ir.Property{Name: d.Name, Symbol: id, Span: span, Visibility: mods.vis, Mutable: d.Mutable}
	b.syntaxOf[prop] = d
	return prop
}
