package library

import (
	"slices"
	"strings"

	"vela/internal/ir"
	"vela/internal/symbols"
	"vela/internal/types"
)

// flags that describe where a symbol came from rather than what it is
const originFlags = symbols.SymbolFlagBuiltin | symbols.SymbolFlagLibrary |
	symbols.SymbolFlagImported | symbols.SymbolFlagSynthesized

// Export describes the declarations of m that other units may use, sorted
// by name. Private declarations and private constructors are left out.
// Export runs on the module as built, before lowering.
func Export(m *ir.Module) []symbols.ExternalDecl {
	e := exporter{table: m.Symbols, types: m.Types}
	var out []symbols.ExternalDecl
	for _, f := range m.Files {
		for _, d := range f.Decls {
			if decl, ok := e.decl(d, f.Package); ok {
				out = append(out, decl)
			}
		}
	}
	slices.SortFunc(out, func(a, b symbols.ExternalDecl) int { return strings.Compare(a.FQName, b.FQName) })
	return out
}

type exporter struct {
	table *symbols.Table
	types *types.Interner
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func (e exporter) decl(d ir.Decl, prefix string) (symbols.ExternalDecl, bool) {
	switch d := d.(type) {
	case *ir.Class:
		if d.Visibility == symbols.VisPrivate {
			return symbols.ExternalDecl{}, false
		}
		return e.class(d, prefix), true
	case *ir.Function:
		if d.Visibility == symbols.VisPrivate || d.Role != ir.RoleNormal {
			return symbols.ExternalDecl{}, false
		}
		out := e.header(d.Symbol, qualify(prefix, d.Name), symbols.SymbolFunction, d.Visibility)
		for _, tp := range d.TypeParams {
			out.TypeParams = append(out.TypeParams, tp.Name)
		}
		out.Params = e.params(d.Params)
		if d.Result != e.types.Builtins().Unit {
			out.Result = e.types.Format(d.Result)
		}
		return out, true
	case *ir.Property:
		if d.Visibility == symbols.VisPrivate {
			return symbols.ExternalDecl{}, false
		}
		out := e.header(d.Symbol, qualify(prefix, d.Name), symbols.SymbolProperty, d.Visibility)
		out.Result = e.types.Format(d.Type)
		return out, true
	}
	return symbols.ExternalDecl{}, false
}

func (e exporter) header(id symbols.SymbolID, fq string, kind symbols.SymbolKind, vis symbols.Visibility) symbols.ExternalDecl {
	out := symbols.ExternalDecl{FQName: fq, Kind: kind, Visibility: vis}
	if sym := e.table.Get(id); sym != nil {
		out.Flags = sym.Flags &^ originFlags
		out.Annotations = exportAnnotations(sym.Annotations)
	}
	return out
}

func (e exporter) class(c *ir.Class, prefix string) symbols.ExternalDecl {
	fq := qualify(prefix, c.Name)
	if sym := e.table.Get(c.Symbol); sym != nil && sym.FQName != "" {
		fq = sym.FQName
	}
	out := e.header(c.Symbol, fq, symbols.SymbolClass, c.Visibility)
	for _, tp := range c.TypeParams {
		out.TypeParams = append(out.TypeParams, tp.Name)
	}
	for _, ref := range c.Supers {
		out.Supertypes = append(out.Supertypes, e.refText(ref))
	}
	for _, m := range c.Members {
		if ctor, ok := m.(*ir.Constructor); ok {
			if ctor.Visibility == symbols.VisPrivate {
				continue
			}
			ec := symbols.ExternalCtor{Params: e.params(ctor.Params), Primary: ctor.Primary, Visibility: ctor.Visibility}
			if sym := e.table.Get(ctor.Symbol); sym != nil {
				ec.Flags = sym.Flags &^ (originFlags | symbols.SymbolFlagPrimary)
			}
			out.Constructors = append(out.Constructors, ec)
			continue
		}
		if member, ok := e.decl(m, fq); ok {
			out.Members = append(out.Members, member)
		}
	}
	return out
}

func (e exporter) params(ps []*ir.ValueParam) []symbols.ExternalParam {
	if len(ps) == 0 {
		return nil
	}
	out := make([]symbols.ExternalParam, 0, len(ps))
	for _, p := range ps {
		t := p.Type
		if p.Vararg {
			t = p.ElemType
		}
		out = append(out, symbols.ExternalParam{Name: p.Name, Type: e.types.Format(t), Vararg: p.Vararg})
	}
	return out
}

// refText renders a written type so its arguments survive; class types
// themselves carry no arguments.
func (e exporter) refText(ref *ir.TypeRef) string {
	if _, isClass := e.types.ClassInfo(e.types.MakeNotNull(ref.Type)); len(ref.Args) == 0 || !isClass {
		return e.types.Format(ref.Type)
	}
	var sb strings.Builder
	sb.WriteString(e.types.Format(e.types.MakeNotNull(ref.Type)))
	sb.WriteByte('<')
	for i, a := range ref.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.refText(a))
	}
	sb.WriteByte('>')
	if e.types.CanBeNull(ref.Type) {
		sb.WriteByte('?')
	}
	return sb.String()
}

func exportAnnotations(in []symbols.Annotation) []symbols.ExternalAnnotation {
	if len(in) == 0 {
		return nil
	}
	out := make([]symbols.ExternalAnnotation, 0, len(in))
	for _, a := range in {
		out = append(out, symbols.ExternalAnnotation{Name: a.Name, Args: a.Args})
	}
	return out
}
