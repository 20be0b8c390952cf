package build

import (
	"fmt"
	"strings"

	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/syntax"
)

// typeRef resolves a written type in scope.
func (b *builder) typeRef(f *fileState, scope symbols.ScopeID, ref *syntax.TypeRef, role ir.RefRole, fallback source.Span) *ir.TypeRef {
	if ref == nil {
		return nil
	}
	out := &ir.TypeRef{Name: ref.String(), Role: role, Span: f.span(ref.Pos, len(ref.Name), fallback)}
	for _, a := range ref.Args {
		out.Args = append(out.Args, b.typeRef(f, scope, a, ir.RefTypeArgument, out.Span))
	}
	if ref.Name == "Array" && len(out.Args) == 1 {
		out.Type = b.types.ArrayOf(out.Args[0].Type)
	} else if id := b.classifier(scope, ref.Name, out.Span); id.IsValid() {
		sym := b.sym(id)
		out.Type = sym.Type
		if sym.Kind == symbols.SymbolClass {
			out.Class = id
		}
	} else {
		out.Type = b.types.Builtins().Error
	}
	switch {
	case ref.Nullable:
		out.Type = b.types.MakeNullable(out.Type)
	case ref.Flexible:
		out.Type = b.types.MakeFlexible(out.Type)
	}
	return out
}

// classifier resolves a class or type name. Qualified names bypass the
// scope chain.
func (b *builder) classifier(scope symbols.ScopeID, name string, span source.Span) symbols.SymbolID {
	if strings.Contains(name, ".") {
		for _, id := range b.findTopLevel(name, span) {
			if b.sym(id).Kind == symbols.SymbolClass {
				return id
			}
		}
		b.reportUnresolvedType(name, span)
		return symbols.NoSymbolID
	}
	res := b.table.Lookup(scope, b.intern(name), symbols.KindMaskClassifier)
	if !res.Found() {
		b.reportUnresolvedType(name, span)
		return symbols.NoSymbolID
	}
	if res.Ambiguous {
		b.reportAmbiguous(name, res, span)
	}
	return res.First()
}

func (b *builder) reportUnresolvedType(name string, span source.Span) {
	diag.ReportError(b.reporter, diag.SemaUnresolvedType, span,
		fmt.Sprintf("unresolved type '%s'", name)).WithArgs(name).Emit()
}

func (b *builder) reportAmbiguous(name string, res symbols.LookupResult, span source.Span) {
	builder := diag.ReportError(b.reporter, diag.SemaAmbiguousReference, span,
		fmt.Sprintf("reference to '%s' is ambiguous", name)).WithArgs(name)
	for _, id := range res.Symbols {
		sym := b.sym(id)
		if !sym.Span.IsZero() {
			builder.WithNote(sym.Span, "candidate: "+b.table.Describe(id))
		}
	}
	builder.Emit()
}
