package build

import (
	"fmt"

	"vela/internal/diag"
	"vela/internal/source"
	"vela/internal/symbols"
)

// resolveImports fills the import scope of f. Explicit and star imports
// share one delegating scope, so a name that two imports provide with
// different meanings is ambiguous rather than silently picked.
func (b *builder) resolveImports(f *fileState) {
	for _, imp := range f.unit.Imports {
		span := f.span(imp.Pos, len(imp.Path)+len("import "), f.node.Span)
		if imp.Star() {
			if !b.importPackage(f, imp.Package(), span) {
				b.reportUnresolvedImport(imp.Path, span)
			}
			continue
		}
		targets := b.findTopLevel(imp.Path, span)
		if len(targets) == 0 {
			b.reportUnresolvedImport(imp.Path, span)
			continue
		}
		_, name := symbols.SplitFQName(imp.Path)
		if imp.Alias != "" {
			name = imp.Alias
		}
		for _, target := range targets {
			b.table.Alias(f.imports, b.intern(name), target)
		}
	}
}

func (b *builder) reportUnresolvedImport(path string, span source.Span) {
	diag.ReportError(b.reporter, diag.SemaUnresolvedImport, span,
		fmt.Sprintf("unresolved import '%s'", path)).WithArgs(path).Emit()
}

// importPackage makes every top-level declaration of pkg visible in f.
func (b *builder) importPackage(f *fileState, pkg string, span source.Span) bool {
	found := false
	if b.packages[pkg] {
		scope := b.table.Scopes.Get(b.table.PackageScope(pkg))
		for _, id := range scope.Symbols {
			b.table.Alias(f.imports, b.sym(id).Name, id)
			found = true
		}
	}
	names, err := b.opts.Libraries.PackageDecls(pkg)
	if err != nil {
		b.reportLibraryError(err, span)
	}
	for _, fq := range names {
		for _, id := range b.libraryTopLevel(fq, span) {
			b.table.Alias(f.imports, b.sym(id).Name, id)
			found = true
		}
	}
	return found
}

// findTopLevel resolves a fully qualified name to top-level declarations of
// the unit or of a library. Functions may resolve to several overloads.
func (b *builder) findTopLevel(fq string, span source.Span) []symbols.SymbolID {
	if id, ok := b.table.ClassByFQName(fq); ok {
		return []symbols.SymbolID{id}
	}
	pkg, name := symbols.SplitFQName(fq)
	if b.packages[pkg] {
		if ids := b.table.LookupLocal(b.table.PackageScope(pkg), b.intern(name), symbols.KindMaskAny); len(ids) > 0 {
			return ids
		}
	}
	return b.libraryTopLevel(fq, span)
}
