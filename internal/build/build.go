// Package build turns the syntax trees of one compilation unit into the
// typed IR, building the scope chain on the way.
//
// Building runs in four passes over every file of the unit:
//
//  1. declare: classes, functions, constructors and properties get symbols
//     and IR shells; classes get nominal types.
//  2. imports: explicit and star imports are resolved against the unit's
//     own packages and the library providers.
//  3. signatures: supertypes, parameter, result and property types.
//  4. bodies: statements and expressions, with names resolved through the
//     scope chain and calls bound to their callees.
//
// User errors, unreadable libraries included, are reported and building
// continues; Build returns an error only when the session is unusable.
package build

import (
	"errors"
	"fmt"

	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/session"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/syntax"
	"vela/internal/types"
)

// Options configure Build.
type Options struct {
	// Name of the produced module.
	Name    string
	Session *session.Session
	// Files receives one entry per syntax unit. Required.
	Files *source.FileSet
	// Strings is shared between units when set.
	Strings   source.Strings
	Libraries symbols.Providers
	Reporter  diag.Reporter
}

// Build resolves units into one IR module.
func Build(units []*syntax.Unit, opts Options) (*ir.Module, error) {
	if opts.Session == nil || opts.Files == nil {
		return nil, errors.New("build: session and file set are required")
	}
	if opts.Session.Closed() {
		return nil, fmt.Errorf("build %s: %w", opts.Name, session.ErrSessionClosed)
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}

	in := types.NewInterner()
	table := symbols.NewTable(symbols.Hints{Scopes: 64, Symbols: 256}, opts.Strings, opts.Session.Token())
	table.InstallPrelude(table.DefaultImports(), symbols.BuiltinPrelude(in))

	b := &builder{
		opts:     opts,
		table:    table,
		types:    in,
		reporter: opts.Reporter,
		module:   &ir.Module{Name: opts.Name, Symbols: table, Types: in},
		syntaxOf: make(map[ir.Node]*syntax.Decl),
		classOf:  make(map[symbols.SymbolID]*ir.Class),
		packages: make(map[string]bool),
		libDone:  make(map[string][]symbols.SymbolID),
	}
	b.resolver = symbols.NewResolver(table, symbols.NoScopeID, symbols.ResolverOptions{Reporter: opts.Reporter})

	for _, u := range units {
		b.declareFile(u)
	}
	for _, f := range b.files {
		b.resolveImports(f)
	}
	for _, f := range b.files {
		b.resolveSignatures(f)
	}
	for _, f := range b.files {
		b.buildBodies(f)
	}
	ir.LinkModule(b.module)
	return b.module, nil
}

// builder holds the state shared by all passes.
type builder struct {
	opts     Options
	table    *symbols.Table
	types    *types.Interner
	reporter diag.Reporter
	resolver *symbols.Resolver
	module   *ir.Module
	files    []*fileState

	// syntaxOf maps IR declarations back to the syntax they came from.
	syntaxOf map[ir.Node]*syntax.Decl
	classOf  map[symbols.SymbolID]*ir.Class
	// packages lists the packages declared by the unit's own files.
	packages map[string]bool
	// libDone maps library FQ names to materialized symbols.
	libDone map[string][]symbols.SymbolID
}

// fileState is one source file while it is being built.
type fileState struct {
	unit    *syntax.Unit
	node    *ir.File
	fset    *source.FileSet
	id      source.FileID
	scope   symbols.ScopeID
	imports symbols.ScopeID
}

func (b *builder) intern(s string) source.StringID { return b.table.Strings.Intern(s) }

func (b *builder) sym(id symbols.SymbolID) *symbols.Symbol { return b.table.Get(id) }

// span maps a syntax position to a span of the given width. Unknown
// positions fall back to fallback.
func (f *fileState) span(p syntax.Pos, width int, fallback source.Span) source.Span {
	if p.IsZero() {
		return fallback
	}
	start := f.fset.Get(f.id).Offset(source.LineCol{Line: p.Line, Col: p.Col})
	w := uint32(1)
	if width > 1 && width < 1<<10 {
		w = uint32(width) //nolint:gosec // bounded above
	}
	return source.Span{File: f.id, Start: start, End: start + w}
}
