package symbols

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"vela/internal/session"
	"vela/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates the scope and symbol arenas of one unit. It is not
// goroutine-safe.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings source.Strings

	token          session.Token
	defaultImports ScopeID
	packages       map[string]ScopeID
	libPackages    map[string]ScopeID
	byFQName       map[string]SymbolID
}

// NewTable builds a fresh table bound to the session generation tok.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings source.Strings, tok session.Token) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:      NewScopes(scopeCap),
		Symbols:     NewSymbols(symCap),
		Strings:     strings,
		token:       tok,
		packages:    make(map[string]ScopeID),
		libPackages: make(map[string]ScopeID),
		byFQName:    make(map[string]SymbolID),
	}
}

// Token returns the session generation the table was built under.
func (t *Table) Token() session.Token { return t.token }

// DefaultImports returns the root scope holding the prelude and star
// imports, creating it on first use.
func (t *Table) DefaultImports() ScopeID {
	if !t.defaultImports.IsValid() {
		t.defaultImports = t.Scopes.New(ScopeDefaultImport, NoScopeID, NoSymbolID, source.Span{})
	}
	return t.defaultImports
}

// PackageScope returns (and creates if needed) the scope of a source
// package. Package scopes hang off the default-import scope.
func (t *Table) PackageScope(pkg string) ScopeID {
	if scope, ok := t.packages[pkg]; ok {
		return scope
	}
	scope := t.Scopes.New(ScopePackage, t.DefaultImports(), NoSymbolID, source.Span{})
	t.packages[pkg] = scope
	return scope
}

// LibraryPackageScope returns the detached scope that holds declarations
// materialized from libraries for pkg.
func (t *Table) LibraryPackageScope(pkg string) ScopeID {
	if scope, ok := t.libPackages[pkg]; ok {
		return scope
	}
	scope := t.Scopes.New(ScopePackage, NoScopeID, NoSymbolID, source.Span{})
	t.libPackages[pkg] = scope
	return scope
}

// FileScopes creates the import and file scopes of one source file and
// returns the file scope, the innermost of the two.
func (t *Table) FileScopes(pkg string, span source.Span) (file, imports ScopeID) {
	imports = t.Scopes.New(ScopeImport, t.PackageScope(pkg), NoSymbolID, span)
	file = t.Scopes.New(ScopeFile, imports, NoSymbolID, span)
	return file, imports
}

// Add stores sym in scope without any checks.
func (t *Table) Add(scopeID ScopeID, sym Symbol) SymbolID {
	sym.Scope = scopeID
	id := t.Symbols.New(&sym)
	if scope := t.Scopes.Get(scopeID); scope != nil {
		scope.Symbols = append(scope.Symbols, id)
		scope.NameIndex[sym.Name] = append(scope.NameIndex[sym.Name], id)
	}
	if sym.FQName != "" && sym.Kind == SymbolClass {
		if _, ok := t.byFQName[sym.FQName]; !ok {
			t.byFQName[sym.FQName] = id
		}
	}
	return id
}

// Alias makes target visible in scope under name without moving it.
func (t *Table) Alias(scopeID ScopeID, name source.StringID, target SymbolID) {
	scope := t.Scopes.Get(scopeID)
	if scope == nil || !target.IsValid() {
		return
	}
	for _, id := range scope.NameIndex[name] {
		if id == target {
			return
		}
	}
	scope.NameIndex[name] = append(scope.NameIndex[name], target)
}

// ClassByFQName finds a class symbol by its fully qualified name.
func (t *Table) ClassByFQName(fq string) (SymbolID, bool) {
	id, ok := t.byFQName[fq]
	return id, ok
}

// Get returns the symbol or nil.
func (t *Table) Get(id SymbolID) *Symbol { return t.Symbols.Get(id) }

// Name returns the symbol's name as a string.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return "<invalid>"
	}
	name, ok := t.Strings.Lookup(sym.Name)
	if !ok {
		return "<invalid>"
	}
	return name
}

// Describe renders "kind name" for diagnostics and dumps.
func (t *Table) Describe(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return "<invalid symbol>"
	}
	name := sym.FQName
	if name == "" {
		name = t.Name(id)
	}
	return sym.Kind.String() + " " + name
}

// OwnerClass walks Owner links up to the nearest class symbol.
func (t *Table) OwnerClass(id SymbolID) SymbolID {
	for id.IsValid() {
		sym := t.Symbols.Get(id)
		if sym == nil {
			break
		}
		if sym.Kind == SymbolClass {
			return id
		}
		id = sym.Owner
	}
	return NoSymbolID
}

// Constructors returns the constructors declared in a class.
func (t *Table) Constructors(class SymbolID) []SymbolID {
	sym := t.Symbols.Get(class)
	if sym == nil {
		return nil
	}
	scope := t.Scopes.Get(sym.Members)
	if scope == nil {
		return nil
	}
	var out []SymbolID
	for _, id := range scope.Symbols {
		if s := t.Symbols.Get(id); s != nil && s.Kind == SymbolConstructor {
			out = append(out, id)
		}
	}
	return out
}

// Validate checks arena cross-links.
func (t *Table) Validate() error {
	var errs []string
	for i := 1; i <= t.Symbols.Len(); i++ {
		sym := t.Symbols.Get(SymbolID(i)) //nolint:gosec // bounded by Len
		if sym.Scope.IsValid() && t.Scopes.Get(sym.Scope) == nil {
			errs = append(errs, fmt.Sprintf("symbol #%d points at missing scope #%d", i, sym.Scope))
		}
		if sym.Kind == SymbolInvalid {
			errs = append(errs, fmt.Sprintf("symbol #%d has no kind", i))
		}
	}
	for i := 1; i <= t.Scopes.Len(); i++ {
		scope := t.Scopes.Get(ScopeID(i)) //nolint:gosec // bounded by Len
		if scope.Parent.IsValid() && t.Scopes.Get(scope.Parent) == nil {
			errs = append(errs, fmt.Sprintf("scope #%d points at missing parent #%d", i, scope.Parent))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("symbol table: %s", strings.Join(errs, "; "))
	}
	return nil
}
