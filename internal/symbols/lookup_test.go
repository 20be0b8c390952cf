package symbols

import (
	"errors"
	"testing"

	"vela/internal/diag"
	"vela/internal/session"
	"vela/internal/source"
)

func newTestTable() *Table {
	return NewTable(Hints{}, nil, session.Open(session.Options{}).Token())
}

func TestShadowingScopeStopsAtLocal(t *testing.T) {
	table := newTestTable()
	x := table.Strings.Intern("x")
	fn := table.Scopes.New(ScopeFunction, NoScopeID, NoSymbolID, source.Span{})
	block := table.Scopes.New(ScopeBlock, fn, NoSymbolID, source.Span{})

	outer := table.Add(fn, Symbol{Name: x, Kind: SymbolVariable})
	if got := table.Lookup(block, x, KindMaskAny); len(got.Symbols) != 1 || got.Symbols[0] != outer {
		t.Fatalf("empty block must delegate to parent, got %v", got.Symbols)
	}

	inner := table.Add(block, Symbol{Name: x, Kind: SymbolVariable})
	got := table.Lookup(block, x, KindMaskAny)
	if len(got.Symbols) != 1 || got.Symbols[0] != inner {
		t.Fatalf("shadowing scope merged parent results: %v", got.Symbols)
	}
	if got.Ambiguous {
		t.Fatalf("single result flagged ambiguous")
	}
}

func TestDelegatingScopeUnitesWithParent(t *testing.T) {
	table := newTestTable()
	name := table.Strings.Intern("Widget")
	defaults := table.DefaultImports()
	pkg := table.PackageScope("demo")
	file, imports := table.FileScopes("demo", source.Span{})

	fromDefault := table.Add(defaults, Symbol{Name: name, Kind: SymbolClass, FQName: "vela.Widget"})
	lib := table.LibraryPackageScope("ui")
	fromLib := table.Add(lib, Symbol{Name: name, Kind: SymbolClass, FQName: "ui.Widget"})
	table.Alias(imports, name, fromLib)

	got := table.Lookup(file, name, KindMaskClassifier)
	if len(got.Symbols) != 2 || got.Symbols[0] != fromLib || got.Symbols[1] != fromDefault {
		t.Fatalf("delegating scopes must unite results innermost first, got %v", got.Symbols)
	}
	if !got.Ambiguous {
		t.Fatalf("two distinct classes must be ambiguous")
	}

	// the same symbol reached through several scopes is listed once
	table.Alias(pkg, name, fromLib)
	table.Alias(defaults, name, fromLib)
	only := table.Lookup(imports, name, KindMaskClassifier)
	if len(only.Symbols) != 2 {
		t.Fatalf("duplicates must collapse, got %v", only.Symbols)
	}
}

func TestLookupEmptyAndOverloads(t *testing.T) {
	table := newTestTable()
	pkg := table.PackageScope("demo")
	f := table.Strings.Intern("f")
	if got := table.Lookup(pkg, f, KindMaskAny); got.Found() || got.Ambiguous {
		t.Fatalf("missing name must be an empty, unambiguous result")
	}
	table.Add(pkg, Symbol{Name: f, Kind: SymbolFunction, FQName: "demo.f"})
	table.Add(pkg, Symbol{Name: f, Kind: SymbolFunction, FQName: "demo.f"})
	got := table.Lookup(pkg, f, KindMaskCallable)
	if len(got.Symbols) != 2 || got.Ambiguous {
		t.Fatalf("overloads: got %v ambiguous=%v", got.Symbols, got.Ambiguous)
	}
	if got := table.Lookup(pkg, f, KindMaskValue); got.Found() {
		t.Fatalf("kind mask ignored")
	}
}

func TestLookupIsRepeatable(t *testing.T) {
	table := newTestTable()
	pkg := table.PackageScope("demo")
	n := table.Strings.Intern("n")
	table.Add(pkg, Symbol{Name: n, Kind: SymbolProperty})
	before := table.Symbols.Len()
	first := table.Lookup(pkg, n, KindMaskAny)
	second := table.Lookup(pkg, n, KindMaskAny)
	if first.First() != second.First() || table.Symbols.Len() != before {
		t.Fatalf("lookup is not side-effect free")
	}
}

func TestResolverDeclare(t *testing.T) {
	table := newTestTable()
	bag := diag.NewBag(0)
	pkg := table.PackageScope("demo")
	r := NewResolver(table, pkg, ResolverOptions{Reporter: diag.BagReporter{Bag: bag}})

	v := table.Strings.Intern("value")
	if _, ok := r.Declare(Symbol{Name: v, Kind: SymbolProperty}); !ok {
		t.Fatalf("first declaration rejected")
	}
	if _, ok := r.Declare(Symbol{Name: v, Kind: SymbolProperty}); ok {
		t.Fatalf("duplicate accepted")
	}
	f := table.Strings.Intern("f")
	r.Declare(Symbol{Name: f, Kind: SymbolFunction})
	if _, ok := r.Declare(Symbol{Name: f, Kind: SymbolFunction}); !ok {
		t.Fatalf("overload rejected")
	}

	fn := r.Enter(ScopeFunction, NoSymbolID, source.Span{})
	a := table.Strings.Intern("a")
	r.Declare(Symbol{Name: a, Kind: SymbolParam})
	block := r.Enter(ScopeBlock, NoSymbolID, source.Span{})
	r.Declare(Symbol{Name: a, Kind: SymbolVariable})
	r.Leave(block)
	r.Leave(fn)

	codes := []diag.Code{}
	for _, d := range bag.Items() {
		codes = append(codes, d.Code)
	}
	want := []diag.Code{diag.SemaDuplicateSymbol, diag.SemaShadowedName}
	if len(codes) != len(want) || codes[0] != want[0] || codes[1] != want[1] {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestResolverScopeMismatch(t *testing.T) {
	table := newTestTable()
	bag := diag.NewBag(0)
	r := NewResolver(table, table.PackageScope("demo"), ResolverOptions{Reporter: diag.BagReporter{Bag: bag}})
	outer := r.Enter(ScopeFunction, NoSymbolID, source.Span{})
	r.Enter(ScopeBlock, NoSymbolID, source.Span{})
	r.Leave(outer)
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SemaScopeMismatch {
		t.Fatalf("expected one scope mismatch, got %v", bag.Items())
	}
}

func TestDerefStale(t *testing.T) {
	sess := session.Open(session.Options{})
	table := NewTable(Hints{}, nil, sess.Token())
	id := table.Add(table.PackageScope("demo"), Symbol{Name: table.Strings.Intern("C"), Kind: SymbolClass})
	ref := table.Ref(id)
	if sym, err := table.Deref(ref, sess); err != nil || sym.Kind != SymbolClass {
		t.Fatalf("Deref = %v, %v", sym, err)
	}
	sess.Invalidate()
	if _, err := table.Deref(ref, sess); !errors.Is(err, session.ErrStaleReference) {
		t.Fatalf("got %v, want ErrStaleReference", err)
	}
}

func TestPreludeAndMembers(t *testing.T) {
	table := newTestTable()
	defaults := table.DefaultImports()
	table.InstallPrelude(defaults, BuiltinPrelude(typesForTest()))

	exc, ok := table.ClassByFQName("vela.Exception")
	if !ok {
		t.Fatalf("Exception missing from prelude")
	}
	if n := len(table.Constructors(exc)); n != 2 {
		t.Fatalf("Exception has %d constructors, want 2", n)
	}
	// members of Throwable are visible through Exception
	thr, _ := table.ClassByFQName("vela.Throwable")
	throwableScope := table.Symbols.Get(thr).Members
	marker := table.Strings.Intern("stackTrace")
	table.Add(throwableScope, Symbol{Name: marker, Kind: SymbolProperty, Owner: thr})
	if got := table.LookupMember(exc, marker, KindMaskValue); !got.Found() {
		t.Fatalf("inherited member not found")
	}
	if table.OwnerClass(table.Constructors(exc)[0]) != exc {
		t.Fatalf("OwnerClass did not reach the class")
	}
}
