package check

import (
	"context"
	"errors"
	"slices"
	"testing"

	"vela/internal/build"
	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/session"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/syntax"
)

func buildIn(t *testing.T, sess *session.Session, src string, libs ...symbols.LibraryProvider) *ir.Module {
	t.Helper()
	units, errs := syntax.DecodeString(src)
	if len(errs) > 0 {
		t.Fatalf("decode: %v", errs)
	}
	m, err := build.Build(units, build.Options{
		Name:      "test",
		Session:   sess,
		Files:     source.NewFileSet(),
		Libraries: libs,
		Reporter:  diag.NopReporter{},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func checkSource(t *testing.T, features session.FeatureSet, src string, libs ...symbols.LibraryProvider) *diag.Bag {
	t.Helper()
	sess := session.Open(session.Options{Features: features})
	t.Cleanup(sess.Close)
	m := buildIn(t, sess, src, libs...)
	bag := diag.NewBag(100)
	if err := Run(context.Background(), sess, m, nil, diag.BagReporter{Bag: bag}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return bag
}

func codes(bag *diag.Bag, keep ...diag.Code) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		if len(keep) == 0 || slices.Contains(keep, d.Code) {
			out = append(out, d.Code)
		}
	}
	return out
}

const spreadSrc = `
file: a.vela
package: demo
decls:
  - fun: f
    params: [{name: xs, type: "String?", vararg: true}]
  - fun: g
    params: [{name: a, type: "Array<String?>?"}, {name: b, type: "Array<String?>"}]
    body:
      - expr:
          call: f
          pos: "5:7"
          args:
            - {spread: {ref: a}, pos: "5:9"}
            - {spread: {ref: b}, pos: "5:13"}
            - {spread: {ref: a}, pos: "5:17"}
            - {string: x, pos: "5:21"}
            - {spread: {ref: a}, fake: true, pos: "5:25"}
`

func TestSpreadOfNullableReportsEachSubArgument(t *testing.T) {
	bag := checkSource(t, session.FeatureSet{}, spreadSrc)
	var cols []uint32
	for _, d := range bag.Items() {
		if d.Code != diag.SemaSpreadOfNullable {
			t.Fatalf("unexpected diagnostic %v: %s", d.Code, d.Message)
		}
		cols = append(cols, source.UnpackLineCol(d.Primary.Start).Col)
	}
	if want := []uint32{9, 17}; !slices.Equal(cols, want) {
		t.Fatalf("spread diagnostics at columns %v, want %v", cols, want)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	sess := session.Open(session.Options{})
	defer sess.Close()
	m := buildIn(t, sess, spreadSrc)
	before := ir.Dump(m)

	var runs [2][]diag.Diagnostic
	for i := range runs {
		bag := diag.NewBag(100)
		if err := Run(context.Background(), sess, m, DefaultRegistry(), diag.BagReporter{Bag: bag}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		runs[i] = bag.Items()
	}
	if len(runs[0]) == 0 || len(runs[0]) != len(runs[1]) {
		t.Fatalf("runs reported %d and %d diagnostics", len(runs[0]), len(runs[1]))
	}
	for i := range runs[0] {
		a, b := runs[0][i], runs[1][i]
		if a.Code != b.Code || a.Primary != b.Primary || a.Message != b.Message {
			t.Fatalf("diagnostic %d differs: %+v vs %+v", i, a, b)
		}
	}
	if after := ir.Dump(m); after != before {
		t.Fatalf("checking changed the module:\n%s\nvs\n%s", before, after)
	}
}

func missingLibrary() *symbols.StaticLibrary {
	ctor := []symbols.ExternalCtor{{Primary: true}}
	return &symbols.StaticLibrary{Name: "lib", Decls: []symbols.ExternalDecl{
		{FQName: "lib.Derived", Kind: symbols.SymbolClass, Flags: symbols.SymbolFlagOpen, Supertypes: []string{"gone.Base"}, Constructors: ctor},
		{FQName: "lib.Box", Kind: symbols.SymbolClass, Flags: symbols.SymbolFlagOpen, TypeParams: []string{"T"}, Constructors: ctor},
		{FQName: "lib.Holder", Kind: symbols.SymbolClass, Flags: symbols.SymbolFlagOpen, Supertypes: []string{"lib.Box<gone.Arg>"}, Constructors: ctor},
	}}
}

const missingSrc = `
file: a.vela
package: demo
imports: [lib.Derived, lib.Holder]
decls:
  - class: Mine
    supers: [Derived]
  - class: Held
    supers: [Holder]
  - fun: use
    params: [{name: d, type: Derived}]
  - fun: use2
    params: [{name: h, type: Holder}]
`

func TestMissingDependencyPriority(t *testing.T) {
	const (
		warn  = diag.SemaMissingDependencySuperclassWarning
		inArg = diag.SemaMissingDependencySuperclassInTypeArgument
		fail  = diag.SemaMissingDependencySuperclass
	)
	forbid := session.ForbidUsingSupertypesWithInaccessibleContentInTypeArguments
	eager := session.AllowEagerSupertypeAccessibilityChecks
	tests := []struct {
		name     string
		features session.FeatureSet
		want     []diag.Code
	}{
		{"defaults", session.NewFeatureSet(), []diag.Code{warn, inArg, fail, inArg}},
		{"forbid type arguments", session.NewFeatureSet(forbid), []diag.Code{warn, warn, fail, fail}},
		{"eager checks", session.NewFeatureSet(eager), []diag.Code{fail, inArg, fail, inArg}},
		{"both", session.NewFeatureSet(forbid, eager), []diag.Code{fail, fail, fail, fail}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := checkSource(t, tt.features, missingSrc, missingLibrary())
			got := codes(bag, warn, inArg, fail)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMissingDependencyArgs(t *testing.T) {
	bag := checkSource(t, session.FeatureSet{}, missingSrc, missingLibrary())
	d := bag.Items()[0]
	if len(d.Args) != 2 || d.Args[0] != "gone.Base" || d.Args[1] != "demo.Mine" {
		t.Fatalf("args = %v", d.Args)
	}
}

func TestMissingSupertypesAreSharedAcrossUnits(t *testing.T) {
	src := `
file: a.vela
package: demo
imports: [lib.Derived]
decls:
  - fun: use
    params: [{name: d, type: Derived}]
`
	sess := session.Open(session.Options{})
	defer sess.Close()
	lib := missingLibrary()
	for range 2 {
		m := buildIn(t, sess, src, lib)
		if err := Run(context.Background(), sess, m, nil, diag.NopReporter{}); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	cache := session.CacheFor[[]MissingSupertype](sess, missingCacheName)
	if cache.Misses() != 1 {
		t.Fatalf("computed %d times, want 1", cache.Misses())
	}
	got, ok := cache.Peek("lib.Derived")
	if !ok || len(got) != 1 || got[0] != (MissingSupertype{FQName: "gone.Base", Origin: OriginSupertype}) {
		t.Fatalf("cached %v", got)
	}
}

func TestConstructorShape(t *testing.T) {
	src := `
file: a.vela
package: demo
decls:
  - class: P
    members:
      - constructor: primary
        params: [{name: x, type: Int}]
      - constructor: secondary
        params: [{name: s, type: String}]
        body: []
  - class: V
    modifiers: [value]
    members:
      - constructor: primary
        params: [{name: x, type: Int}]
      - constructor: secondary
        params: [{name: s, type: String}]
        delegate: {this: [{int: 1}]}
        body:
          - expr: {call: println, args: [{ref: s}]}
`
	shape := []diag.Code{diag.SemaSecondaryCtorMustDelegate, diag.SemaValueClassCtorBody}
	got := codes(checkSource(t, session.FeatureSet{}, src), shape...)
	if !slices.Equal(got, shape) {
		t.Fatalf("got %v, want %v", got, shape)
	}
	allowed := session.NewFeatureSet(session.ValueClassSecondaryConstructorsWithBodies)
	got = codes(checkSource(t, allowed, src), shape...)
	if !slices.Equal(got, shape[:1]) {
		t.Fatalf("with bodies allowed got %v", got)
	}
}

func TestDeprecatedCalls(t *testing.T) {
	src := `
file: a.vela
package: demo
decls:
  - fun: old
    annotations: [{name: Deprecated, args: {message: use fresh}}]
  - fun: older
    annotations: [{name: Deprecated, args: {level: ERROR}}]
  - class: Legacy
    annotations: [Deprecated]
  - fun: main
    body:
      - expr: {call: old}
      - expr: {call: older}
      - expr: {new: Legacy}
`
	bag := checkSource(t, session.FeatureSet{}, src)
	items := bag.Items()
	if len(items) != 3 {
		t.Fatalf("got %v", codes(bag))
	}
	tests := []struct {
		code diag.Code
		sev  diag.Severity
		arg  string
	}{
		{diag.SemaDeprecatedUsage, diag.SevWarning, "demo.old"},
		{diag.SemaDeprecatedUsageError, diag.SevError, "demo.older"},
		{diag.SemaDeprecatedUsage, diag.SevWarning, "demo.Legacy"},
	}
	for i, tt := range tests {
		d := items[i]
		if d.Code != tt.code || d.Severity != tt.sev || d.Args[0] != tt.arg {
			t.Errorf("diagnostic %d = %v %v %v, want %v %v %v", i, d.Code, d.Severity, d.Args, tt.code, tt.sev, tt.arg)
		}
	}
	if items[0].Message != "'demo.old' is deprecated: use fresh" {
		t.Errorf("message = %q", items[0].Message)
	}
}

func TestTypeConsistency(t *testing.T) {
	src := `
file: a.vela
package: demo
decls:
  - fun: takesInt
    params: [{name: x, type: Int}]
  - fun: takesString
    params: [{name: s, type: String}]
  - fun: count
    returns: Int
    body:
      - return: {string: nope}
  - fun: main
    params: [{name: maybe, type: "String?"}]
    body:
      - expr: {call: takesInt, args: [{string: s}]}
      - expr: {call: takesString, args: [{ref: maybe}]}
      - expr: {call: takesString, args: [{string: fine}]}
`
	want := []diag.Code{diag.SemaReturnTypeMismatch, diag.SemaTypeMismatch, diag.SemaNullableArgument}
	if got := codes(checkSource(t, session.FeatureSet{}, src)); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRegistryOrderAndShapes(t *testing.T) {
	var order []string
	reg := NewRegistry()
	for _, name := range []string{"first", "second"} {
		reg.Register(Rule{Name: name, Shape: ShapeFunction, Check: func(*Context, ir.Node) {
			order = append(order, name)
		}})
	}
	reg.Register(Rule{Name: "returns", Shape: ShapeReturn, Check: func(c *Context, n ir.Node) {
		if !c.Scope().IsValid() {
			t.Errorf("return checked without a scope")
		}
		order = append(order, "return")
	}})

	sess := session.Open(session.Options{})
	defer sess.Close()
	m := buildIn(t, sess, `
file: a.vela
package: demo
decls:
  - fun: f
    body:
      - return: ~
`)
	if err := Run(context.Background(), sess, m, reg, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"first", "second", "return"}; !slices.Equal(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate rule accepted")
		}
	}()
	reg := NewRegistry()
	rule := Rule{Name: "r", Shape: ShapeCall, Check: func(*Context, ir.Node) {}}
	reg.Register(rule)
	reg.Register(rule)
}

func TestRunRejectsStaleModule(t *testing.T) {
	sess := session.Open(session.Options{})
	defer sess.Close()
	m := buildIn(t, sess, spreadSrc)
	sess.Invalidate()
	err := Run(context.Background(), sess, m, nil, nil)
	if !errors.Is(err, session.ErrStaleReference) {
		t.Fatalf("err = %v, want stale reference", err)
	}
}
