package lower

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"vela/internal/build"
	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/session"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/syntax"
)

const shapesSrc = `
file: shapes.vela
package: demo
decls:
  - class: Point
    modifiers: [open]
    members:
      - constructor: primary
        params: [{name: x, type: Int}]
      - constructor: secondary
        params: [{name: s, type: String}]
        delegate: {this: [{int: 0}]}
        body:
          - expr: {call: println, args: [{ref: s}]}
          - if: {bool: true}
            then:
              - return: ~
          - expr: {call: println, args: [{this: true}]}
      - constructor: secondary
        params: [{name: a, type: Int}, {name: b, type: Int}]
        delegate: {this: [{string: x}]}
  - class: Sub
    supers: [Point]
    members:
      - constructor: primary
        delegate: {super: [{string: sub}]}
  - class: Boom
    supers: [Exception]
    members:
      - constructor: primary
      - constructor: secondary
        params: [{name: code, type: Int}]
        delegate: {this: []}
  - class: Meters
    modifiers: [value]
    members:
      - constructor: primary
        params: [{name: v, type: Int}]
      - constructor: secondary
        params: [{name: s, type: String}]
        delegate: {this: [{int: 1}]}
  - fun: main
    body:
      - val: p
        value: {new: Point, args: [{string: s}]}
      - val: q
        value: {new: Point, args: [{int: 1}]}
      - val: b
        value: {new: Boom, args: [{int: 2}]}
      - val: m
        value: {new: Meters, args: [{string: m}]}
`

func buildModule(t *testing.T, sess *session.Session, src string) *ir.Module {
	t.Helper()
	units, errs := syntax.DecodeString(src)
	if len(errs) > 0 {
		t.Fatalf("decode: %v", errs)
	}
	bag := diag.NewBag(100)
	m, err := build.Build(units, build.Options{
		Name:     "test",
		Session:  sess,
		Files:    source.NewFileSet(),
		Reporter: diag.BagReporter{Bag: bag},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("build diagnostics: %v", bag.Items())
	}
	return m
}

func openSession(t *testing.T, opts session.Options) *session.Session {
	t.Helper()
	sess := session.Open(opts)
	t.Cleanup(sess.Close)
	return sess
}

func class(t *testing.T, m *ir.Module, name string) *ir.Class {
	t.Helper()
	for _, c := range m.Classes() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("class %s not found", name)
	return nil
}

func function(t *testing.T, m *ir.Module, name string) *ir.Function {
	t.Helper()
	var out *ir.Function
	m.Inspect(func(n ir.Node) bool {
		if fn, ok := n.(*ir.Function); ok && fn.Name == name && out == nil {
			out = fn
		}
		return true
	})
	if out == nil {
		t.Fatalf("function %s not found", name)
	}
	return out
}

func localValue(fn *ir.Function, i int) *ir.Expr {
	return fn.Body.Stmts[i].Data.(*ir.VarData).Value
}

// lowered builds shapesSrc and lowers it, returning the module together
// with the secondary constructors as they were before lowering.
func lowered(t *testing.T) (*ir.Module, *Lowerer, []*ir.Constructor) {
	t.Helper()
	sess := openSession(t, session.Options{})
	m := buildModule(t, sess, shapesSrc)
	var secondaries []*ir.Constructor
	m.Inspect(func(n ir.Node) bool {
		if ctor, ok := n.(*ir.Constructor); ok && !ctor.Primary {
			secondaries = append(secondaries, ctor)
		}
		return true
	})
	l := NewLowerer(sess, m)
	if err := DefaultPipeline(l).Run(context.Background(), m); err != nil {
		t.Fatalf("lower: %v", err)
	}
	return m, l, secondaries
}

func TestLowerReplacesSecondaryConstructors(t *testing.T) {
	m, _, _ := lowered(t)
	point := class(t, m, "Point")
	var got []string
	for _, d := range point.Members {
		got = append(got, d.DeclName())
	}
	want := "<init> Point_init_$Init$ Point_init_$Create$ Point_init_$Init$ Point_init_$Create$"
	if strings.Join(got, " ") != want {
		t.Fatalf("members = %v", got)
	}
	for _, d := range point.Members[1:] {
		if d.(*ir.Function).ParentNode() != point {
			t.Fatalf("%s not linked to its class", d.DeclName())
		}
	}
	meters := class(t, m, "Meters")
	if len(meters.Constructors()) != 2 {
		t.Fatalf("value class constructors were lowered")
	}
}

func TestLowerSignaturesRoundTrip(t *testing.T) {
	m, l, secondaries := lowered(t)
	for _, ctor := range secondaries {
		cls := ctor.Class()
		init, factory, ok := l.Artifacts(ctor)
		if cls.IsValue() {
			if ok {
				t.Fatalf("value class %s constructor lowered", cls.Name)
			}
			continue
		}
		if !ok {
			t.Fatalf("%s constructor not lowered", cls.Name)
		}
		if len(init.Params) != len(ctor.Params)+1 || len(factory.Params) != len(ctor.Params) {
			t.Fatalf("%s: init has %d params, factory %d, constructor %d", cls.Name, len(init.Params), len(factory.Params), len(ctor.Params))
		}
		for i, p := range ctor.Params {
			if init.Params[i].Type != p.Type || factory.Params[i].Type != p.Type || init.Params[i].Name != p.Name {
				t.Fatalf("%s param %d differs", cls.Name, i)
			}
		}
		this := init.Params[len(init.Params)-1]
		if this != init.This || this.Name != "$this" || this.Type != cls.Type {
			t.Fatalf("%s: trailing parameter is %+v", cls.Name, this)
		}
		if init.Result != cls.Type || factory.Result != cls.Type {
			t.Fatalf("%s: artifacts do not return the class", cls.Name)
		}
		if init.Visibility != symbols.VisInternal || init.Origin != ir.OriginSynthesized || !init.Flags.Has(ir.FuncFinal) {
			t.Fatalf("%s: init declared as %v/%v/%v", cls.Name, init.Visibility, init.Origin, init.Flags)
		}
		if factory.Visibility != ctor.Visibility || factory.Span != ctor.Span || init.Span != ctor.Span {
			t.Fatalf("%s: factory does not keep the constructor's visibility and span", cls.Name)
		}
		sig := m.Symbols.Get(init.Symbol).Signature
		if sig.Arity() != len(init.Params) || sig.Result != cls.Type {
			t.Fatalf("%s: init signature %+v", cls.Name, sig)
		}
	}
}

func TestLowerInitBodyRemapsSymbols(t *testing.T) {
	_, l, secondaries := lowered(t)
	ctor := secondaries[0]
	init, _, _ := l.Artifacts(ctor)
	stmts := init.Body.Stmts
	if len(stmts) != 5 {
		t.Fatalf("init body has %d statements", len(stmts))
	}
	deleg := stmts[0].Data.(*ir.ExprStmtData).Expr
	if deleg.Kind != ir.ExprDelegatingCall {
		t.Fatalf("delegation to the primary constructor should stay, got %v", deleg.Kind)
	}
	printArg := stmts[1].Data.(*ir.ExprStmtData).Expr.Args()[0].Data.(*ir.GetValueData)
	if printArg.Symbol != init.Params[0].Symbol {
		t.Fatalf("parameter read not remapped")
	}
	early := stmts[2].Data.(*ir.IfData).Then.Stmts[0].Data.(*ir.ReturnData)
	if early.Target != init.Symbol || early.Value.Data.(*ir.GetValueData).Symbol != init.This.Symbol {
		t.Fatalf("early return not rewritten to return $this")
	}
	this := stmts[3].Data.(*ir.ExprStmtData).Expr.Args()[0].Data.(*ir.GetValueData)
	if this.Symbol != init.This.Symbol {
		t.Fatalf("receiver not remapped to $this")
	}
	last := stmts[4].Data.(*ir.ReturnData)
	if last.Target != init.Symbol || last.Value.Data.(*ir.GetValueData).Symbol != init.This.Symbol {
		t.Fatalf("init does not end with return $this")
	}
	// the constructor itself is untouched
	if ctor.Body.Stmts[1].Data.(*ir.IfData).Then.Stmts[0].Data.(*ir.ReturnData).Value != nil {
		t.Fatalf("lowering modified the original constructor body")
	}
}

const cellSrc = `
file: cell.vela
package: demo
decls:
  - class: Cell
    members:
      - constructor: primary
        params: [{name: v, type: Int}]
      - constructor: secondary
        params: [{name: s, type: String}]
        delegate: {this: [{int: 0}]}
        body:
          - val: n
            value: {ref: s}
          - expr: {call: println, args: [{ref: n}]}
          - block:
              - val: k
                value: {ref: n}
`

func TestLowerInitBodyOwnsItsLocals(t *testing.T) {
	sess := openSession(t, session.Options{})
	m := buildModule(t, sess, cellSrc)
	ctor := class(t, m, "Cell").Constructors()[1]
	l := NewLowerer(sess, m)
	if err := DefaultPipeline(l).Run(context.Background(), m); err != nil {
		t.Fatalf("lower: %v", err)
	}
	init, _, ok := l.Artifacts(ctor)
	if !ok {
		t.Fatal("no artifacts for the secondary constructor")
	}
	table := m.Symbols

	body := init.Body
	if !body.Scope.IsValid() || body.Scope == ctor.Body.Scope {
		t.Fatalf("init body scope = %v, constructor body scope = %v", body.Scope, ctor.Body.Scope)
	}
	if parent := table.Scopes.Get(body.Scope).Parent; parent != init.Scope {
		t.Fatalf("init body scope parent = %v, want %v", parent, init.Scope)
	}

	stmts := body.Stmts
	if len(stmts) != 5 {
		t.Fatalf("init body has %d statements", len(stmts))
	}
	oldN := ctor.Body.Stmts[0].Data.(*ir.VarData).Symbol
	n := stmts[1].Data.(*ir.VarData).Symbol
	if n == oldN {
		t.Fatal("local n still belongs to the constructor")
	}
	if sym := table.Get(n); sym.Owner != init.Symbol || sym.Scope != body.Scope {
		t.Fatalf("local n owner = %v scope = %v", sym.Owner, sym.Scope)
	}
	if read := stmts[2].Data.(*ir.ExprStmtData).Expr.Args()[0].Data.(*ir.GetValueData); read.Symbol != n {
		t.Fatalf("read of n not remapped")
	}

	inner := stmts[3].Data.(*ir.BlockData).Block
	if inner.Scope == ctor.Body.Stmts[2].Data.(*ir.BlockData).Block.Scope {
		t.Fatal("nested block keeps the constructor's scope")
	}
	if parent := table.Scopes.Get(inner.Scope).Parent; parent != body.Scope {
		t.Fatalf("nested block parent = %v, want %v", parent, body.Scope)
	}
	k := inner.Stmts[0].Data.(*ir.VarData)
	if sym := table.Get(k.Symbol); sym.Owner != init.Symbol || sym.Scope != inner.Scope {
		t.Fatalf("local k owner = %v scope = %v", sym.Owner, sym.Scope)
	}
	if k.Value.Data.(*ir.GetValueData).Symbol != n {
		t.Fatal("nested read of n not remapped")
	}
	if got := ctor.Body.Stmts[1].Data.(*ir.ExprStmtData).Expr.Args()[0].Data.(*ir.GetValueData).Symbol; got != oldN {
		t.Fatal("lowering modified the original constructor body")
	}
}

func TestLowerRedirectsCallSites(t *testing.T) {
	m, l, secondaries := lowered(t)
	_, factory, _ := l.Artifacts(secondaries[0])
	init1, _, _ := l.Artifacts(secondaries[0])
	main := function(t, m, "main")

	p := localValue(main, 0)
	call, ok := p.Data.(*ir.CallData)
	if !ok || p.Kind != ir.ExprCall || call.Callee != factory.Symbol || len(call.Args) != 1 {
		t.Fatalf("Point(s) not redirected to the factory: %v", p.Kind)
	}
	if q := localValue(main, 1); q.Kind != ir.ExprNew {
		t.Fatalf("primary constructor call rewritten to %v", q.Kind)
	}
	if v := localValue(main, 3); v.Kind != ir.ExprNew {
		t.Fatalf("value class constructor call rewritten to %v", v.Kind)
	}

	// init of the second constructor delegates to the first one
	init2, _, _ := l.Artifacts(secondaries[1])
	deleg := init2.Body.Stmts[0].Data.(*ir.ExprStmtData).Expr
	dc := deleg.Data.(*ir.CallData)
	if dc.Callee != init1.Symbol || len(dc.Args) != 2 {
		t.Fatalf("this(...) not redirected to the initializer")
	}
	if dc.Args[1].Data.(*ir.GetValueData).Symbol != init2.This.Symbol {
		t.Fatalf("initializer does not forward its own $this")
	}

	// a primary constructor delegating to a secondary one passes its receiver
	sub := class(t, m, "Sub").PrimaryConstructor()
	sc := sub.Delegation.Data.(*ir.CallData)
	if sc.Callee != init1.Symbol || sc.Args[len(sc.Args)-1].Data.(*ir.GetValueData).Symbol != sub.Receiver {
		t.Fatalf("super(...) not redirected with the constructor receiver")
	}
}

func TestLowerThrowableFactoryOrder(t *testing.T) {
	m, _, _ := lowered(t)
	boom := class(t, m, "Boom")
	var factory *ir.Function
	for _, d := range boom.Members {
		if fn, ok := d.(*ir.Function); ok && fn.Role == ir.RoleFactory {
			factory = fn
		}
	}
	if factory == nil {
		t.Fatal("Boom has no factory")
	}
	stmts := factory.Body.Stmts
	if len(stmts) != 3 {
		t.Fatalf("factory body has %d statements", len(stmts))
	}
	tmp := stmts[0].Data.(*ir.VarData)
	init := tmp.Value.Data.(*ir.CallData)
	if args := init.Args; args[len(args)-1].Kind != ir.ExprCreateObject {
		t.Fatalf("instance not created as the last init argument")
	}
	capture := stmts[1].Data.(*ir.ExprStmtData).Expr.Data.(*ir.CaptureStackData)
	if capture.Instance.Data.(*ir.GetValueData).Symbol != tmp.Symbol || capture.Function != factory.Symbol {
		t.Fatalf("captureStack(tmp, factory) expected")
	}
	ret := stmts[2].Data.(*ir.ReturnData)
	if ret.Target != factory.Symbol || ret.Value.Data.(*ir.GetValueData).Symbol != tmp.Symbol {
		t.Fatalf("factory must return tmp")
	}

	// ordinary classes return the init call directly
	point := class(t, m, "Point")
	pf := point.Members[2].(*ir.Function)
	if len(pf.Body.Stmts) != 1 || pf.Body.Stmts[0].Kind != ir.StmtReturn {
		t.Fatalf("Point factory body: %d statements", len(pf.Body.Stmts))
	}
}

func TestLowerMemoizesArtifacts(t *testing.T) {
	sess := openSession(t, session.Options{})
	m := buildModule(t, sess, shapesSrc)
	l := NewLowerer(sess, m)
	ctor := class(t, m, "Point").Constructors()[1]

	before := m.Symbols.Symbols.Len()
	const workers = 8
	results := make([]ctorArtifacts, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = l.artifactsFor(ctor, newVisit())
		}()
	}
	wg.Wait()
	for i, r := range results {
		if r != results[0] {
			t.Fatalf("worker %d got a different pair", i)
		}
	}
	added := m.Symbols.Symbols.Len() - before

	again := SecondaryConstructors{l: l}.TransformFlat(ctor)
	if again[0] != results[0].Init || again[1] != results[0].Factory {
		t.Fatalf("second transform synthesized again")
	}
	if m.Symbols.Symbols.Len()-before != added {
		t.Fatalf("symbols added after memoized lookup")
	}
	if l.memo.state(ctor) != stateRewritten {
		t.Fatalf("state = %v", l.memo.state(ctor))
	}
}

func TestLowerDetectsReentrantSynthesis(t *testing.T) {
	sess := openSession(t, session.Options{})
	m := buildModule(t, sess, shapesSrc)
	l := NewLowerer(sess, m)
	ctor := class(t, m, "Point").Constructors()[1]
	v := newVisit()
	if _, build := l.memo.acquire(ctor, v); !build {
		t.Fatal("first acquire must claim the constructor")
	}
	defer func() {
		ie, ok := recover().(*InternalError)
		if !ok || ie.Code != diag.InternalDuplicateSynthesis {
			t.Fatalf("recovered %v", ie)
		}
	}()
	l.memo.acquire(ctor, v)
}

func TestLowerUnresolvedDelegationAbortsUnit(t *testing.T) {
	sess := openSession(t, session.Options{})
	m := buildModule(t, sess, shapesSrc)
	point := class(t, m, "Point")
	main := function(t, m, "main")
	bad := &ir.Expr{
		Kind: ir.ExprDelegatingCall,
		Type: point.Type,
		Span: main.Span,
		Data: &ir.DelegatingCallData{Ctor: point.Constructors()[1].Symbol},
	}
	main.Body.Stmts = append(main.Body.Stmts, &ir.Stmt{Kind: ir.StmtExpr, Span: main.Span, Data: &ir.ExprStmtData{Expr: bad}})
	ir.LinkModule(m)

	err := Lower(context.Background(), sess, m)
	var ie *InternalError
	if !errors.As(err, &ie) || ie.Code != diag.InternalUnresolvedDelegation {
		t.Fatalf("err = %v", err)
	}
	bag := diag.NewBag(10)
	ie.Report(diag.BagReporter{Bag: bag})
	if !bag.HasFatal() {
		t.Fatalf("internal error not reported as fatal")
	}
}

func TestLowerBypassesES6Mode(t *testing.T) {
	sess := openSession(t, session.Options{ES6Mode: true})
	m := buildModule(t, sess, shapesSrc)
	before := ir.Dump(m)
	if err := Lower(context.Background(), sess, m); err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if after := ir.Dump(m); after != before {
		t.Fatalf("es6 mode lowered constructors:\n%s", after)
	}
}

func TestValidateRejectsUnloweredModule(t *testing.T) {
	sess := openSession(t, session.Options{})
	m := buildModule(t, sess, shapesSrc)
	err := NewLowerer(sess, m).Validate(m)
	var ie *InternalError
	if !errors.As(err, &ie) || ie.Code != diag.InternalMalformedIR {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "secondary constructor survived") {
		t.Fatalf("message = %v", err)
	}
}

func TestPipelineNames(t *testing.T) {
	sess := openSession(t, session.Options{})
	m := buildModule(t, sess, shapesSrc)
	got := strings.Join(DefaultPipeline(NewLowerer(sess, m)).Names(), ",")
	if got != "secondary-constructors,secondary-call-sites,validate" {
		t.Fatalf("passes = %s", got)
	}
}
