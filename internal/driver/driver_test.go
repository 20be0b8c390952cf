package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"vela/internal/check"
	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/library"
	"vela/internal/session"
	"vela/internal/testkit"
)

func writeUnit(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func unitSrc(pkg string, decls string) string {
	return "file: " + pkg + ".vela\npackage: " + pkg + "\ndecls:\n" + decls
}

const pointDecls = `  - class: Point
    members:
      - constructor: primary
        params: [{name: x, type: Int}]
      - constructor: secondary
        params: [{name: s, type: String}]
        delegate: {this: [{int: 0}]}
  - fun: main
    body:
      - val: p
        value: {new: Point, args: [{string: s}]}
`

const deprecatedDecls = `  - fun: old
    annotations: [Deprecated]
  - fun: main
    body:
      - expr: {call: old}
`

func secondaryCount(m *ir.Module) int {
	n := 0
	m.Inspect(func(node ir.Node) bool {
		if c, ok := node.(*ir.Constructor); ok && !c.Primary {
			n++
		}
		return true
	})
	return n
}

func TestRunKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	names := []string{"delta", "alpha", "charlie", "bravo"}
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = writeUnit(t, dir, n+".yaml", unitSrc(n, pointDecls))
	}
	res, err := Run(context.Background(), paths, Options{Jobs: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Units) != len(paths) {
		t.Fatalf("units = %d", len(res.Units))
	}
	for i, u := range res.Units {
		if u.Path != paths[i] {
			t.Errorf("unit %d path = %s, want %s", i, u.Path, paths[i])
		}
		if u.Module == nil || u.Module.Name != names[i] {
			t.Errorf("unit %d module = %v", i, u.Module)
		}
		if u.Bag.HasErrors() {
			t.Errorf("unit %d: %v", i, u.Bag.Items())
		}
	}
	if res.ExitCode() != 0 {
		t.Errorf("exit code = %d", res.ExitCode())
	}
}

func TestRunIsolatesUnits(t *testing.T) {
	dir := t.TempDir()
	good := writeUnit(t, dir, "good.yaml", unitSrc("good", pointDecls))
	bomb := writeUnit(t, dir, "bomb.yaml", unitSrc("bomb", "  - class: Bomb\n"))
	missing := filepath.Join(dir, "missing.yaml")

	reg := check.DefaultRegistry()
	reg.Register(check.Rule{Name: "explode", Shape: check.ShapeClass, Check: func(_ *check.Context, n ir.Node) {
		if c := n.(*ir.Class); c.Name == "Bomb" {
			panic("boom")
		}
	}})

	res, err := Run(context.Background(), []string{good, bomb, missing}, Options{Stage: StageLower, Registry: reg})
	if err != nil {
		t.Fatal(err)
	}
	g, b, m := res.Units[0], res.Units[1], res.Units[2]

	if g.Bag.Len() != 0 || g.Module == nil || g.Abort != nil {
		t.Fatalf("good unit affected: %v", g.Bag.Items())
	}
	if n := secondaryCount(g.Module); n != 0 {
		t.Errorf("good unit kept %d secondary constructors", n)
	}

	if b.Abort == nil || b.Abort.Code != diag.InternalPanic || b.Module != nil {
		t.Fatalf("bomb unit = %+v", b)
	}
	if !b.Bag.HasFatal() {
		t.Errorf("bomb unit has no fatal diagnostic")
	}

	if m.Module != nil || !m.Bag.HasErrors() || m.Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Errorf("missing unit = %v", m.Bag.Items())
	}
	if res.ExitCode() != 1 {
		t.Errorf("exit code = %d", res.ExitCode())
	}
}

// injectDelegation appends a delegating call to Point's secondary
// constructor to every function named main. Lowering cannot resolve the
// instance such a call initializes.
func injectDelegation(_ *check.Context, n ir.Node) {
	fn := n.(*ir.Function)
	if fn.Name != "main" || fn.Body == nil {
		return
	}
	file, ok := fn.ParentNode().(*ir.File)
	if !ok {
		return
	}
	for _, d := range file.Decls {
		cls, ok := d.(*ir.Class)
		if !ok || cls.Name != "Point" {
			continue
		}
		ctor := cls.Constructors()[1]
		call := &ir.Expr{
			Kind: ir.ExprDelegatingCall,
			Type: cls.Type,
			Span: fn.Span,
			Data: &ir.DelegatingCallData{
				Ctor: ctor.Symbol,
				Args: []*ir.Expr{{Kind: ir.ExprLiteral, Span: fn.Span, Data: &ir.LiteralData{Kind: ir.LiteralString, Value: "s"}}},
			},
		}
		fn.Body.Stmts = append(fn.Body.Stmts, &ir.Stmt{Kind: ir.StmtExpr, Span: fn.Span, Data: &ir.ExprStmtData{Expr: call}})
		ir.Link(fn)
	}
}

func TestRunIsolatesLoweringFailures(t *testing.T) {
	dir := t.TempDir()
	first := writeUnit(t, dir, "first.yaml", unitSrc("first", pointDecls))
	broken := writeUnit(t, dir, "broken.yaml", unitSrc("broken", pointDecls))
	last := writeUnit(t, dir, "last.yaml", unitSrc("last", pointDecls))

	reg := check.NewRegistry()
	reg.Register(check.Rule{Name: "inject-delegation", Shape: check.ShapeFunction, Check: func(c *check.Context, n ir.Node) {
		if file, ok := n.ParentNode().(*ir.File); ok && file.Package == "broken" {
			injectDelegation(c, n)
		}
	}})

	res, err := Run(context.Background(), []string{first, broken, last}, Options{Stage: StageLower, Registry: reg, Jobs: 3})
	if err != nil {
		t.Fatal(err)
	}
	b := res.Units[1]
	if b.Abort == nil || b.Abort.Code != diag.InternalUnresolvedDelegation || b.Module != nil {
		t.Fatalf("broken unit = %+v", b)
	}
	if !b.Bag.HasFatal() {
		t.Errorf("broken unit has no fatal diagnostic")
	}
	if b.Abort.Span.IsZero() {
		t.Errorf("abort carries no position")
	}
	for _, i := range []int{0, 2} {
		u := res.Units[i]
		if u.Abort != nil || u.Module == nil || u.Bag.Len() != 0 {
			t.Fatalf("unit %s affected: %v", u.Path, u.Bag.Items())
		}
		if n := secondaryCount(u.Module); n != 0 {
			t.Errorf("unit %s kept %d secondary constructors", u.Path, n)
		}
		if err := testkit.CheckModuleInvariants(u.Module, u.Files); err != nil {
			t.Errorf("unit %s: %v", u.Path, err)
		}
	}
	if res.ExitCode() != 1 {
		t.Errorf("exit code = %d", res.ExitCode())
	}
}

// invalidatingSink bumps the session generation once checking starts.
type invalidatingSink struct {
	sess *session.Session
}

func (s invalidatingSink) OnEvent(ev Event) {
	if ev.Stage == StageCheck && ev.Status == StatusWorking {
		s.sess.Invalidate()
	}
}

func TestRunClassifiesInternalFailures(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "p.yaml", unitSrc("p", pointDecls))

	closed := session.Open(session.Options{})
	closed.Close()
	live := session.Open(session.Options{})
	defer live.Close()

	tests := []struct {
		name string
		opts Options
		want diag.Code
	}{
		{"closed session", Options{Session: closed}, diag.InternalError},
		{"invalidated before check", Options{Session: live, Progress: invalidatingSink{sess: live}}, diag.InternalStaleReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(context.Background(), []string{path}, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			u := res.Units[0]
			if u.Abort == nil || u.Abort.Code != tt.want {
				t.Fatalf("abort = %+v, want code %v", u.Abort, tt.want)
			}
			if !u.Bag.HasFatal() || u.Module != nil {
				t.Errorf("unit = %+v", u)
			}
		})
	}
	if got := internalCode(check.ErrNoModule); got != diag.InternalError {
		t.Errorf("internalCode(ErrNoModule) = %v", got)
	}
}

func TestRunStages(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "p.yaml", unitSrc("p", pointDecls))
	broken := writeUnit(t, dir, "broken.yaml", unitSrc("broken", pointDecls+
		"  - fun: bad\n    body:\n      - expr: {call: nowhere}\n"))

	tests := []struct {
		stage     Stage
		path      string
		secondary int
	}{
		{StageBuild, path, 1},
		{StageCheck, path, 1},
		{StageLower, path, 0},
		// units with errors are not lowered
		{StageLower, broken, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.stage)+"/"+filepath.Base(tt.path), func(t *testing.T) {
			res, err := Run(context.Background(), []string{tt.path}, Options{Stage: tt.stage})
			if err != nil {
				t.Fatal(err)
			}
			u := res.Units[0]
			if u.Module == nil {
				t.Fatalf("no module: %v", u.Bag.Items())
			}
			if got := secondaryCount(u.Module); got != tt.secondary {
				t.Errorf("secondary constructors = %d, want %d", got, tt.secondary)
			}
			if err := testkit.CheckModuleInvariants(u.Module, u.Files); err != nil {
				t.Errorf("invariants: %v", err)
			}
		})
	}
}

func TestRunReportsDecodeErrorsInYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "bad.yaml", "file: a.vela\npackage: a\ndecls:\n  - wat: 1\n")
	res, err := Run(context.Background(), []string{path}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	u := res.Units[0]
	if !u.Bag.HasErrors() {
		t.Fatal("expected a decode error")
	}
	d := u.Bag.Items()[0]
	start, _, ok := u.Files.Resolve(d.Primary)
	if !ok || start.Line != 4 {
		t.Errorf("decode error at %v (ok=%v), want line 4", start, ok)
	}
}

func TestWarningPolicy(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "dep.yaml", unitSrc("dep", deprecatedDecls))

	tests := []struct {
		name  string
		opts  Options
		items int
		exit  int
	}{
		{"default", Options{}, 1, 0},
		{"ignore", Options{IgnoreWarnings: true}, 0, 0},
		{"as errors", Options{WarningsAsErrors: true}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(context.Background(), []string{path}, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got := res.Units[0].Bag.Len(); got != tt.items {
				t.Errorf("items = %d, want %d", got, tt.items)
			}
			if got := res.ExitCode(); got != tt.exit {
				t.Errorf("exit = %d, want %d", got, tt.exit)
			}
		})
	}
}

func TestTimings(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "p.yaml", unitSrc("p", pointDecls))
	res, err := Run(context.Background(), []string{path}, Options{Stage: StageLower, EnableTimings: true})
	if err != nil {
		t.Fatal(err)
	}
	u := res.Units[0]
	if u.Timing == nil || len(u.Timing.Phases) != 5 {
		t.Fatalf("timing = %+v", u.Timing)
	}
	items := u.Bag.Items()
	last := items[len(items)-1]
	if last.Code != diag.ObsTimings || len(last.Notes) != 1 {
		t.Errorf("last diagnostic = %+v", last)
	}
}

func TestLibraryErrorsAreReportedOnce(t *testing.T) {
	dir := t.TempDir()
	future := filepath.Join(dir, "future")
	if err := os.MkdirAll(future, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := "unique_name = \"future\"\nabi_version = \"99.0.0\"\ncompiler_version = \"9.0.0\"\n"
	writeUnit(t, future, "manifest", manifest)
	path := writeUnit(t, dir, "p.yaml", unitSrc("p", pointDecls))

	res, err := Run(context.Background(), []string{path}, Options{
		Libraries: []string{filepath.Join(dir, "absent"), future},
	})
	if err != nil {
		t.Fatal(err)
	}
	var got []diag.Code
	for _, d := range res.Bag.Items() {
		got = append(got, d.Code)
	}
	if len(got) != 2 || got[0] != diag.IOLibraryError || got[1] != diag.IOIncompatibleABI {
		t.Errorf("run diagnostics = %v", got)
	}
	if res.Units[0].Bag.HasErrors() {
		t.Errorf("unit affected by library errors: %v", res.Units[0].Bag.Items())
	}
	if res.ExitCode() != 1 {
		t.Errorf("exit = %d", res.ExitCode())
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()
	path := writeUnit(t, dir, "p.yaml", unitSrc("p", pointDecls))
	_, err := Run(ctx, []string{path}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestUnitAbortUnwraps(t *testing.T) {
	a := &UnitAbort{Path: "x.yaml", Err: library.ErrIncompatibleABI}
	if !errors.Is(a, library.ErrIncompatibleABI) {
		t.Error("abort does not unwrap")
	}
	bag := diag.NewBag(0)
	a.Report(diag.BagReporter{Bag: bag})
	if d := bag.Items()[0]; d.Code != diag.InternalPanic || d.Severity != diag.SevFatal {
		t.Errorf("reported %+v", d)
	}
}

func TestUnitName(t *testing.T) {
	tests := map[string]string{
		"a/b/shapes.yaml": "shapes",
		"plain":           "plain",
		"x.tar.yaml":      "x.tar",
	}
	for in, want := range tests {
		if got := unitName(in); got != want {
			t.Errorf("unitName(%q) = %q, want %q", in, got, want)
		}
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events map[string][]Event
}

func (s *recordingSink) OnEvent(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		s.events = make(map[string][]Event)
	}
	s.events[evt.Path] = append(s.events[evt.Path], evt)
}

func TestRunReportsProgress(t *testing.T) {
	dir := t.TempDir()
	good := writeUnit(t, dir, "good.yaml", unitSrc("good", pointDecls))
	bad := writeUnit(t, dir, "bad.yaml", unitSrc("bad", "  - fun: f\n    body:\n      - expr: {call: nowhere}\n"))
	sink := &recordingSink{}
	if _, err := Run(context.Background(), []string{good, bad}, Options{Stage: StageLower, Progress: sink}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path   string
		stages []Stage
		last   Status
	}{
		{good, []Stage{StageBuild, StageCheck, StageLower}, StatusDone},
		// errors stop the unit before lowering
		{bad, []Stage{StageBuild, StageCheck}, StatusError},
	}
	for _, tt := range tests {
		evts := sink.events[tt.path]
		if len(evts) != len(tt.stages)+2 {
			t.Fatalf("%s: events = %+v", tt.path, evts)
		}
		if evts[0].Status != StatusQueued {
			t.Errorf("%s: first event %+v", tt.path, evts[0])
		}
		for i, stage := range tt.stages {
			if e := evts[i+1]; e.Status != StatusWorking || e.Stage != stage {
				t.Errorf("%s: event %d = %+v, want working %s", tt.path, i+1, e, stage)
			}
		}
		if last := evts[len(evts)-1]; last.Status != tt.last {
			t.Errorf("%s: last event %+v, want %s", tt.path, last, tt.last)
		}
	}
}
