// Package driver runs the per-unit pipeline (decode, build, check, lower)
// over many units in parallel and collects the results in input order.
package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"vela/internal/check"
	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/library"
	"vela/internal/observ"
	"vela/internal/session"
	"vela/internal/source"
	"vela/internal/trace"
)

// Stage selects how far each unit is taken.
type Stage string

const (
	StageBuild Stage = "build"
	StageCheck Stage = "check"
	StageLower Stage = "lower"
)

var stageOrder = map[Stage]int{StageBuild: 0, StageCheck: 1, StageLower: 2}

// Reaches reports whether a run up to s includes other.
func (s Stage) Reaches(other Stage) bool {
	return stageOrder[s] >= stageOrder[other]
}

// Options configures Run.
type Options struct {
	Stage Stage
	// Session is used when set; otherwise Run opens one from Features and
	// ES6Mode and closes it before returning.
	Session          *session.Session
	Features         session.FeatureSet
	ES6Mode          bool
	MaxDiagnostics   int
	Jobs             int
	Libraries        []string
	Registry         *check.Registry
	IgnoreWarnings   bool
	WarningsAsErrors bool
	EnableTimings    bool
	// Progress receives queued, per-stage and final events of every unit.
	Progress ProgressSink
}

// UnitResult is the outcome of one unit. Module is nil when the unit
// could not be built or was aborted.
type UnitResult struct {
	Path   string
	Files  *source.FileSet
	Bag    *diag.Bag
	Module *ir.Module
	Abort  *UnitAbort
	Timing *observ.Report
}

// Result collects every unit in input order. Bag holds findings about the
// run itself, such as unreadable libraries.
type Result struct {
	Units []UnitResult
	Bag   *diag.Bag
}

// HasErrors reports whether any unit or the run itself failed.
func (r *Result) HasErrors() bool {
	if r.Bag.HasErrors() {
		return true
	}
	for _, u := range r.Units {
		if u.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// ExitCode is 1 when any error or fatal diagnostic was reported.
func (r *Result) ExitCode() int {
	if r.HasErrors() {
		return 1
	}
	return 0
}

// Run processes every path as one unit. Units run concurrently up to
// opts.Jobs and a failing unit never affects the others. The returned
// error is only set when ctx is cancelled.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if opts.Stage == "" {
		opts.Stage = StageCheck
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "driver")
	defer span.End(string(opts.Stage))

	sess := opts.Session
	if sess == nil {
		sess = session.Open(session.Options{Features: opts.Features, ES6Mode: opts.ES6Mode})
		defer sess.Close()
	}
	res := &Result{Units: make([]UnitResult, len(paths)), Bag: diag.NewBag(opts.MaxDiagnostics)}

	readers := openLibraries(opts.Libraries, diag.BagReporter{Bag: res.Bag})
	defer library.CloseAll(readers)

	shared := &unitShared{
		sess:      sess,
		opts:      opts,
		strings:   source.NewSharedInterner(),
		libraries: library.Providers(readers),
	}

	for _, path := range paths {
		emit(opts.Progress, Event{Path: path, Stage: opts.Stage, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// indexes are unique per goroutine, no lock needed
			res.Units[i] = shared.run(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
