package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"vela/internal/build"
	"vela/internal/check"
	"vela/internal/diag"
	"vela/internal/lower"
	"vela/internal/observ"
	"vela/internal/session"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/syntax"
	"vela/internal/trace"
)

// unitShared is the read-only state every unit of a run sees.
type unitShared struct {
	sess      *session.Session
	opts      Options
	strings   *source.SharedInterner
	libraries symbols.Providers
}

// run takes one unit through the requested stages. It never panics: a
// failure inside the unit is recorded as its Abort.
func (s *unitShared) run(ctx context.Context, path string) (res UnitResult) {
	res = UnitResult{
		Path:  path,
		Files: source.NewFileSet(),
		Bag:   diag.NewBag(s.opts.MaxDiagnostics),
	}
	reporter := diag.BagReporter{Bag: res.Bag}
	timer := observ.NewTimer()
	started := time.Now()
	ctx, span := trace.Start(ctx, trace.ScopeUnit, "unit")

	defer func() {
		if rec := recover(); rec != nil {
			res.Module = nil
			res.Abort = &UnitAbort{Path: path, Code: diag.InternalPanic, Err: fmt.Errorf("panic: %v\n%s", rec, debug.Stack())}
			res.Abort.Report(reporter)
		}
		s.finish(&res, timer)
		span.End(path)
		status := StatusDone
		if res.Bag.HasErrors() {
			status = StatusError
		}
		emit(s.opts.Progress, Event{Path: path, Stage: s.opts.Stage, Status: status, Err: res.abortErr(), Elapsed: time.Since(started)})
	}()

	phase := timer.Begin("read")
	content, err := os.ReadFile(path) // #nosec G304 -- path is provided by the caller
	timer.End(phase, "")
	if err != nil {
		diag.ReportError(reporter, diag.IOLoadFileError, source.Span{}, err.Error()).WithArgs(path).Emit()
		return res
	}
	fileID := res.Files.Add(path, content, 0)

	phase = timer.Begin("decode")
	units, errs := syntax.Decode(bytes.NewReader(content))
	timer.End(phase, fmt.Sprintf("%d units", len(units)))
	yamlFile := res.Files.Get(fileID)
	for _, e := range errs {
		off := yamlFile.Offset(source.LineCol{Line: uint32(max(e.Line, 0)), Col: uint32(max(e.Col, 0))}) //nolint:gosec // non-negative
		diag.ReportError(reporter, e.Code, source.Span{File: fileID, Start: off, End: off}, e.Msg).Emit()
	}
	if len(units) == 0 {
		return res
	}

	s.working(path, StageBuild)
	phase = timer.Begin("build")
	m, err := build.Build(units, build.Options{
		Name:      unitName(path),
		Session:   s.sess,
		Files:     res.Files,
		Strings:   s.strings,
		Libraries: s.libraries,
		Reporter:  reporter,
	})
	timer.End(phase, "")
	if err != nil {
		s.abort(&res, reporter, internalCode(err), source.Span{}, err)
		return res
	}
	res.Module = m

	if !s.opts.Stage.Reaches(StageCheck) {
		return res
	}
	s.working(path, StageCheck)
	phase = timer.Begin("check")
	err = check.Run(ctx, s.sess, m, s.opts.Registry, reporter)
	timer.End(phase, "")
	if err != nil {
		s.abort(&res, reporter, internalCode(err), source.Span{}, err)
		return res
	}

	if !s.opts.Stage.Reaches(StageLower) || res.Bag.HasErrors() {
		return res
	}
	s.working(path, StageLower)
	phase = timer.Begin("lower")
	err = lower.Lower(ctx, s.sess, m)
	timer.End(phase, "")
	if err != nil {
		var ie *lower.InternalError
		if errors.As(err, &ie) {
			s.abort(&res, reporter, ie.Code, ie.Span, err)
		} else {
			s.abort(&res, reporter, diag.InternalError, source.Span{}, err)
		}
	}
	return res
}

// internalCode classifies a build or check failure.
func internalCode(err error) diag.Code {
	if errors.Is(err, session.ErrStaleReference) {
		return diag.InternalStaleReference
	}
	return diag.InternalError
}

func (s *unitShared) working(path string, stage Stage) {
	emit(s.opts.Progress, Event{Path: path, Stage: stage, Status: StatusWorking})
}

func (r *UnitResult) abortErr() error {
	if r.Abort == nil {
		return nil
	}
	return r.Abort
}

func (s *unitShared) abort(res *UnitResult, r diag.Reporter, code diag.Code, sp source.Span, err error) {
	res.Module = nil
	res.Abort = &UnitAbort{Path: res.Path, Code: code, Span: sp, Err: err}
	res.Abort.Report(r)
}

// finish applies the warning policy and attaches timings.
func (s *unitShared) finish(res *UnitResult, timer *observ.Timer) {
	switch {
	case s.opts.IgnoreWarnings:
		res.Bag.Filter(func(d diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
	case s.opts.WarningsAsErrors:
		res.Bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	}
	if !s.opts.EnableTimings {
		return
	}
	report := timer.Report()
	res.Timing = &report
	appendTimingDiagnostic(res.Bag, timingPayload{
		Kind:    "unit",
		Path:    res.Path,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	})
}

// unitName is the file name without its extension.
func unitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
