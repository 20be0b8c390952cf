package driver

import (
	"fmt"

	"vela/internal/diag"
	"vela/internal/source"
)

// UnitAbort records why a unit stopped before its last stage.
type UnitAbort struct {
	Path string
	Code diag.Code
	Span source.Span
	Err  error
}

func (a *UnitAbort) Error() string {
	return fmt.Sprintf("%s: unit aborted: %v", a.Path, a.Err)
}

func (a *UnitAbort) Unwrap() error { return a.Err }

// Report emits a as a fatal diagnostic.
func (a *UnitAbort) Report(r diag.Reporter) {
	code := a.Code
	if code == 0 {
		code = diag.InternalPanic
	}
	diag.ReportFatal(r, code, a.Span, a.Error()).WithArgs(a.Path).Emit()
}
