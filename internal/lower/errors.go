package lower

import (
	"fmt"

	"vela/internal/diag"
	"vela/internal/source"
)

// InternalError reports a lowering invariant that does not hold. It aborts
// the unit being lowered and nothing else.
type InternalError struct {
	Code diag.Code
	Span source.Span
	Msg  string
	Err  error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code.ID(), e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
}

func (e *InternalError) Unwrap() error { return e.Err }

// Report emits e as a fatal diagnostic.
func (e *InternalError) Report(r diag.Reporter) {
	diag.ReportFatal(r, e.Code, e.Span, e.Error()).Emit()
}

func internalf(code diag.Code, sp source.Span, format string, args ...any) *InternalError {
	return &InternalError{Code: code, Span: sp, Msg: fmt.Sprintf(format, args...)}
}

// fail aborts the current unit.
func fail(code diag.Code, sp source.Span, format string, args ...any) {
	panic(internalf(code, sp, format, args...))
}
