package diag

import (
	"slices"

	"vela/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is an immutable finding. Args holds the message parameters the
// message was rendered from, kept for machine-readable output.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Args     []string
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string, args ...string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
		Args:     slices.Clone(args),
	}
}

func NewError(code Code, primary source.Span, msg string, args ...string) Diagnostic {
	return New(SevError, code, primary, msg, args...)
}

// WithNote returns a copy with an extra note; the receiver is untouched.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(slices.Clip(d.Notes), Note{Span: sp, Msg: msg})
	return d
}

// IsError reports whether d counts towards a failing exit code.
func (d Diagnostic) IsError() bool {
	return d.Severity >= SevError
}
