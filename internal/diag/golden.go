package diag

import (
	"fmt"
	"sort"
	"strings"

	"vela/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatGoldenDiagnostics renders diagnostics one per line, sorted, for
// golden files.
func FormatGoldenDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	rendered := renderAll(diags, fs, includeNotes)
	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})
	return join(rendered)
}

// FormatShortDiagnostics renders diagnostics one per line in report order.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return join(renderAll(diags, fs, includeNotes))
}

func renderAll(diags []Diagnostic, fs *source.FileSet, includeNotes bool) []goldenDiagnostic {
	out := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		out = append(out, render(d.Severity.Label(), d.Code, d.Primary, d.Message, fs))
		if includeNotes {
			for _, n := range d.Notes {
				out = append(out, render("note", d.Code, n.Span, n.Msg, fs))
			}
		}
	}
	return out
}

func render(sev string, code Code, span source.Span, msg string, fs *source.FileSet) goldenDiagnostic {
	g := goldenDiagnostic{
		Severity: sev,
		Code:     code.ID(),
		Message:  sanitizeMessage(msg),
		Column:   span.Start,
	}
	if fs == nil {
		return g
	}
	if f := fs.Get(span.File); f != nil {
		g.Path = f.Path
	}
	if start, _, ok := fs.Resolve(span); ok {
		g.Line, g.Column = start.Line, start.Col
	}
	return g
}

func join(rendered []goldenDiagnostic) string {
	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
