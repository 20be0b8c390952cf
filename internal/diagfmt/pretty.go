package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"vela/internal/diag"
	"vela/internal/source"
)

type palette struct {
	sev    map[diag.Severity]*color.Color
	code   *color.Color
	path   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevFatal:   color.New(color.FgMagenta, color.Bold),
		},
		code:   color.New(color.Faint),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgGreen),
	}
	all := []*color.Color{p.code, p.path, p.gutter, p.caret, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty renders the bag for humans. Expects bag.Sort() to have run. Each
// diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a ^~~~ underline under the primary span
// and, when ShowNotes is set, the notes in the same form.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		writeHeader(w, p, fs, opts, d.Primary, p.sev[d.Severity].Sprint(d.Severity.String())+" "+p.code.Sprint(d.Code.ID()), d.Message)
		writeSnippet(w, p, fs, opts, d.Primary)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			writeHeader(w, p, fs, opts, n.Span, p.note.Sprint("note"), n.Msg)
			writeSnippet(w, p, fs, opts, n.Span)
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "... %d more diagnostics not shown\n", dropped)
	}
}

func writeHeader(w io.Writer, p palette, fs *source.FileSet, opts PrettyOpts, sp source.Span, label, msg string) {
	loc := location(fs, opts.PathMode, opts.BaseDir, sp)
	if loc == "" {
		fmt.Fprintf(w, "%s: %s\n", label, msg)
		return
	}
	fmt.Fprintf(w, "%s: %s: %s\n", p.path.Sprint(loc), label, msg)
}

func location(fs *source.FileSet, mode PathMode, baseDir string, sp source.Span) string {
	if fs == nil || sp.File == 0 {
		return ""
	}
	f := fs.Get(sp.File)
	if f == nil {
		return ""
	}
	start, _, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", displayPath(f, mode, baseDir), start.Line, start.Col)
}

// writeSnippet prints the lines around sp with the span underlined. Files
// known only by path print nothing.
func writeSnippet(w io.Writer, p palette, fs *source.FileSet, opts PrettyOpts, sp source.Span) {
	if fs == nil || sp.File == 0 {
		return
	}
	f := fs.Get(sp.File)
	if f == nil || f.Flags&source.FileNoText != 0 || len(f.Content) == 0 {
		return
	}
	start, end, _ := fs.Resolve(sp)
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0)) //nolint:gosec // non-negative
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	width := len(strconv.Itoa(int(last)))

	for n := first; n <= last; n++ {
		if n != start.Line && n > uint32(len(f.LineIdx)+1) { //nolint:gosec // line count fits
			break
		}
		raw := f.Line(n)
		text := expandTabs(raw)
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width, n), text)
		if n != start.Line {
			continue
		}
		pad := runewidth.StringWidth(expandTabs(columnPrefix(raw, start.Col)))
		span := 1
		if end.Line == start.Line && end.Col > start.Col {
			span = max(runewidth.StringWidth(expandTabs(columnPrefix(raw, end.Col)))-pad, 1)
		}
		marker := "^" + strings.Repeat("~", span-1)
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", pad), p.caret.Sprint(marker))
	}
}

// columnPrefix returns the text before the 1-based byte column col.
func columnPrefix(line string, col uint32) string {
	if col <= 1 {
		return ""
	}
	idx := int(col - 1)
	if idx > len(line) {
		idx = len(line)
	}
	return line[:idx]
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
