package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vela/internal/diag"
	"vela/internal/diagfmt"
	"vela/internal/driver"
)

// outputOptions are the rendering flags shared by commands that report
// diagnostics.
type outputOptions struct {
	format    string
	pathMode  diagfmt.PathMode
	showNotes bool
	color     bool
	quiet     bool
	baseDir   string
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json)")
	cmd.Flags().String("path-mode", "auto", "how paths are shown (auto|absolute|relative|basename)")
	cmd.Flags().Bool("notes", true, "show diagnostic notes")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("no-warnings", false, "drop warnings")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

func readOutputOptions(cmd *cobra.Command, setup *runSetup) (outputOptions, error) {
	flags := cmd.Flags()
	out := outputOptions{baseDir: setup.baseDir}
	var err error
	if out.format, err = flags.GetString("format"); err != nil {
		return out, err
	}
	out.format = strings.ToLower(out.format)
	switch out.format {
	case "pretty", "short", "json":
	default:
		return out, fmt.Errorf("unsupported format %q (must be pretty, short or json)", out.format)
	}
	mode, err := flags.GetString("path-mode")
	if err != nil {
		return out, err
	}
	var ok bool
	if out.pathMode, ok = diagfmt.ParsePathMode(mode); !ok {
		return out, fmt.Errorf("invalid --path-mode %q", mode)
	}
	if out.showNotes, err = flags.GetBool("notes"); err != nil {
		return out, err
	}
	if out.quiet, err = flags.GetBool("quiet"); err != nil {
		return out, err
	}
	if out.color, err = useColor(cmd); err != nil {
		return out, err
	}
	if setup.opts.WarningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
		return out, err
	}
	if setup.opts.IgnoreWarnings, err = flags.GetBool("no-warnings"); err != nil {
		return out, err
	}
	return out, nil
}

type unitJSON struct {
	Path   string                    `json:"path"`
	Output diagfmt.DiagnosticsOutput `json:"output"`
}

type resultJSON struct {
	Run   diagfmt.DiagnosticsOutput `json:"run"`
	Units []unitJSON                `json:"units"`
}

// renderResult writes the diagnostics of res to w and, unless quiet, a
// summary line.
func renderResult(w io.Writer, res *driver.Result, opts outputOptions) error {
	if opts.format == "json" {
		jsonOpts := diagfmt.JSONOpts{IncludePositions: true, PathMode: opts.pathMode, BaseDir: opts.baseDir, IncludeNotes: opts.showNotes}
		doc := resultJSON{Run: diagfmt.BuildDiagnosticsOutput(res.Bag, nil, jsonOpts)}
		for _, u := range res.Units {
			doc.Units = append(doc.Units, unitJSON{Path: u.Path, Output: diagfmt.BuildDiagnosticsOutput(u.Bag, u.Files, jsonOpts)})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	render := func(bag *diag.Bag, u *driver.UnitResult) error {
		bag.Sort()
		if opts.format == "short" {
			if u == nil {
				return diagfmt.Short(w, bag, nil, opts.showNotes)
			}
			return diagfmt.Short(w, bag, u.Files, opts.showNotes)
		}
		prettyOpts := diagfmt.PrettyOpts{Color: opts.color, Context: 1, PathMode: opts.pathMode, BaseDir: opts.baseDir, ShowNotes: opts.showNotes}
		if u == nil {
			diagfmt.Pretty(w, bag, nil, prettyOpts)
		} else {
			diagfmt.Pretty(w, bag, u.Files, prettyOpts)
		}
		return nil
	}
	if err := render(res.Bag, nil); err != nil {
		return err
	}
	for i := range res.Units {
		if err := render(res.Units[i].Bag, &res.Units[i]); err != nil {
			return err
		}
	}
	if !opts.quiet {
		fmt.Fprintln(w, summary(res))
	}
	return nil
}

func summary(res *driver.Result) string {
	var errs, warns, aborted int
	count := func(bag *diag.Bag) {
		for _, d := range bag.Items() {
			switch d.Severity {
			case diag.SevError, diag.SevFatal:
				errs++
			case diag.SevWarning:
				warns++
			}
		}
	}
	count(res.Bag)
	for _, u := range res.Units {
		count(u.Bag)
		if u.Abort != nil {
			aborted++
		}
	}
	s := fmt.Sprintf("%d %s, %d %s in %d %s", errs, plural(errs, "error"), warns, plural(warns, "warning"), len(res.Units), plural(len(res.Units), "unit"))
	if aborted > 0 {
		s += fmt.Sprintf(" (%d aborted)", aborted)
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
