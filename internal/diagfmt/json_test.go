package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"vela/internal/diag"
	"vela/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("src/test.vela", []byte("fun main() {\n    val x: Int = \"s\"\n}"))

	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.SemaTypeMismatch, source.Span{File: fileID, Start: 30, End: 33}, "Type mismatch", "Int", "String").
		WithNote(source.Span{File: fileID, Start: 17, End: 27}, "declared here")
	bag.Add(d)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", output.Count, len(output.Diagnostics))
	}

	got := output.Diagnostics[0]
	want := LocationJSON{File: "test.vela", StartByte: 30, EndByte: 33, StartLine: 2, StartCol: 18, EndLine: 2, EndCol: 21}
	if got.Severity != "ERROR" || got.Code != "SEM3010" || got.Message != "Type mismatch" {
		t.Errorf("diagnostic = %+v", got)
	}
	if got.Location != want {
		t.Errorf("location = %+v, want %+v", got.Location, want)
	}
	if len(got.Args) != 2 || got.Args[1] != "String" {
		t.Errorf("args = %v", got.Args)
	}
	if len(got.Notes) != 1 || got.Notes[0].Location.StartLine != 2 || got.Notes[0].Location.StartCol != 5 {
		t.Errorf("notes = %+v", got.Notes)
	}
}

func TestJSONOptions(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.vela", []byte("x\n"))
	bag := diag.NewBag(0)
	for range 3 {
		bag.Add(diag.New(diag.SevWarning, diag.SemaDeprecatedUsage, source.Span{File: id}, "old").
			WithNote(source.Span{File: id}, "here"))
	}
	bag.Add(diag.Diagnostic{Severity: diag.SevInfo, Code: diag.ObsTimings, Message: "timings", Notes: []diag.Note{{Msg: `{"kind":"unit"}`}}})

	tests := []struct {
		name      string
		opts      JSONOpts
		count     int
		dropped   int
		firstNote bool
	}{
		{"all", JSONOpts{}, 4, 0, false},
		{"max", JSONOpts{Max: 2}, 2, 2, false},
		{"notes", JSONOpts{IncludeNotes: true}, 4, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := BuildDiagnosticsOutput(bag, fs, tt.opts)
			if out.Count != tt.count || out.Dropped != tt.dropped {
				t.Fatalf("count = %d dropped = %d", out.Count, out.Dropped)
			}
			if has := len(out.Diagnostics[0].Notes) > 0; has != tt.firstNote {
				t.Errorf("first diagnostic notes = %v", out.Diagnostics[0].Notes)
			}
			last := out.Diagnostics[len(out.Diagnostics)-1]
			if last.Code == "OBS6001" && len(last.Notes) != 1 {
				t.Errorf("timing payload missing: %+v", last)
			}
			if out.Diagnostics[0].Location.StartLine != 0 {
				t.Errorf("positions included without IncludePositions")
			}
		})
	}
}

func TestJSONPathOnlyFile(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddPathOnly("lib.vela")
	off := source.PackLineCol(source.LineCol{Line: 7, Col: 2})
	out := BuildDiagnosticsOutput(singleError(fs, source.Span{File: id, Start: off, End: off}, "m"), fs, JSONOpts{IncludePositions: true})
	loc := out.Diagnostics[0].Location
	if loc.StartByte != 0 || loc.StartLine != 7 || loc.StartCol != 2 || loc.File != "lib.vela" {
		t.Errorf("location = %+v", loc)
	}
}
