package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"vela/internal/diag"
	"vela/internal/source"
)

func singleError(fs *source.FileSet, sp source.Span, msg string) *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.SemaTypeMismatch, sp, msg))
	return bag
}

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("val x: Int = \"unterminated string\"\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.vela", content)
	bag := singleError(fs, source.Span{File: fileID, Start: 13, End: 34}, "Type mismatch")

	tests := []struct {
		name string
		mode PathMode
		want string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/test.vela:1:14: "},
		{"relative", PathModeRelative, "src/test.vela:1:14: "},
		{"basename", PathModeBasename, "test.vela:1:14: "},
		{"auto", PathModeAuto, "src/test.vela:1:14: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode, BaseDir: "/home/user/project"})
			out := buf.String()
			if !strings.HasPrefix(out, tt.want) {
				t.Errorf("output does not start with %q:\n%s", tt.want, out)
			}
			for _, part := range []string{"ERROR", "SEM3010", "Type mismatch"} {
				if !strings.Contains(out, part) {
					t.Errorf("missing %q in:\n%s", part, out)
				}
			}
		})
	}
}

func TestPrettyUnderlinesSpan(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		start uint32
		end   uint32
		want  string
	}{
		{"ascii", "val x: Int = \"oops\"", 13, 19, "  |              ^~~~~~"},
		{"wide runes", "val 名前 = x", 13, 14, "  |            ^"},
		{"tab", "\tval y = z", 9, 10, "  |             ^"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual("a.vela", []byte(tt.line+"\n"))
			var buf bytes.Buffer
			Pretty(&buf, singleError(fs, source.Span{File: id, Start: tt.start, End: tt.end}, "m"), fs, PrettyOpts{})
			lines := strings.Split(buf.String(), "\n")
			if len(lines) < 3 || lines[2] != tt.want {
				t.Errorf("underline = %q, want %q\n%s", lines[min(2, len(lines)-1)], tt.want, buf.String())
			}
		})
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.vela", []byte("fun f(vararg xs: String?)\nf(*a)\n"))
	d := diag.New(diag.SevError, diag.SemaSpreadOfNullable, source.Span{File: id, Start: 28, End: 30}, "spread of nullable").
		WithNote(source.Span{File: id, Start: 6, End: 24}, "parameter declared here")
	bag := diag.NewBag(0)
	bag.Add(d)

	var hidden, shown bytes.Buffer
	Pretty(&hidden, bag, fs, PrettyOpts{})
	Pretty(&shown, bag, fs, PrettyOpts{ShowNotes: true})
	if strings.Contains(hidden.String(), "note") {
		t.Errorf("notes shown without ShowNotes:\n%s", hidden.String())
	}
	if !strings.Contains(shown.String(), "a.vela:1:7: note: parameter declared here") {
		t.Errorf("note missing:\n%s", shown.String())
	}
}

func TestPrettyPathOnlyFile(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddPathOnly("lib.vela")
	off := source.PackLineCol(source.LineCol{Line: 3, Col: 5})
	var buf bytes.Buffer
	Pretty(&buf, singleError(fs, source.Span{File: id, Start: off, End: off}, "m"), fs, PrettyOpts{Context: 2})
	if got := buf.String(); got != "lib.vela:3:5: ERROR SEM3010: m\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPrettyColorAndDropped(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SemaTypeMismatch, source.Span{}, "first"))
	bag.Add(diag.NewError(diag.SemaTypeMismatch, source.Span{}, "second"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("escape codes without color: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("no escape codes with color: %q", colored.String())
	}
	if !strings.Contains(plain.String(), "... 1 more diagnostics not shown") {
		t.Errorf("dropped count missing:\n%s", plain.String())
	}
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.vela", []byte("val x = y\n"))
	var buf bytes.Buffer
	if err := Short(&buf, singleError(fs, source.Span{File: id, Start: 8, End: 9}, "no  such\nvalue"), fs, false); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "error SEM3010 a.vela:1:9 no such value\n" {
		t.Errorf("short = %q", got)
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{"": PathModeAuto, "absolute": PathModeAbsolute, "basename": PathModeBasename} {
		if got, ok := ParsePathMode(in); !ok || got != want {
			t.Errorf("ParsePathMode(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParsePathMode("weird"); ok {
		t.Error("accepted an unknown mode")
	}
}
