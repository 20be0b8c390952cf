package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"extends both ends", Span{File: 1, Start: 5, End: 8}, Span{File: 1, Start: 2, End: 10}, Span{File: 1, Start: 2, End: 10}},
		{"inner span keeps outer", Span{File: 1, Start: 2, End: 10}, Span{File: 1, Start: 4, End: 5}, Span{File: 1, Start: 2, End: 10}},
		{"different files", Span{File: 1, Start: 2, End: 3}, Span{File: 2, Start: 0, End: 9}, Span{File: 1, Start: 2, End: 3}},
		{"zero receiver adopts other", NoSpan, Span{File: 3, Start: 1, End: 2}, Span{File: 3, Start: 1, End: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Fatalf("Cover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanContainsAndLen(t *testing.T) {
	outer := Span{File: 1, Start: 0, End: 10}
	if !outer.Contains(Span{File: 1, Start: 3, End: 10}) {
		t.Fatalf("expected containment")
	}
	if outer.Contains(Span{File: 2, Start: 3, End: 4}) {
		t.Fatalf("span from another file must not be contained")
	}
	if got := (Span{Start: 7, End: 3}).Len(); got != 0 {
		t.Fatalf("inverted span len = %d, want 0", got)
	}
}

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.kt", []byte("class A\nfun f() {\n}\n"))
	start, end, ok := fs.Resolve(Span{File: id, Start: 8, End: 11})
	if !ok {
		t.Fatalf("resolve failed")
	}
	if start != (LineCol{Line: 2, Col: 1}) || end != (LineCol{Line: 2, Col: 4}) {
		t.Fatalf("got %v-%v", start, end)
	}
	if line := fs.Get(id).Line(2); line != "fun f() {" {
		t.Fatalf("Line(2) = %q", line)
	}

	noText := fs.AddPathOnly("b.kt")
	f := fs.Get(noText)
	sp := Span{File: noText, Start: f.Offset(LineCol{Line: 3, Col: 7}), End: f.Offset(LineCol{Line: 3, Col: 9})}
	start, end, ok = fs.Resolve(sp)
	if !ok || start != (LineCol{Line: 3, Col: 7}) || end != (LineCol{Line: 3, Col: 9}) {
		t.Fatalf("packed resolve got %v-%v ok=%v", start, end, ok)
	}
	if off := fs.Get(id).Offset(LineCol{Line: 2, Col: 5}); off != 12 {
		t.Fatalf("Offset(2:5) = %d, want 12", off)
	}
	if fs.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", fs.Len())
	}
}

func TestLoadNormalizesCRLF(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/crlf.kt"
	if err := writeFile(path, "\xEF\xBB\xBFa\r\nb\r\n"); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b", f.Flags)
	}
}
