package testkit

import (
	"strings"
	"testing"

	"vela/internal/ir"
	"vela/internal/source"
)

func linkedModule(fs *source.FileSet) (*ir.Module, *ir.Function) {
	id := fs.AddVirtual("a.vela", []byte("fun main() {}\n"))
	fn := &ir.Function{Name: "main", Span: source.Span{File: id, Start: 0, End: 13}}
	f := &ir.File{Path: "a.vela", Span: source.Span{File: id, Start: 0, End: 14}, Decls: []ir.Decl{fn}}
	m := &ir.Module{Name: "t", Files: []*ir.File{f}}
	ir.LinkModule(m)
	return m, fn
}

func TestCheckModuleInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *ir.Module, fn *ir.Function)
		want   string
	}{
		{"valid", func(*ir.Module, *ir.Function) {}, ""},
		{"span outside file", func(_ *ir.Module, fn *ir.Function) { fn.Span.End = 40 }, "outside of file span"},
		{"reversed span", func(_ *ir.Module, fn *ir.Function) { fn.Span.Start = 9; fn.Span.End = 3 }, "reversed span"},
		{"file beyond content", func(m *ir.Module, _ *ir.Function) { m.Files[0].Span.End = 99 }, "beyond content"},
		{"unlinked child", func(m *ir.Module, _ *ir.Function) {
			m.Files[0].Decls = append(m.Files[0].Decls, &ir.Function{Name: "loose"})
		}, "parent is"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			m, fn := linkedModule(fs)
			tt.mutate(m, fn)
			err := CheckModuleInvariants(m, fs)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestCheckModuleInvariantsSkipsPackedFiles(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddPathOnly("lib.vela")
	start := source.PackLineCol(source.LineCol{Line: 1, Col: 1})
	far := source.PackLineCol(source.LineCol{Line: 30, Col: 2})
	fn := &ir.Function{Name: "f", Span: source.Span{File: id, Start: far, End: far + 3}}
	f := &ir.File{Path: "lib.vela", Span: source.Span{File: id, Start: start, End: start + 1}, Decls: []ir.Decl{fn}}
	m := &ir.Module{Files: []*ir.File{f}}
	ir.LinkModule(m)
	if err := CheckModuleInvariants(m, fs); err != nil {
		t.Fatal(err)
	}
}
