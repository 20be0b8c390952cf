package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"vela/internal/ir"
	"vela/internal/source"
)

// CheckModuleInvariants runs the structural invariants every built or
// lowered module must satisfy:
// 1) each file span is ordered and, for files with text, within content bounds
// 2) every node below a file has Start <= End and, when it has a span in
// the same file with text, lies inside the file span
// 3) every child points back at the node that lists it
func CheckModuleInvariants(m *ir.Module, fs *source.FileSet) error {
	if m == nil || fs == nil {
		return fmt.Errorf("nil module or file set")
	}
	for _, f := range m.Files {
		if err := checkFile(f, fs); err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	return nil
}

func checkFile(f *ir.File, fs *source.FileSet) error {
	if f.Span.End < f.Span.Start {
		return fmt.Errorf("file span is reversed: %v", f.Span)
	}
	sf := fs.Get(f.Span.File)
	if sf == nil {
		return fmt.Errorf("file span points to unknown file id %d", f.Span.File)
	}
	if sf.Flags&source.FileNoText != 0 {
		// packed positions are not comparable with the file span
		return checkNode(f, source.NoSpan)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}
	return checkNode(f, f.Span)
}

func checkNode(n ir.Node, file source.Span) error {
	for _, c := range ir.Children(n) {
		if c.ParentNode() != n {
			return fmt.Errorf("%T at %v: parent is %T, want %T", c, c.NodeSpan(), c.ParentNode(), n)
		}
		sp := c.NodeSpan()
		if sp.End < sp.Start {
			return fmt.Errorf("%T has a reversed span %v", c, sp)
		}
		if !file.IsZero() && !sp.IsZero() && sp.File == file.File && !file.Contains(sp) {
			return fmt.Errorf("%T span %v outside of file span %v", c, sp, file)
		}
		if err := checkNode(c, file); err != nil {
			return err
		}
	}
	return nil
}
