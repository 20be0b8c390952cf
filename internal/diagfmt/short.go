package diagfmt

import (
	"io"

	"vela/internal/diag"
	"vela/internal/source"
)

// Short writes one line per diagnostic in report order.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
