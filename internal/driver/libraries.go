package driver

import (
	"errors"

	"vela/internal/diag"
	"vela/internal/library"
	"vela/internal/project/dag"
	"vela/internal/source"
)

// openLibraries opens every library path. Unreadable libraries are reported
// and skipped. The rest are returned dependencies first so that lookups
// prefer the declaring library over one that re-exports a name.
func openLibraries(paths []string, r diag.Reporter) []*library.Reader {
	if len(paths) == 0 {
		return nil
	}
	byName := make(map[string]*library.Reader, len(paths))
	metas := make([]dag.LibraryMeta, 0, len(paths))
	for _, p := range paths {
		lr, err := library.Open(p)
		if err != nil {
			code := diag.IOLibraryError
			if errors.Is(err, library.ErrIncompatibleABI) {
				code = diag.IOIncompatibleABI
			}
			diag.ReportError(r, code, source.Span{}, err.Error()).WithArgs(p).Emit()
			continue
		}
		m := lr.Manifest()
		metas = append(metas, dag.LibraryMeta{Name: m.UniqueName, Path: p, Depends: m.Depends})
		if _, dup := byName[m.UniqueName]; dup {
			// dag.Order reports it; the first one stays in use
			_ = lr.Close()
			continue
		}
		byName[m.UniqueName] = lr
	}

	ordered := dag.Order(metas, r)
	out := make([]*library.Reader, 0, len(byName))
	for _, meta := range ordered {
		lr, ok := byName[meta.Name]
		if !ok || lr.Path() != meta.Path {
			continue
		}
		out = append(out, lr)
	}
	return out
}
