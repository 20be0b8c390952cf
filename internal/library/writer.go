package library

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"vela/internal/symbols"
	"vela/internal/version"
)

// BaseWriter owns the directory layout of a library being written.
// Files are written to a temporary name and renamed into place.
type BaseWriter struct {
	root    string
	written []string
}

// NewBaseWriter creates root and the fixed subdirectories.
func NewBaseWriter(root string) (*BaseWriter, error) {
	for _, dir := range []string{root, filepath.Join(root, "linkdata"), filepath.Join(root, irDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &BaseWriter{root: root}, nil
}

// Root returns the library directory.
func (w *BaseWriter) Root() string { return w.root }

// Files lists the slash-separated paths written so far, sorted.
func (w *BaseWriter) Files() []string {
	out := slices.Clone(w.written)
	slices.Sort(out)
	return out
}

// WriteFile writes rel atomically through fill.
func (w *BaseWriter) WriteFile(rel string, fill func(io.Writer) error) (err error) {
	p := filepath.Join(w.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if err := fill(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	if !slices.Contains(w.written, rel) {
		w.written = append(w.written, rel)
	}
	return nil
}

// MetadataWriter writes the manifest.
type MetadataWriter struct {
	base *BaseWriter
}

// WriteManifest stores m, filling the versions this compiler writes when
// they are empty.
func (w MetadataWriter) WriteManifest(m Manifest) error {
	if m.UniqueName == "" {
		return ErrNameMissing
	}
	if m.ABIVersion == "" {
		m.ABIVersion = version.ABIVersion
	}
	if m.CompilerVersion == "" {
		m.CompilerVersion = version.Version
	}
	return w.base.WriteFile(manifestPath, func(out io.Writer) error {
		return EncodeManifest(out, m)
	})
}

// IRWriter writes the declaration linkdata.
type IRWriter struct {
	base *BaseWriter
}

// WriteLinkdata stores decls, one msgpack record per declaration.
func (w IRWriter) WriteLinkdata(decls []symbols.ExternalDecl) error {
	ld, err := newLinkdata(decls)
	if err != nil {
		return err
	}
	return w.base.WriteFile(linkdataPath, func(out io.Writer) error {
		return msgpack.NewEncoder(out).Encode(ld)
	})
}

// Writer writes a complete library.
type Writer struct {
	Base     *BaseWriter
	Metadata MetadataWriter
	IR       IRWriter
}

// NewWriter prepares a library directory at root.
func NewWriter(root string) (*Writer, error) {
	base, err := NewBaseWriter(root)
	if err != nil {
		return nil, err
	}
	return &Writer{
		Base:     base,
		Metadata: MetadataWriter{base: base},
		IR:       IRWriter{base: base},
	}, nil
}

// Write stores the manifest and the declarations.
func (w *Writer) Write(m Manifest, decls []symbols.ExternalDecl) error {
	if err := w.IR.WriteLinkdata(decls); err != nil {
		return fmt.Errorf("library %s: %w", m.UniqueName, err)
	}
	if err := w.Metadata.WriteManifest(m); err != nil {
		return fmt.Errorf("library %s: %w", m.UniqueName, err)
	}
	return nil
}
