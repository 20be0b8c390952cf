package library

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"vela/internal/symbols"
	"vela/internal/version"
)

// Reader serves the declarations of a persisted library. The manifest is
// read when the library is opened; linkdata is loaded on first lookup and
// each declaration is decoded the first time it is asked for.
type Reader struct {
	path     string
	fsys     fs.FS
	closer   io.Closer
	manifest Manifest

	loadOnce sync.Once
	data     *linkdata
	loadErr  error

	mu      sync.Mutex
	decoded map[string]*symbols.ExternalDecl
}

var _ symbols.LibraryProvider = (*Reader)(nil)

// Open opens the library directory or .vlib archive at path and checks
// that this compiler can read its ABI.
func Open(path string) (*Reader, error) {
	r := &Reader{path: path, decoded: make(map[string]*symbols.ExternalDecl)}
	if IsPacked(path) {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, err
		}
		r.fsys, r.closer = zr, zr
	} else {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s: not a library directory", path)
		}
		r.fsys = os.DirFS(path)
	}
	if err := r.readManifest(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func (r *Reader) readManifest() error {
	f, err := r.fsys.Open(manifestPath)
	if err != nil {
		return err
	}
	defer f.Close()
	m, err := DecodeManifest(f)
	if err != nil {
		return err
	}
	if err := CheckABI(m.ABIVersion, version.ABIVersion); err != nil {
		return err
	}
	r.manifest = m
	return nil
}

// Close releases the archive of a packed library.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Path returns the location the library was opened from.
func (r *Reader) Path() string { return r.path }

// Manifest returns the library metadata.
func (r *Reader) Manifest() Manifest { return r.manifest }

func (r *Reader) LibraryName() string { return r.manifest.UniqueName }

func (r *Reader) load() (*linkdata, error) {
	r.loadOnce.Do(func() {
		f, err := r.fsys.Open(linkdataPath)
		if err != nil {
			r.loadErr = fmt.Errorf("library %s: %w", r.manifest.UniqueName, err)
			return
		}
		defer f.Close()
		var ld linkdata
		if err := msgpack.NewDecoder(f).Decode(&ld); err != nil {
			r.loadErr = fmt.Errorf("library %s: linkdata: %w", r.manifest.UniqueName, err)
			return
		}
		if ld.Schema != linkdataSchema {
			r.loadErr = fmt.Errorf("library %s: linkdata schema %d, want %d", r.manifest.UniqueName, ld.Schema, linkdataSchema)
			return
		}
		r.data = &ld
	})
	return r.data, r.loadErr
}

func (r *Reader) FindDecl(fqName string) (*symbols.ExternalDecl, error) {
	ld, err := r.load()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.decoded[fqName]; ok {
		return d, nil
	}
	d, err := ld.decode(fqName)
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", r.manifest.UniqueName, err)
	}
	if d != nil {
		r.decoded[fqName] = d
	}
	return d, nil
}

func (r *Reader) PackageDecls(pkg string) ([]string, error) {
	ld, err := r.load()
	if err != nil {
		return nil, err
	}
	return slices.Clone(ld.Packages[pkg]), nil
}

// Packages lists the packages the library declares, sorted.
func (r *Reader) Packages() ([]string, error) {
	ld, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ld.Packages))
	for pkg := range ld.Packages {
		out = append(out, pkg)
	}
	slices.Sort(out)
	return out, nil
}

// Decoded returns how many declarations have been decoded so far.
func (r *Reader) Decoded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.decoded)
}

// OpenAll opens every library in paths. On failure the libraries opened so
// far are closed.
func OpenAll(paths []string) ([]*Reader, error) {
	out := make([]*Reader, 0, len(paths))
	for _, p := range paths {
		r, err := Open(p)
		if err != nil {
			CloseAll(out)
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// CloseAll closes every reader in rs.
func CloseAll(rs []*Reader) {
	for _, r := range rs {
		_ = r.Close()
	}
}

// Providers adapts readers to the lookup order of the build.
func Providers(rs []*Reader) symbols.Providers {
	out := make(symbols.Providers, 0, len(rs))
	for _, r := range rs {
		out = append(out, r)
	}
	return out
}
