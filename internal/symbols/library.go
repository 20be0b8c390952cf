package symbols

// ExternalParam describes a parameter of a library declaration. Types are
// kept as type-reference text and resolved by the importing unit.
type ExternalParam struct {
	Name   string `msgpack:"name" toml:"name"`
	Type   string `msgpack:"type" toml:"type"`
	Vararg bool   `msgpack:"vararg,omitempty" toml:"vararg"`
}

// ExternalCtor describes a constructor of a library class.
type ExternalCtor struct {
	Params     []ExternalParam `msgpack:"params"`
	Primary    bool            `msgpack:"primary,omitempty"`
	Flags      SymbolFlags     `msgpack:"flags,omitempty"`
	Visibility Visibility      `msgpack:"vis,omitempty"`
}

// ExternalAnnotation is the serialized form of an annotation.
type ExternalAnnotation struct {
	Name string            `msgpack:"name"`
	Args map[string]string `msgpack:"args,omitempty"`
}

// ExternalDecl is a declaration provided by a persisted library.
type ExternalDecl struct {
	FQName       string               `msgpack:"fq"`
	Kind         SymbolKind           `msgpack:"kind"`
	Flags        SymbolFlags          `msgpack:"flags,omitempty"`
	Visibility   Visibility           `msgpack:"vis,omitempty"`
	TypeParams   []string             `msgpack:"tparams,omitempty"`
	Supertypes   []string             `msgpack:"supers,omitempty"`
	Params       []ExternalParam      `msgpack:"params,omitempty"`
	Result       string               `msgpack:"result,omitempty"`
	Constructors []ExternalCtor       `msgpack:"ctors,omitempty"`
	Members      []ExternalDecl       `msgpack:"members,omitempty"`
	Annotations  []ExternalAnnotation `msgpack:"annotations,omitempty"`
}

// Package returns the package part of the fully qualified name.
func (d *ExternalDecl) Package() string {
	pkg, _ := SplitFQName(d.FQName)
	return pkg
}

// SimpleName returns the last segment of the fully qualified name.
func (d *ExternalDecl) SimpleName() string {
	_, name := SplitFQName(d.FQName)
	return name
}

// SplitFQName splits "a.b.C" into "a.b" and "C".
func SplitFQName(fq string) (pkg, name string) {
	for i := len(fq) - 1; i >= 0; i-- {
		if fq[i] == '.' {
			return fq[:i], fq[i+1:]
		}
	}
	return "", fq
}

// LibraryProvider serves declarations of a separately compiled library by
// name on demand. Implementations must be safe for concurrent use.
type LibraryProvider interface {
	// LibraryName is the unique name of the library.
	LibraryName() string
	// FindDecl returns the top-level declaration fqName, or nil when the
	// library does not provide it.
	FindDecl(fqName string) (*ExternalDecl, error)
	// PackageDecls lists the fully qualified top-level names in pkg.
	PackageDecls(pkg string) ([]string, error)
}

// Providers searches several libraries in order.
type Providers []LibraryProvider

// FindDecl returns the first library declaration named fqName.
func (ps Providers) FindDecl(fqName string) (*ExternalDecl, LibraryProvider, error) {
	for _, p := range ps {
		d, err := p.FindDecl(fqName)
		if err != nil {
			return nil, p, err
		}
		if d != nil {
			return d, p, nil
		}
	}
	return nil, nil, nil
}

// PackageDecls unites the package listings of every library.
func (ps Providers) PackageDecls(pkg string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, p := range ps {
		names, err := p.PackageDecls(pkg)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out, nil
}
