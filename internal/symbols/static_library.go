package symbols

// StaticLibrary is an in-memory library, used for builtin libraries and in
// tests. It must not be modified once shared.
type StaticLibrary struct {
	Name  string
	Decls []ExternalDecl
}

func (l *StaticLibrary) LibraryName() string { return l.Name }

func (l *StaticLibrary) FindDecl(fqName string) (*ExternalDecl, error) {
	for i := range l.Decls {
		if l.Decls[i].FQName == fqName {
			return &l.Decls[i], nil
		}
	}
	return nil, nil
}

func (l *StaticLibrary) PackageDecls(pkg string) ([]string, error) {
	var out []string
	for i := range l.Decls {
		if l.Decls[i].Package() == pkg {
			out = append(out, l.Decls[i].FQName)
		}
	}
	return out, nil
}
