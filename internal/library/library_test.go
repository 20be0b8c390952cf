package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vela/internal/build"
	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/session"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/syntax"
	"vela/internal/types"
	"vela/internal/version"
)

const shapesSrc = `
file: src/shapes.vela
package: shapes
decls:
  - class: Shape
    modifiers: [open]
    type_params: [T]
    members:
      - constructor: primary
        params: [{name: id, type: Int}]
      - constructor: secondary
        params: [{name: name, type: String}]
        delegate: {this: [{int: 0}]}
      - fun: describe
        returns: String
        body:
          - return: {string: shape}
  - class: Circle
    supers: ["Shape<Int>"]
    members:
      - constructor: primary
        delegate: {super: [{int: 1}]}
  - fun: names
    annotations: [{name: Deprecated, args: {message: use labels}}]
    params: [{name: parts, type: String, vararg: true}]
    returns: Int
    body:
      - return: {int: 0}
  - fun: hidden
    modifiers: [private]
    body: []
  - val: count
    type: Int
    init: {int: 3}
`

func buildModule(t *testing.T, src string, libs ...symbols.LibraryProvider) (*ir.Module, *diag.Bag) {
	t.Helper()
	units, errs := syntax.DecodeString(src)
	require.Empty(t, errs)
	sess := session.Open(session.Options{})
	t.Cleanup(sess.Close)
	bag := diag.NewBag(100)
	m, err := build.Build(units, build.Options{
		Name:      "test",
		Session:   sess,
		Files:     source.NewFileSet(),
		Libraries: libs,
		Reporter:  diag.BagReporter{Bag: bag},
	})
	require.NoError(t, err)
	return m, bag
}

func exportShapes(t *testing.T) []symbols.ExternalDecl {
	t.Helper()
	m, bag := buildModule(t, shapesSrc)
	require.False(t, bag.HasErrors(), "%v", bag.Items())
	return Export(m)
}

func writeShapes(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "shapes")
	w, err := NewWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.Write(Manifest{UniqueName: "shapes", NativeTargets: []string{"js"}}, exportShapes(t)))
	assert.Equal(t, []string{"linkdata/module.msgpack", "manifest"}, w.Base.Files())
	return dir
}

func TestExportDescribesPublicDeclarations(t *testing.T) {
	decls := exportShapes(t)
	var names []string
	for _, d := range decls {
		names = append(names, d.FQName)
	}
	require.Equal(t, []string{"shapes.Circle", "shapes.Shape", "shapes.count", "shapes.names"}, names)

	circle, shape, count, fn := decls[0], decls[1], decls[2], decls[3]
	assert.Equal(t, []string{"shapes.Shape<Int>"}, circle.Supertypes)

	assert.True(t, shape.Flags.Has(symbols.SymbolFlagOpen))
	assert.Equal(t, []string{"T"}, shape.TypeParams)
	require.Len(t, shape.Constructors, 2)
	assert.True(t, shape.Constructors[0].Primary)
	assert.Equal(t, []symbols.ExternalParam{{Name: "name", Type: "String"}}, shape.Constructors[1].Params)
	require.Len(t, shape.Members, 1)
	assert.Equal(t, "shapes.Shape.describe", shape.Members[0].FQName)
	assert.Equal(t, "String", shape.Members[0].Result)

	assert.Equal(t, symbols.SymbolProperty, count.Kind)
	assert.Equal(t, "Int", count.Result)

	assert.Equal(t, []symbols.ExternalParam{{Name: "parts", Type: "String", Vararg: true}}, fn.Params)
	assert.Equal(t, "Int", fn.Result)
	require.Len(t, fn.Annotations, 1)
	assert.Equal(t, "Deprecated", fn.Annotations[0].Name)
	assert.Equal(t, "use labels", fn.Annotations[0].Args["message"])
	assert.False(t, fn.Flags.Has(symbols.SymbolFlagLibrary))
}

func TestWriteAndOpenRoundTrip(t *testing.T) {
	dir := writeShapes(t)
	r, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	man := r.Manifest()
	assert.Equal(t, "shapes", r.LibraryName())
	assert.Equal(t, version.ABIVersion, man.ABIVersion)
	assert.Equal(t, version.Version, man.CompilerVersion)
	assert.Equal(t, []string{"js"}, man.NativeTargets)

	names, err := r.PackageDecls("shapes")
	require.NoError(t, err)
	assert.Equal(t, []string{"shapes.Circle", "shapes.Shape", "shapes.count", "shapes.names"}, names)
	assert.Zero(t, r.Decoded())

	d, err := r.FindDecl("shapes.names")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, symbols.SymbolFunction, d.Kind)
	again, err := r.FindDecl("shapes.names")
	require.NoError(t, err)
	assert.Same(t, d, again)
	assert.Equal(t, 1, r.Decoded())

	missing, err := r.FindDecl("shapes.Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	pkgs, err := r.Packages()
	require.NoError(t, err)
	assert.Equal(t, []string{"shapes"}, pkgs)
}

const appSrc = `
file: app.vela
package: app
imports: [shapes.Circle]
decls:
  - fun: main
    body:
      - val: c
        value: {new: Circle}
`

const starSrc = `
file: star.vela
package: app
imports: ["shapes.*"]
decls:
  - fun: main
    body:
      - val: s
        value: {new: Shape, args: [{string: x}]}
      - expr: {call: names, args: [{string: a}, {string: b}]}
`

func TestReaderServesBuild(t *testing.T) {
	dir := writeShapes(t)
	packed := filepath.Join(t.TempDir(), "shapes"+PackExt)
	require.NoError(t, Pack(dir, packed))

	for _, path := range []string{dir, packed} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			r, err := Open(path)
			require.NoError(t, err)
			t.Cleanup(func() { _ = r.Close() })

			m, bag := buildModule(t, appSrc, r)
			require.False(t, bag.HasErrors(), "%v", bag.Items())
			// Circle and its supertype only
			assert.Equal(t, 2, r.Decoded())

			var circle types.TypeID
			m.Inspect(func(n ir.Node) bool {
				if v, ok := n.(*ir.Stmt); ok {
					if data, isVar := v.Data.(*ir.VarData); isVar && data.Name == "c" {
						circle = data.Type
					}
				}
				return true
			})
			info, ok := m.Types.ClassInfo(circle)
			require.True(t, ok)
			assert.Equal(t, "shapes.Circle", info.FQName)
			assert.NotZero(t, info.Flags&types.ClassLibrary)

			_, bag = buildModule(t, starSrc, r)
			assert.False(t, bag.HasErrors(), "%v", bag.Items())
		})
	}
}

func TestCheckABI(t *testing.T) {
	tests := []struct {
		have, current string
		incompatible  bool
		malformed     bool
	}{
		{have: "1.2.0", current: "1.2.0"},
		{have: "1.0.0", current: "1.2.0"},
		{have: "1.0.5", current: "1.2.0"},
		{have: "1.3.0", current: "1.2.0", incompatible: true},
		{have: "2.0.0", current: "1.2.0", incompatible: true},
		{have: "0.9.0", current: "1.2.0", incompatible: true},
		{have: "one", current: "1.2.0", malformed: true},
	}
	for _, tt := range tests {
		err := CheckABI(tt.have, tt.current)
		switch {
		case tt.incompatible:
			assert.ErrorIs(t, err, ErrIncompatibleABI, tt.have)
		case tt.malformed:
			assert.Error(t, err, tt.have)
			assert.NotErrorIs(t, err, ErrIncompatibleABI, tt.have)
		default:
			assert.NoError(t, err, tt.have)
		}
	}
}

func TestOpenRejectsBadManifests(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     error
	}{
		{"no name", "abi_version = \"1.0.0\"\n", ErrNameMissing},
		{"no abi", "unique_name = \"x\"\n", ErrABIMissing},
		{"newer abi", "unique_name = \"x\"\nabi_version = \"9.0.0\"\n", ErrIncompatibleABI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, manifestPath), []byte(tt.manifest), 0o644))
			_, err := Open(dir)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestPath), []byte("unique_name = \"x\"\nabi_version = \"1.0.0\"\nextra = 1\n"), 0o644))
	_, err := Open(dir)
	assert.ErrorContains(t, err, "extra")
}

func TestWriteLinkdataRejectsDuplicates(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	decl := symbols.ExternalDecl{FQName: "a.B", Kind: symbols.SymbolClass}
	assert.ErrorContains(t, w.IR.WriteLinkdata([]symbols.ExternalDecl{decl, decl}), "duplicate declaration a.B")
}
