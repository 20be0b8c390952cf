package syntax

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"vela/internal/diag"
)

// Error is a problem found in the YAML tree. Line and Col point into the
// YAML document, not into the described source file.
type Error struct {
	Code diag.Code
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Decode reads every YAML document from r as one Unit. Malformed nodes are
// skipped and reported; decoding continues with the next node.
func Decode(r io.Reader) ([]*Unit, []*Error) {
	dec := yaml.NewDecoder(r)
	d := &decoder{}
	var units []*Unit
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			d.errs = append(d.errs, &Error{Code: diag.SynMalformedTree, Msg: err.Error()})
			break
		}
		if len(doc.Content) == 0 {
			continue
		}
		if u := d.unit(doc.Content[0]); u != nil {
			units = append(units, u)
		}
	}
	return units, d.errs
}

// DecodeFile decodes the YAML file at path.
func DecodeFile(path string) ([]*Unit, []*Error, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	units, errs := Decode(f)
	return units, errs, nil
}

// DecodeString is Decode over an in-memory document.
func DecodeString(src string) ([]*Unit, []*Error) {
	return Decode(strings.NewReader(src))
}

type decoder struct {
	errs []*Error
}

func (d *decoder) fail(n *yaml.Node, code diag.Code, format string, args ...any) {
	e := &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line, e.Col = n.Line, n.Column
	}
	d.errs = append(d.errs, e)
}

type field struct {
	key   string
	keyN  *yaml.Node
	value *yaml.Node
}

func (d *decoder) fields(n *yaml.Node, what string) ([]field, bool) {
	if n.Kind != yaml.MappingNode {
		d.fail(n, diag.SynMalformedTree, "%s must be a mapping", what)
		return nil, false
	}
	out := make([]field, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, field{key: n.Content[i].Value, keyN: n.Content[i], value: n.Content[i+1]})
	}
	return out, true
}

func (d *decoder) seq(n *yaml.Node, what string) []*yaml.Node {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		d.fail(n, diag.SynMalformedTree, "%s must be a list", what)
		return nil
	}
	return n.Content
}

func (d *decoder) scalar(n *yaml.Node, what string) string {
	if n.Kind != yaml.ScalarNode {
		d.fail(n, diag.SynMalformedTree, "%s must be a scalar", what)
		return ""
	}
	if n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

func (d *decoder) boolean(n *yaml.Node, what string) bool {
	var b bool
	if err := n.Decode(&b); err != nil {
		d.fail(n, diag.SynMalformedTree, "%s must be true or false", what)
	}
	return b
}

func (d *decoder) pos(n *yaml.Node) Pos {
	p, err := ParsePos(d.scalar(n, "pos"))
	if err != nil {
		d.fail(n, diag.SynBadPosition, "%v", err)
	}
	return p
}

func (d *decoder) unexpected(f field, where string) {
	d.fail(f.keyN, diag.SynUnexpectedMember, "unexpected key %q in %s", f.key, where)
}

func (d *decoder) unit(n *yaml.Node) *Unit {
	fs, ok := d.fields(n, "document")
	if !ok {
		return nil
	}
	u := &Unit{Pos: Pos{Line: 1, Col: 1}}
	for _, f := range fs {
		switch f.key {
		case "file":
			u.File = d.scalar(f.value, "file")
		case "package":
			u.Package = d.scalar(f.value, "package")
		case "text":
			u.Text = d.scalar(f.value, "text")
		case "imports":
			for _, in := range d.seq(f.value, "imports") {
				if imp := d.imp(in); imp != nil {
					u.Imports = append(u.Imports, imp)
				}
			}
		case "decls":
			u.Decls = d.decls(f.value)
		default:
			d.unexpected(f, "document")
		}
	}
	if u.File == "" {
		d.fail(n, diag.SynMissingName, "document has no 'file'")
		return nil
	}
	return u
}

func (d *decoder) imp(n *yaml.Node) *Import {
	if n.Kind == yaml.ScalarNode {
		return &Import{Path: n.Value}
	}
	fs, ok := d.fields(n, "import")
	if !ok {
		return nil
	}
	imp := &Import{}
	for _, f := range fs {
		switch f.key {
		case "path":
			imp.Path = d.scalar(f.value, "path")
		case "alias", "as":
			imp.Alias = d.scalar(f.value, "alias")
		case "pos":
			imp.Pos = d.pos(f.value)
		default:
			d.unexpected(f, "import")
		}
	}
	if imp.Path == "" {
		d.fail(n, diag.SynMissingName, "import has no path")
		return nil
	}
	return imp
}

var declKeys = map[string]DeclKind{
	"class":       DeclClass,
	"fun":         DeclFun,
	"constructor": DeclConstructor,
	"val":         DeclProperty,
	"var":         DeclProperty,
}

func (d *decoder) decls(n *yaml.Node) []*Decl {
	var out []*Decl
	for _, dn := range d.seq(n, "decls") {
		if decl := d.decl(dn); decl != nil {
			out = append(out, decl)
		}
	}
	return out
}

func (d *decoder) decl(n *yaml.Node) *Decl {
	fs, ok := d.fields(n, "declaration")
	if !ok {
		return nil
	}
	decl := &Decl{}
	for _, f := range fs {
		kind, isKind := declKeys[f.key]
		if !isKind {
			continue
		}
		if decl.Kind != 0 {
			d.fail(f.keyN, diag.SynMalformedTree, "declaration has both %s and %s", decl.Kind, kind)
			return nil
		}
		decl.Kind = kind
		switch kind {
		case DeclConstructor:
			switch role := d.scalar(f.value, "constructor"); role {
			case "primary":
				decl.Primary = true
			case "", "secondary":
			default:
				d.fail(f.value, diag.SynUnknownNodeKind, "constructor must be primary or secondary, got %q", role)
			}
		case DeclProperty:
			decl.Name = d.scalar(f.value, f.key)
			decl.Mutable = f.key == "var"
		default:
			decl.Name = d.scalar(f.value, f.key)
		}
	}
	if decl.Kind == 0 {
		d.fail(n, diag.SynUnknownNodeKind, "unknown declaration kind (want class, fun, constructor, val or var)")
		return nil
	}
	if decl.Kind != DeclConstructor && decl.Name == "" {
		d.fail(n, diag.SynMissingName, "%s declaration has no name", decl.Kind)
		return nil
	}
	for _, f := range fs {
		if _, isKind := declKeys[f.key]; isKind {
			continue
		}
		d.declField(decl, f)
	}
	return decl
}

func (d *decoder) declField(decl *Decl, f field) {
	switch f.key {
	case "pos":
		decl.Pos = d.pos(f.value)
	case "end":
		decl.End = d.pos(f.value)
	case "modifiers":
		for _, m := range d.seq(f.value, "modifiers") {
			decl.Modifiers = append(decl.Modifiers, d.scalar(m, "modifier"))
		}
	case "annotations":
		for _, an := range d.seq(f.value, "annotations") {
			if a := d.annotation(an); a != nil {
				decl.Annotations = append(decl.Annotations, a)
			}
		}
	case "type_params":
		for _, tn := range d.seq(f.value, "type_params") {
			if tp := d.typeParam(tn); tp != nil {
				decl.TypeParams = append(decl.TypeParams, tp)
			}
		}
	case "supers":
		if decl.Kind != DeclClass {
			d.unexpected(f, decl.Kind.String())
			return
		}
		for _, sn := range d.seq(f.value, "supers") {
			if ref := d.typeRef(sn); ref != nil {
				decl.Supers = append(decl.Supers, ref)
			}
		}
	case "members":
		if decl.Kind != DeclClass {
			d.unexpected(f, decl.Kind.String())
			return
		}
		decl.Members = d.decls(f.value)
	case "params":
		if decl.Kind != DeclFun && decl.Kind != DeclConstructor {
			d.unexpected(f, decl.Kind.String())
			return
		}
		for _, pn := range d.seq(f.value, "params") {
			if p := d.param(pn); p != nil {
				decl.Params = append(decl.Params, p)
			}
		}
	case "returns":
		decl.Returns = d.typeRef(f.value)
	case "body":
		decl.HasBody = true
		decl.Body = d.stmts(f.value)
	case "delegate":
		if decl.Kind != DeclConstructor {
			d.unexpected(f, decl.Kind.String())
			return
		}
		decl.Delegate = d.delegate(f.value)
	case "type":
		decl.Type = d.typeRef(f.value)
	case "init":
		decl.Init = d.expr(f.value)
	default:
		d.unexpected(f, decl.Kind.String())
	}
}

func (d *decoder) annotation(n *yaml.Node) *Annotation {
	if n.Kind == yaml.ScalarNode {
		return &Annotation{Name: strings.TrimPrefix(n.Value, "@")}
	}
	fs, ok := d.fields(n, "annotation")
	if !ok {
		return nil
	}
	a := &Annotation{}
	for _, f := range fs {
		switch f.key {
		case "name":
			a.Name = strings.TrimPrefix(d.scalar(f.value, "name"), "@")
		case "args":
			if err := f.value.Decode(&a.Args); err != nil {
				d.fail(f.value, diag.SynMalformedTree, "annotation args must map names to values")
			}
		case "pos":
			a.Pos = d.pos(f.value)
		default:
			d.unexpected(f, "annotation")
		}
	}
	if a.Name == "" {
		d.fail(n, diag.SynMissingName, "annotation has no name")
		return nil
	}
	return a
}

func (d *decoder) typeParam(n *yaml.Node) *TypeParam {
	if n.Kind == yaml.ScalarNode {
		return &TypeParam{Name: n.Value}
	}
	fs, ok := d.fields(n, "type parameter")
	if !ok {
		return nil
	}
	tp := &TypeParam{}
	for _, f := range fs {
		switch f.key {
		case "name":
			tp.Name = d.scalar(f.value, "name")
		case "bounds":
			for _, bn := range d.seq(f.value, "bounds") {
				if ref := d.typeRef(bn); ref != nil {
					tp.Bounds = append(tp.Bounds, ref)
				}
			}
		case "pos":
			tp.Pos = d.pos(f.value)
		default:
			d.unexpected(f, "type parameter")
		}
	}
	if tp.Name == "" {
		d.fail(n, diag.SynMissingName, "type parameter has no name")
		return nil
	}
	return tp
}

func (d *decoder) typeRef(n *yaml.Node) *TypeRef {
	var text string
	var pos Pos
	if n.Kind == yaml.ScalarNode {
		text = n.Value
	} else {
		fs, ok := d.fields(n, "type")
		if !ok {
			return nil
		}
		for _, f := range fs {
			switch f.key {
			case "type":
				text = d.scalar(f.value, "type")
			case "pos":
				pos = d.pos(f.value)
			default:
				d.unexpected(f, "type")
			}
		}
	}
	ref, err := ParseTypeRef(text)
	if err != nil {
		d.fail(n, diag.SynMalformedTree, "%v", err)
		return nil
	}
	setTypePos(ref, pos)
	return ref
}

func setTypePos(ref *TypeRef, pos Pos) {
	ref.Pos = pos
	for _, a := range ref.Args {
		setTypePos(a, pos)
	}
}

func (d *decoder) param(n *yaml.Node) *Param {
	fs, ok := d.fields(n, "parameter")
	if !ok {
		return nil
	}
	p := &Param{}
	for _, f := range fs {
		switch f.key {
		case "name":
			p.Name = d.scalar(f.value, "name")
		case "type":
			p.Type = d.typeRef(f.value)
		case "vararg":
			p.Vararg = d.boolean(f.value, "vararg")
		case "default":
			p.Default = d.expr(f.value)
		case "pos":
			p.Pos = d.pos(f.value)
		default:
			d.unexpected(f, "parameter")
		}
	}
	if p.Name == "" {
		d.fail(n, diag.SynMissingName, "parameter has no name")
		return nil
	}
	if p.Type == nil {
		d.fail(n, diag.SynMalformedTree, "parameter %s has no type", p.Name)
		return nil
	}
	if p.Type.Pos.IsZero() {
		setTypePos(p.Type, p.Pos)
	}
	return p
}
