package ir

import (
	"fmt"
	"io"
	"strings"

	"vela/internal/types"
)

// Dump renders m as an indented tree.
func Dump(m *Module) string {
	var sb strings.Builder
	d := dumper{w: &sb, m: m}
	for _, f := range m.Files {
		d.file(f)
	}
	return sb.String()
}

// DumpTo writes the dump of m to w.
func DumpTo(w io.Writer, m *Module) error {
	_, err := io.WriteString(w, Dump(m))
	return err
}

type dumper struct {
	w     *strings.Builder
	m     *Module
	depth int
}

func (d *dumper) line(format string, args ...any) {
	d.w.WriteString(strings.Repeat("  ", d.depth))
	fmt.Fprintf(d.w, format, args...)
	d.w.WriteByte('\n')
}

func (d *dumper) typ(id types.TypeID) string {
	if d.m.Types == nil || id == types.NoTypeID {
		return "?"
	}
	return d.m.Types.Format(id)
}

func (d *dumper) file(f *File) {
	d.line("file %s package %s", f.Path, f.Package)
	d.depth++
	for _, decl := range f.Decls {
		d.decl(decl)
	}
	d.depth--
}

func (d *dumper) decl(decl Decl) {
	switch n := decl.(type) {
	case *Class:
		supers := make([]string, len(n.Supers))
		for i, s := range n.Supers {
			supers[i] = d.typ(s.Type)
		}
		header := "class " + d.typ(n.Type)
		if n.IsValue() {
			header = "value " + header
		}
		if len(supers) > 0 {
			header += " : " + strings.Join(supers, ", ")
		}
		d.line("%s", header)
		d.depth++
		for _, m := range n.Members {
			d.decl(m)
		}
		d.depth--
	case *Constructor:
		kind := "secondary"
		if n.Primary {
			kind = "primary"
		}
		d.line("constructor %s (%s)", kind, d.params(n.Params))
		d.depth++
		if n.Delegation != nil {
			d.line("delegate %s", d.expr(n.Delegation))
		}
		d.block(n.Body)
		d.depth--
	case *Function:
		tags := ""
		if n.Role != RoleNormal {
			tags = fmt.Sprintf(" [%s]", n.Role)
		}
		d.line("fun %s%s (%s) -> %s", n.Name, tags, d.params(n.Params), d.typ(n.Result))
		d.depth++
		d.block(n.Body)
		d.depth--
	case *Property:
		if n.Init != nil {
			d.line("val %s: %s = %s", n.Name, d.typ(n.Type), d.expr(n.Init))
		} else {
			d.line("val %s: %s", n.Name, d.typ(n.Type))
		}
	}
}

func (d *dumper) params(ps []*ValueParam) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		prefix := ""
		if p.Vararg {
			prefix = "vararg "
		}
		parts[i] = fmt.Sprintf("%s%s: %s", prefix, p.Name, d.typ(p.Type))
	}
	return strings.Join(parts, ", ")
}

func (d *dumper) block(b *Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		d.stmt(s)
	}
}

func (d *dumper) stmt(s *Stmt) {
	switch data := s.Data.(type) {
	case *VarData:
		if data.Value != nil {
			d.line("var %s: %s = %s", data.Name, d.typ(data.Type), d.expr(data.Value))
		} else {
			d.line("var %s: %s", data.Name, d.typ(data.Type))
		}
	case *ExprStmtData:
		d.line("%s", d.expr(data.Expr))
	case *AssignData:
		d.line("%s = %s", d.expr(data.Target), d.expr(data.Value))
	case *ReturnData:
		target := ""
		if d.m.Symbols != nil && data.Target.IsValid() {
			target = "@" + d.m.Symbols.Name(data.Target)
		}
		if data.Value != nil {
			d.line("return%s %s", target, d.expr(data.Value))
		} else {
			d.line("return%s", target)
		}
	case *IfData:
		d.line("if %s", d.expr(data.Cond))
		d.depth++
		d.block(data.Then)
		d.depth--
		if data.Else != nil {
			d.line("else")
			d.depth++
			d.block(data.Else)
			d.depth--
		}
	case *ThrowData:
		d.line("throw %s", d.expr(data.Value))
	case *BlockData:
		d.line("block")
		d.depth++
		d.block(data.Block)
		d.depth--
	}
}

func (d *dumper) expr(e *Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch data := e.Data.(type) {
	case *LiteralData:
		if data.Kind == LiteralString {
			return fmt.Sprintf("%q", data.Value)
		}
		return data.Value
	case *GetValueData:
		return data.Name
	case *GetFieldData:
		return d.expr(data.Receiver) + "." + data.Name
	case *CallData:
		callee := data.Name
		if data.Receiver != nil {
			callee = d.expr(data.Receiver) + "." + callee
		}
		return callee + "(" + d.exprs(data.Args) + ")"
	case *NewData:
		return "new " + d.typ(data.Class) + "(" + d.exprs(data.Args) + ")"
	case *DelegatingCallData:
		if data.Super {
			return "super(" + d.exprs(data.Args) + ")"
		}
		return "this(" + d.exprs(data.Args) + ")"
	case *VarargData:
		return "[" + d.exprs(data.Elems) + "]"
	case *SpreadData:
		return "*" + d.expr(data.Value)
	case *BinaryData:
		return "(" + d.expr(data.Left) + " " + data.Op + " " + d.expr(data.Right) + ")"
	case *CreateObjectData:
		return "create<" + d.typ(data.Class) + ">()"
	case *CaptureStackData:
		fn := "?"
		if d.m.Symbols != nil {
			fn = d.m.Symbols.Name(data.Function)
		}
		return "captureStack(" + d.expr(data.Instance) + ", ::" + fn + ")"
	default:
		return e.Kind.String()
	}
}

func (d *dumper) exprs(es []*Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = d.expr(e)
	}
	return strings.Join(parts, ", ")
}
