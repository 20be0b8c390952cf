package syntax

import (
	"gopkg.in/yaml.v3"

	"vela/internal/diag"
)

var stmtKeys = map[string]StmtKind{
	"var":    StmtVar,
	"val":    StmtVar,
	"expr":   StmtExpr,
	"assign": StmtAssign,
	"return": StmtReturn,
	"if":     StmtIf,
	"throw":  StmtThrow,
	"block":  StmtBlock,
}

func (d *decoder) stmts(n *yaml.Node) []*Stmt {
	var out []*Stmt
	for _, sn := range d.seq(n, "body") {
		if s := d.stmt(sn); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (d *decoder) stmt(n *yaml.Node) *Stmt {
	fs, ok := d.fields(n, "statement")
	if !ok {
		return nil
	}
	s := &Stmt{}
	for _, f := range fs {
		kind, isKind := stmtKeys[f.key]
		if !isKind || s.Kind != 0 {
			continue
		}
		s.Kind = kind
		switch kind {
		case StmtVar:
			s.Name = d.scalar(f.value, f.key)
			s.Mutable = f.key == "var"
			if s.Name == "" {
				d.fail(f.value, diag.SynMissingName, "local variable has no name")
				return nil
			}
		case StmtExpr:
			s.Expr = d.expr(f.value)
		case StmtAssign:
			s.Target = d.expr(f.value)
		case StmtReturn:
			if !isNull(f.value) {
				s.Value = d.expr(f.value)
			}
		case StmtIf:
			s.Cond = d.expr(f.value)
		case StmtThrow:
			s.Value = d.expr(f.value)
		case StmtBlock:
			s.Body = d.stmts(f.value)
		}
	}
	if s.Kind == 0 {
		d.fail(n, diag.SynUnknownNodeKind, "unknown statement kind")
		return nil
	}
	for _, f := range fs {
		if kind, isKind := stmtKeys[f.key]; isKind && kind == s.Kind {
			continue
		}
		switch {
		case f.key == "pos":
			s.Pos = d.pos(f.value)
		case f.key == "type" && s.Kind == StmtVar:
			s.Type = d.typeRef(f.value)
		case f.key == "value" && (s.Kind == StmtVar || s.Kind == StmtAssign):
			s.Value = d.expr(f.value)
		case f.key == "then" && s.Kind == StmtIf:
			s.Then = d.stmts(f.value)
		case f.key == "else" && s.Kind == StmtIf:
			s.Else = d.stmts(f.value)
		default:
			d.unexpected(f, s.Kind.String()+" statement")
		}
	}
	if s.Kind == StmtAssign && s.Value == nil {
		d.fail(n, diag.SynMalformedTree, "assignment has no value")
		return nil
	}
	return s
}

var literalKeys = map[string]ExprKind{
	"int":    ExprInt,
	"long":   ExprLong,
	"double": ExprDouble,
	"bool":   ExprBool,
	"string": ExprString,
	"null":   ExprNull,
}

var exprKeys = map[string]ExprKind{
	"ref":    ExprRef,
	"this":   ExprThis,
	"field":  ExprField,
	"call":   ExprCall,
	"new":    ExprNew,
	"spread": ExprSpread,
	"op":     ExprBinary,
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func (d *decoder) exprs(n *yaml.Node, what string) []*Expr {
	var out []*Expr
	for _, en := range d.seq(n, what) {
		if e := d.expr(en); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (d *decoder) expr(n *yaml.Node) *Expr {
	fs, ok := d.fields(n, "expression")
	if !ok {
		return nil
	}
	e := &Expr{}
	var kindKey string
	for _, f := range fs {
		if kind, isLit := literalKeys[f.key]; isLit {
			e.Kind, kindKey = kind, f.key
			if kind != ExprNull {
				e.Value = d.scalar(f.value, f.key)
			}
			break
		}
		if kind, isExpr := exprKeys[f.key]; isExpr {
			e.Kind, kindKey = kind, f.key
			switch kind {
			case ExprRef, ExprField, ExprCall, ExprNew:
				e.Name = d.scalar(f.value, f.key)
				if e.Name == "" {
					d.fail(f.value, diag.SynMissingName, "%s has no name", f.key)
					return nil
				}
			case ExprSpread:
				e.Operand = d.expr(f.value)
			case ExprBinary:
				e.Op = d.scalar(f.value, "op")
			}
			break
		}
	}
	if e.Kind == 0 {
		d.fail(n, diag.SynUnknownNodeKind, "unknown expression kind")
		return nil
	}
	for _, f := range fs {
		if f.key == kindKey {
			continue
		}
		switch {
		case f.key == "pos":
			e.Pos = d.pos(f.value)
		case f.key == "of" && e.Kind == ExprField,
			f.key == "receiver" && e.Kind == ExprCall:
			e.Receiver = d.expr(f.value)
		case f.key == "args" && (e.Kind == ExprCall || e.Kind == ExprNew):
			e.Args = d.exprs(f.value, "args")
		case f.key == "type_args" && (e.Kind == ExprCall || e.Kind == ExprNew):
			for _, tn := range d.seq(f.value, "type_args") {
				if ref := d.typeRef(tn); ref != nil {
					e.TypeArgs = append(e.TypeArgs, ref)
				}
			}
		case f.key == "fake" && e.Kind == ExprSpread:
			e.Fake = d.boolean(f.value, "fake")
		case f.key == "left" && e.Kind == ExprBinary:
			e.Left = d.expr(f.value)
		case f.key == "right" && e.Kind == ExprBinary:
			e.Right = d.expr(f.value)
		default:
			d.unexpected(f, e.Kind.String()+" expression")
		}
	}
	switch {
	case e.Kind == ExprSpread && e.Operand == nil,
		e.Kind == ExprBinary && (e.Left == nil || e.Right == nil):
		d.fail(n, diag.SynMalformedTree, "%s expression is incomplete", e.Kind)
		return nil
	}
	for _, ref := range e.TypeArgs {
		if ref.Pos.IsZero() {
			setTypePos(ref, e.Pos)
		}
	}
	return e
}

// delegate decodes `{this: [args]}` or `{super: [args]}`.
func (d *decoder) delegate(n *yaml.Node) *Expr {
	fs, ok := d.fields(n, "delegate")
	if !ok {
		return nil
	}
	e := &Expr{}
	for _, f := range fs {
		switch f.key {
		case "this", "super":
			if e.Kind != 0 {
				d.fail(f.keyN, diag.SynMalformedTree, "delegate names both this and super")
				return nil
			}
			e.Kind = ExprDelegateThis
			if f.key == "super" {
				e.Kind = ExprDelegateSuper
			}
			e.Args = d.exprs(f.value, "delegate args")
		case "pos":
			e.Pos = d.pos(f.value)
		default:
			d.unexpected(f, "delegate")
		}
	}
	if e.Kind == 0 {
		d.fail(n, diag.SynUnknownNodeKind, "delegate must be this or super")
		return nil
	}
	return e
}
