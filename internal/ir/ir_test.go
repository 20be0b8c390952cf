package ir

import (
	"strings"
	"testing"

	"vela/internal/source"
	"vela/internal/symbols"
)

func sampleClass() (*Class, *Constructor) {
	recv := symbols.SymbolID(10)
	param := symbols.SymbolID(11)
	ctorSym := symbols.SymbolID(12)
	body := &Block{Stmts: []*Stmt{
		{Kind: StmtExpr, Data: &ExprStmtData{Expr: &Expr{Kind: ExprCall, Data: &CallData{
			Name: "log",
			Args: []*Expr{
				{Kind: ExprGetValue, Data: &GetValueData{Name: "this", Symbol: recv}},
				{Kind: ExprGetValue, Data: &GetValueData{Name: "a", Symbol: param}},
			},
		}}}},
		{Kind: StmtReturn, Data: &ReturnData{Target: ctorSym}},
	}}
	ctor := &Constructor{
		Symbol:   ctorSym,
		Receiver: recv,
		Params:   []*ValueParam{{Name: "a", Symbol: param}},
		Body:     body,
		Span:     source.Span{File: 1, Start: 10, End: 20},
	}
	cls := &Class{Name: "Point", Members: []Decl{ctor}}
	return cls, ctor
}

func TestLinkSetsParents(t *testing.T) {
	cls, ctor := sampleClass()
	file := &File{Path: "a.yaml", Decls: []Decl{cls}}
	Link(file)

	if ctor.Class() != cls {
		t.Fatalf("constructor parent is not the class")
	}
	call := ctor.Body.Stmts[0].Data.(*ExprStmtData).Expr
	arg := call.Args()[0]
	if EnclosingCallable(arg) != ctor {
		t.Fatalf("EnclosingCallable did not reach the constructor")
	}
	if EnclosingFile(arg) != file || EnclosingClass(arg) != cls {
		t.Fatalf("enclosing lookups failed")
	}
}

func TestWalkPreOrder(t *testing.T) {
	cls, _ := sampleClass()
	var kinds []string
	Walk(cls, func(n Node) bool {
		switch n := n.(type) {
		case *Class:
			kinds = append(kinds, "class")
		case *Constructor:
			kinds = append(kinds, "ctor")
		case *ValueParam:
			kinds = append(kinds, "param")
		case *Stmt:
			kinds = append(kinds, n.Kind.String())
		case *Expr:
			kinds = append(kinds, n.Kind.String())
		}
		return true
	})
	want := "class ctor param Expr Call GetValue GetValue Return"
	if got := strings.Join(kinds, " "); got != want {
		t.Fatalf("walk order\n got: %s\nwant: %s", got, want)
	}
}

func TestCopyBlockRemapsSymbols(t *testing.T) {
	_, ctor := sampleClass()
	r := NewRemap()
	r.Map(ctor.Receiver, 100)
	r.Map(ctor.Params[0].Symbol, 101)

	cp := CopyBlock(ctor.Body, r)
	args := cp.Stmts[0].Data.(*ExprStmtData).Expr.Args()
	if got := args[0].Data.(*GetValueData).Symbol; got != 100 {
		t.Fatalf("receiver not rebound: %d", got)
	}
	if got := args[1].Data.(*GetValueData).Symbol; got != 101 {
		t.Fatalf("param not rebound: %d", got)
	}
	// unmapped symbols pass through
	if got := cp.Stmts[1].Data.(*ReturnData).Target; got != ctor.Symbol {
		t.Fatalf("unmapped symbol changed: %d", got)
	}
	// the original is untouched
	orig := ctor.Body.Stmts[0].Data.(*ExprStmtData).Expr.Args()
	if orig[0].Data.(*GetValueData).Symbol != ctor.Receiver || orig[0] == args[0] {
		t.Fatalf("copy aliased the original")
	}
}

func TestDump(t *testing.T) {
	cls, _ := sampleClass()
	m := &Module{Files: []*File{{Path: "a.yaml", Package: "demo", Decls: []Decl{cls}}}}
	out := Dump(m)
	for _, want := range []string{"file a.yaml package demo", "constructor secondary (a: ?)", "log(this, a)"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump lacks %q:\n%s", want, out)
		}
	}
}
