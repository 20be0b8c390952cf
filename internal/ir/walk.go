package ir

// Children returns the direct children of n in source order. Expression and
// statement payloads are expected as pointers.
func Children(n Node) []Node {
	var out []Node
	add := func(children ...Node) {
		for _, c := range children {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}
	switch n := n.(type) {
	case *File:
		for _, d := range n.Decls {
			add(d)
		}
	case *Class:
		for _, tp := range n.TypeParams {
			add(tp)
		}
		for _, s := range n.Supers {
			add(s)
		}
		for _, m := range n.Members {
			add(m)
		}
	case *Function:
		for _, tp := range n.TypeParams {
			add(tp)
		}
		for _, p := range n.Params {
			add(p)
		}
		add(n.ResultRef, n.Body)
	case *Constructor:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Delegation, n.Body)
	case *Property:
		add(n.TypeRef, n.Init)
	case *ValueParam:
		add(n.TypeRef, n.Default)
	case *TypeParam:
		for _, b := range n.Bounds {
			add(b)
		}
	case *TypeRef:
		for _, a := range n.Args {
			add(a)
		}
	case *Block:
		for _, s := range n.Stmts {
			add(s)
		}
	case *Stmt:
		switch data := n.Data.(type) {
		case *VarData:
			add(data.TypeRef, data.Value)
		case *ExprStmtData:
			add(data.Expr)
		case *AssignData:
			add(data.Target, data.Value)
		case *ReturnData:
			add(data.Value)
		case *IfData:
			add(data.Cond, data.Then, data.Else)
		case *ThrowData:
			add(data.Value)
		case *BlockData:
			add(data.Block)
		}
	case *Expr:
		switch data := n.Data.(type) {
		case *GetFieldData:
			add(data.Receiver)
		case *CallData:
			add(data.Receiver)
			for _, a := range data.TypeArgs {
				add(a)
			}
			for _, a := range data.Args {
				add(a)
			}
		case *NewData:
			for _, a := range data.TypeArgs {
				add(a)
			}
			for _, a := range data.Args {
				add(a)
			}
		case *DelegatingCallData:
			for _, a := range data.Args {
				add(a)
			}
		case *VarargData:
			for _, e := range data.Elems {
				add(e)
			}
		case *SpreadData:
			add(data.Value)
		case *BinaryData:
			add(data.Left, data.Right)
		case *CaptureStackData:
			add(data.Instance)
		}
	}
	return out
}

// isNil catches typed nil pointers stored in the Node interface.
func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Expr:
		return v == nil
	case *Block:
		return v == nil
	case *TypeRef:
		return v == nil
	case *Stmt:
		return v == nil
	default:
		return false
	}
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Visitor receives enter/leave callbacks during WalkStack.
type Visitor interface {
	Enter(n Node) bool
	Leave(n Node)
}

// WalkStack visits like Walk and additionally calls Leave after the
// children of an entered node.
func WalkStack(n Node, v Visitor) {
	if isNil(n) || !v.Enter(n) {
		return
	}
	for _, c := range Children(n) {
		WalkStack(c, v)
	}
	v.Leave(n)
}

// Link sets the parent back-reference of every node below root. Call it
// after building or rewriting a subtree.
func Link(root Node) {
	for _, c := range Children(root) {
		c.setParent(root)
		Link(c)
	}
}

// LinkModule links every file of m.
func LinkModule(m *Module) {
	for _, f := range m.Files {
		Link(f)
	}
}

// Inspect walks every file of m in declaration order.
func (m *Module) Inspect(fn func(Node) bool) {
	for _, f := range m.Files {
		Walk(f, fn)
	}
}

// Classes returns every class of m, nested ones included, in pre-order.
func (m *Module) Classes() []*Class {
	var out []*Class
	m.Inspect(func(n Node) bool {
		switch n := n.(type) {
		case *Class:
			out = append(out, n)
		case *File:
			return true
		}
		_, isClass := n.(*Class)
		return isClass
	})
	return out
}
