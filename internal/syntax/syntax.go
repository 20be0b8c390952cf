package syntax

// Unit is one parsed source file.
type Unit struct {
	File    string
	Package string
	// Text is the original source when the parser forwarded it; positions
	// are resolved against it for caret rendering.
	Text    string
	Pos     Pos
	Imports []*Import
	Decls   []*Decl
}

// Import is `import a.b.C [as D]` or `import a.b.*`.
type Import struct {
	Path  string
	Alias string
	Pos   Pos
}

// Star reports whether the import pulls in a whole package.
func (i *Import) Star() bool {
	return len(i.Path) >= 2 && i.Path[len(i.Path)-2:] == ".*"
}

// Package returns the imported package of a star import.
func (i *Import) Package() string {
	if i.Star() {
		return i.Path[:len(i.Path)-2]
	}
	return i.Path
}

// DeclKind enumerates declaration kinds.
type DeclKind uint8

const (
	DeclClass DeclKind = iota + 1
	DeclFun
	DeclConstructor
	DeclProperty
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclFun:
		return "fun"
	case DeclConstructor:
		return "constructor"
	case DeclProperty:
		return "property"
	default:
		return "invalid"
	}
}

// Annotation is `@Name(key = value, ...)`.
type Annotation struct {
	Name string
	Args map[string]string
	Pos  Pos
}

// Decl is a class, function, constructor or property.
type Decl struct {
	Kind        DeclKind
	Name        string
	Pos         Pos
	End         Pos
	Modifiers   []string
	Annotations []*Annotation
	TypeParams  []*TypeParam

	// class
	Supers  []*TypeRef
	Members []*Decl

	// fun / constructor
	Params   []*Param
	Returns  *TypeRef
	Body     []*Stmt
	HasBody  bool
	Primary  bool
	Delegate *Expr

	// property
	Type    *TypeRef
	Init    *Expr
	Mutable bool
}

// HasModifier reports whether m was written on the declaration.
func (d *Decl) HasModifier(m string) bool {
	for _, x := range d.Modifiers {
		if x == m {
			return true
		}
	}
	return false
}

// TypeParam is a type parameter with optional upper bounds.
type TypeParam struct {
	Name   string
	Bounds []*TypeRef
	Pos    Pos
}

// Param is a value parameter.
type Param struct {
	Name    string
	Type    *TypeRef
	Vararg  bool
	Default *Expr
	Pos     Pos
}

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	StmtVar StmtKind = iota + 1
	StmtExpr
	StmtAssign
	StmtReturn
	StmtIf
	StmtThrow
	StmtBlock
)

func (k StmtKind) String() string {
	switch k {
	case StmtVar:
		return "var"
	case StmtExpr:
		return "expr"
	case StmtAssign:
		return "assign"
	case StmtReturn:
		return "return"
	case StmtIf:
		return "if"
	case StmtThrow:
		return "throw"
	case StmtBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Stmt is a statement.
type Stmt struct {
	Kind    StmtKind
	Pos     Pos
	Name    string   // var
	Mutable bool     // var vs val
	Type    *TypeRef // var
	Value   *Expr    // var, assign, return, throw
	Target  *Expr    // assign
	Expr    *Expr    // expr
	Cond    *Expr    // if
	Then    []*Stmt  // if
	Else    []*Stmt  // if
	Body    []*Stmt  // block
}

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	ExprInt ExprKind = iota + 1
	ExprLong
	ExprDouble
	ExprBool
	ExprString
	ExprNull
	ExprRef
	ExprThis
	ExprField
	ExprCall
	ExprNew
	ExprDelegateThis
	ExprDelegateSuper
	ExprSpread
	ExprBinary
)

var exprKindNames = [...]string{
	ExprInt: "int", ExprLong: "long", ExprDouble: "double", ExprBool: "bool",
	ExprString: "string", ExprNull: "null", ExprRef: "ref", ExprThis: "this",
	ExprField: "field", ExprCall: "call", ExprNew: "new", ExprDelegateThis: "this(...)",
	ExprDelegateSuper: "super(...)", ExprSpread: "spread", ExprBinary: "binary",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) && exprKindNames[k] != "" {
		return exprKindNames[k]
	}
	return "invalid"
}

// Expr is an expression.
type Expr struct {
	Kind     ExprKind
	Pos      Pos
	Value    string // literals
	Name     string // ref, field, call, new
	Receiver *Expr  // field, call
	Args     []*Expr
	TypeArgs []*TypeRef
	Operand  *Expr // spread
	Fake     bool  // spread
	Op       string
	Left     *Expr
	Right    *Expr
}
