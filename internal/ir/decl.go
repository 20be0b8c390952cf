package ir

import (
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/types"
)

// Module is the IR of one compilation unit.
type Module struct {
	Name    string
	Files   []*File
	Symbols *symbols.Table
	Types   *types.Interner
}

// File groups the declarations of one source file.
type File struct {
	parentLink
	Path    string
	Package string
	Span    source.Span
	Scope   symbols.ScopeID
	Decls   []Decl
}

func (f *File) NodeSpan() source.Span { return f.Span }

// RefRole tells where a type reference appears.
type RefRole uint8

const (
	RefDeclared RefRole = iota
	RefSupertype
	RefTypeArgument
	RefParam
	RefReturn
	RefProperty
	RefVariable
)

func (r RefRole) String() string {
	switch r {
	case RefSupertype:
		return "supertype"
	case RefTypeArgument:
		return "type-argument"
	case RefParam:
		return "param"
	case RefReturn:
		return "return"
	case RefProperty:
		return "property"
	case RefVariable:
		return "variable"
	default:
		return "declared"
	}
}

// TypeRef is a written type use.
type TypeRef struct {
	parentLink
	Name  string
	Type  types.TypeID
	Role  RefRole
	Class symbols.SymbolID // resolved classifier, if a class
	Args  []*TypeRef
	Span  source.Span
}

func (t *TypeRef) NodeSpan() source.Span { return t.Span }

// TypeParam declares a type parameter.
type TypeParam struct {
	parentLink
	Name   string
	Type   types.TypeID
	Bounds []*TypeRef
	Span   source.Span
}

func (t *TypeParam) NodeSpan() source.Span { return t.Span }

// ClassFlags are class modifiers.
type ClassFlags uint8

const (
	ClassOpen ClassFlags = 1 << iota
	ClassAbstract
	ClassValue
	ClassExternal
)

func (f ClassFlags) Has(flag ClassFlags) bool { return f&flag != 0 }

// Class declares a nominal type and owns its members in declaration order.
type Class struct {
	parentLink
	Name        string
	Symbol      symbols.SymbolID
	Type        types.TypeID
	Span        source.Span
	Visibility  symbols.Visibility
	Flags       ClassFlags
	TypeParams  []*TypeParam
	Supers      []*TypeRef
	Members     []Decl
	Annotations []symbols.Annotation
	Scope       symbols.ScopeID
}

func (c *Class) NodeSpan() source.Span { return c.Span }
func (c *Class) DeclName() string      { return c.Name }
func (*Class) declNode()               {}

// IsValue reports whether the class is an inline-like value wrapper.
func (c *Class) IsValue() bool { return c.Flags.Has(ClassValue) }

// Constructors returns the constructors in declaration order.
func (c *Class) Constructors() []*Constructor {
	var out []*Constructor
	for _, m := range c.Members {
		if ctor, ok := m.(*Constructor); ok {
			out = append(out, ctor)
		}
	}
	return out
}

// PrimaryConstructor returns the primary constructor or nil.
func (c *Class) PrimaryConstructor() *Constructor {
	for _, ctor := range c.Constructors() {
		if ctor.Primary {
			return ctor
		}
	}
	return nil
}

// FuncFlags are function modifiers.
type FuncFlags uint8

const (
	FuncFinal FuncFlags = 1 << iota
	FuncOpen
	FuncAbstract
	FuncExternal
	FuncInline
)

func (f FuncFlags) Has(flag FuncFlags) bool { return f&flag != 0 }

// FuncRole distinguishes ordinary functions from lowering products.
type FuncRole uint8

const (
	RoleNormal FuncRole = iota
	// RoleInitializer runs a secondary constructor body on a given instance.
	RoleInitializer
	// RoleFactory allocates an instance and runs its initializer.
	RoleFactory
)

func (r FuncRole) String() string {
	switch r {
	case RoleInitializer:
		return "initializer"
	case RoleFactory:
		return "factory"
	default:
		return "normal"
	}
}

// Function is a named function. Lowered initializers keep their trailing
// instance parameter in This as well as in Params.
type Function struct {
	parentLink
	Name        string
	Symbol      symbols.SymbolID
	Span        source.Span
	Visibility  symbols.Visibility
	Flags       FuncFlags
	Origin      Origin
	Role        FuncRole
	TypeParams  []*TypeParam
	Params      []*ValueParam
	Result      types.TypeID
	ResultRef   *TypeRef
	Body        *Block
	Annotations []symbols.Annotation
	Scope       symbols.ScopeID
	This        *ValueParam
}

func (f *Function) NodeSpan() source.Span { return f.Span }
func (f *Function) DeclName() string      { return f.Name }
func (*Function) declNode()               {}

// Constructor is a primary or secondary constructor. Receiver is the
// implicit `this` symbol; Delegation is the `this(...)`/`super(...)` call.
type Constructor struct {
	parentLink
	Symbol      symbols.SymbolID
	Span        source.Span
	Visibility  symbols.Visibility
	Primary     bool
	External    bool
	Params      []*ValueParam
	Receiver    symbols.SymbolID
	Delegation  *Expr
	Body        *Block
	Annotations []symbols.Annotation
	Scope       symbols.ScopeID
}

func (c *Constructor) NodeSpan() source.Span { return c.Span }
func (c *Constructor) DeclName() string      { return "<init>" }
func (*Constructor) declNode()               {}

// Class returns the owning class.
func (c *Constructor) Class() *Class {
	if cls, ok := c.ParentNode().(*Class); ok {
		return cls
	}
	return nil
}

// Property is a class or top-level property.
type Property struct {
	parentLink
	Name       string
	Symbol     symbols.SymbolID
	Span       source.Span
	Visibility symbols.Visibility
	Mutable    bool
	Type       types.TypeID
	TypeRef    *TypeRef
	Init       *Expr
}

func (p *Property) NodeSpan() source.Span { return p.Span }
func (p *Property) DeclName() string      { return p.Name }
func (*Property) declNode()               {}

// ValueParam is a function or constructor parameter. Type of a vararg
// parameter is the array type; ElemType is what each argument must fit.
type ValueParam struct {
	parentLink
	Name     string
	Symbol   symbols.SymbolID
	Span     source.Span
	Type     types.TypeID
	ElemType types.TypeID
	TypeRef  *TypeRef
	Vararg   bool
	Default  *Expr
}

func (p *ValueParam) NodeSpan() source.Span { return p.Span }
func (p *ValueParam) DeclName() string      { return p.Name }
func (*ValueParam) declNode()               {}
