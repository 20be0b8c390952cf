package ir

import (
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/types"
)

// ExprKind enumerates IR expression kinds.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	// ExprGetValue reads a local, parameter, property or receiver.
	ExprGetValue
	// ExprGetField reads a member through an explicit receiver.
	ExprGetField
	// ExprCall calls a function.
	ExprCall
	// ExprNew calls a constructor to create an instance.
	ExprNew
	// ExprDelegatingCall is `this(...)` or `super(...)` inside a constructor.
	ExprDelegatingCall
	// ExprVararg groups the arguments passed to a vararg parameter.
	ExprVararg
	// ExprSpread is `*array` inside a vararg group.
	ExprSpread
	ExprBinary
	// ExprCreateObject allocates an uninitialized instance.
	ExprCreateObject
	// ExprCaptureStack records the stack trace of a throwable.
	ExprCaptureStack
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprGetValue:
		return "GetValue"
	case ExprGetField:
		return "GetField"
	case ExprCall:
		return "Call"
	case ExprNew:
		return "New"
	case ExprDelegatingCall:
		return "DelegatingCall"
	case ExprVararg:
		return "Vararg"
	case ExprSpread:
		return "Spread"
	case ExprBinary:
		return "Binary"
	case ExprCreateObject:
		return "CreateObject"
	case ExprCaptureStack:
		return "CaptureStack"
	default:
		return "Unknown"
	}
}

// Expr represents an IR expression with its resolved type.
type Expr struct {
	parentLink
	Kind ExprKind
	Type types.TypeID
	Span source.Span
	Data ExprData
}

func (e *Expr) NodeSpan() source.Span { return e.Span }

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralLong
	LiteralDouble
	LiteralBool
	LiteralString
	LiteralNull
)

// LiteralData holds data for ExprLiteral.
type LiteralData struct {
	Kind  LiteralKind
	Value string
}

func (LiteralData) exprData() {}

// GetValueData holds data for ExprGetValue.
type GetValueData struct {
	Name   string
	Symbol symbols.SymbolID
}

func (GetValueData) exprData() {}

// GetFieldData holds data for ExprGetField.
type GetFieldData struct {
	Receiver *Expr
	Name     string
	Field    symbols.SymbolID
}

func (GetFieldData) exprData() {}

// CallData holds data for ExprCall.
type CallData struct {
	Name     string
	Callee   symbols.SymbolID
	Receiver *Expr // nil for calls by simple name
	Args     []*Expr
	TypeArgs []*TypeRef
}

func (CallData) exprData() {}

// NewData holds data for ExprNew.
type NewData struct {
	Class    types.TypeID
	Ctor     symbols.SymbolID
	Args     []*Expr
	TypeArgs []*TypeRef
}

func (NewData) exprData() {}

// DelegatingCallData holds data for ExprDelegatingCall.
type DelegatingCallData struct {
	Ctor  symbols.SymbolID
	Super bool
	Args  []*Expr
}

func (DelegatingCallData) exprData() {}

// VarargData holds data for ExprVararg.
type VarargData struct {
	Elems []*Expr
}

func (VarargData) exprData() {}

// SpreadData holds data for ExprSpread. Fake spreads are introduced by the
// compiler when forwarding an array it built itself.
type SpreadData struct {
	Value *Expr
	Fake  bool
}

func (SpreadData) exprData() {}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    string
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

// CreateObjectData holds data for ExprCreateObject.
type CreateObjectData struct {
	Class types.TypeID
}

func (CreateObjectData) exprData() {}

// CaptureStackData holds data for ExprCaptureStack. Function is the
// factory whose frame is dropped from the captured trace.
type CaptureStackData struct {
	Instance *Expr
	Function symbols.SymbolID
}

func (CaptureStackData) exprData() {}

// Args returns the argument list of call-like expressions.
func (e *Expr) Args() []*Expr {
	switch data := e.Data.(type) {
	case *CallData:
		return data.Args
	case *NewData:
		return data.Args
	case *DelegatingCallData:
		return data.Args
	}
	return nil
}

// IsCallLike reports whether e calls a function or constructor.
func (e *Expr) IsCallLike() bool {
	return e.Kind == ExprCall || e.Kind == ExprNew || e.Kind == ExprDelegatingCall
}
