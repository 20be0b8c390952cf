package check

import "vela/internal/ir"

// Shape classifies the IR nodes a rule can subscribe to.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeClass
	ShapeFunction
	ShapeConstructor
	ShapeProperty
	// ShapeCall covers function calls, constructor calls and delegating
	// calls.
	ShapeCall
	ShapeReturn
	// ShapeTypeRef covers every written type use.
	ShapeTypeRef
	shapeCount
)

var shapeNames = [...]string{
	ShapeNone:        "none",
	ShapeClass:       "class",
	ShapeFunction:    "function",
	ShapeConstructor: "constructor",
	ShapeProperty:    "property",
	ShapeCall:        "call",
	ShapeReturn:      "return",
	ShapeTypeRef:     "type-ref",
}

func (s Shape) String() string {
	if s < shapeCount {
		return shapeNames[s]
	}
	return "unknown"
}

// ShapeOf returns the shape of n, ShapeNone when no rule can target it.
func ShapeOf(n ir.Node) Shape {
	switch n := n.(type) {
	case *ir.Class:
		return ShapeClass
	case *ir.Function:
		return ShapeFunction
	case *ir.Constructor:
		return ShapeConstructor
	case *ir.Property:
		return ShapeProperty
	case *ir.TypeRef:
		return ShapeTypeRef
	case *ir.Expr:
		if n.IsCallLike() {
			return ShapeCall
		}
	case *ir.Stmt:
		if n.Kind == ir.StmtReturn {
			return ShapeReturn
		}
	}
	return ShapeNone
}
