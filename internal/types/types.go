package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindNothing
	KindAny
	KindBool
	KindInt
	KindLong
	KindDouble
	KindString
	KindClass
	KindTypeParam
	KindArray
	// KindError stands in for types that failed to resolve; it is assignable
	// both ways so one bad reference does not cascade.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "Unit"
	case KindNothing:
		return "Nothing"
	case KindAny:
		return "Any"
	case KindBool:
		return "Boolean"
	case KindInt:
		return "Int"
	case KindLong:
		return "Long"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindClass:
		return "class"
	case KindTypeParam:
		return "type-param"
	case KindArray:
		return "Array"
	case KindError:
		return "<error>"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Nullability distinguishes T, T? and the flexible T! seen through
// declarations with unknown nullability.
type Nullability uint8

const (
	NotNull Nullability = iota
	Nullable
	Flexible
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind        Kind
	Elem        TypeID // for arrays
	Payload     uint32 // class or type parameter slot
	Nullability Nullability
}

func (t Type) withNullability(n Nullability) Type {
	t.Nullability = n
	return t
}
