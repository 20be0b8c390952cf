package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive and root types.
type Builtins struct {
	Invalid   TypeID
	Unit      TypeID
	Nothing   TypeID
	Any       TypeID
	Bool      TypeID
	Int       TypeID
	Long      TypeID
	Double    TypeID
	String    TypeID
	Error     TypeID
	Throwable TypeID
	Exception TypeID
}

// Well-known fully qualified names of the builtin classes.
const (
	ThrowableName = "vela.Throwable"
	ExceptionName = "vela.Exception"
)

// Interner provides stable TypeIDs by hashing structural descriptors.
// An Interner belongs to one unit and is not goroutine-safe.
type Interner struct {
	types      []Type
	index      map[Type]TypeID
	builtins   Builtins
	classes    []ClassInfo
	classByFQ  map[string]TypeID
	typeParams []TypeParamInfo
}

// NewInterner constructs an interner seeded with the builtins.
func NewInterner() *Interner {
	in := &Interner{
		index:     make(map[Type]TypeID, 64),
		classByFQ: make(map[string]TypeID, 16),
	}
	in.classes = append(in.classes, ClassInfo{}) // reserve 0 as invalid sentinel
	in.typeParams = append(in.typeParams, TypeParamInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Nothing = in.Intern(Type{Kind: KindNothing})
	in.builtins.Any = in.Intern(Type{Kind: KindAny})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Long = in.Intern(Type{Kind: KindLong})
	in.builtins.Double = in.Intern(Type{Kind: KindDouble})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Error = in.Intern(Type{Kind: KindError})

	in.builtins.Throwable = in.RegisterClass(ThrowableName, ClassOpen|ClassBuiltin)
	in.SetSupertypes(in.builtins.Throwable, []TypeID{in.builtins.Any})
	in.builtins.Exception = in.RegisterClass(ExceptionName, ClassOpen|ClassBuiltin)
	in.SetSupertypes(in.builtins.Exception, []TypeID{in.builtins.Throwable})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// ArrayOf interns Array<elem>.
func (in *Interner) ArrayOf(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindArray, Elem: elem})
}

// MakeNullable returns T? for T. Nothing? is the type of the null literal.
func (in *Interner) MakeNullable(id TypeID) TypeID {
	return in.withNullability(id, Nullable)
}

// MakeFlexible returns T! for T.
func (in *Interner) MakeFlexible(id TypeID) TypeID {
	return in.withNullability(id, Flexible)
}

// MakeNotNull strips nullability.
func (in *Interner) MakeNotNull(id TypeID) TypeID {
	return in.withNullability(id, NotNull)
}

func (in *Interner) withNullability(id TypeID, n Nullability) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind == KindError {
		return id
	}
	return in.Intern(tt.withNullability(n))
}

// CanBeNull reports whether a value of type id may hold null. Flexible
// types count: their nullability is simply unknown.
func (in *Interner) CanBeNull(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	if tt.Nullability != NotNull {
		return true
	}
	if tt.Kind == KindTypeParam {
		for _, b := range in.typeParams[tt.Payload].Bounds {
			if !in.CanBeNull(b) {
				return false
			}
		}
		return true
	}
	return false
}

// IsFlexible reports whether id is a T! type.
func (in *Interner) IsFlexible(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Nullability == Flexible
}

// IsError reports whether id is the error type.
func (in *Interner) IsError(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindError
}

// ElemType returns the element of an array type.
func (in *Interner) ElemType(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindArray {
		return NoTypeID, false
	}
	return tt.Elem, true
}
