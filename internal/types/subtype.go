package types

// IsSubtype reports whether sub <: super. The class graph is walked through
// declared supertypes; missing classes are subtypes of nothing but Any.
func (in *Interner) IsSubtype(sub, super TypeID) bool {
	if sub == super {
		return true
	}
	a, okA := in.Lookup(sub)
	b, okB := in.Lookup(super)
	if !okA || !okB {
		return false
	}
	if a.Kind == KindError || b.Kind == KindError {
		return true
	}
	if a.Kind == KindNothing && a.Nullability == NotNull {
		return true
	}
	// T! is assignable to and from both T and T?.
	if a.Nullability == Flexible || b.Nullability == Flexible {
		return in.IsSubtype(in.MakeNotNull(sub), in.MakeNotNull(super))
	}
	if a.Nullability == Nullable && b.Nullability == NotNull {
		return false
	}
	if a.Kind == KindNothing {
		return b.Nullability == Nullable
	}
	a.Nullability, b.Nullability = NotNull, NotNull
	if a == b {
		return true
	}
	if b.Kind == KindAny {
		return true
	}
	switch a.Kind {
	case KindClass:
		if b.Kind != KindClass {
			return false
		}
		return in.classDerives(in.Intern(a), in.Intern(b), make(map[TypeID]bool))
	case KindTypeParam:
		info := in.typeParams[a.Payload]
		for _, bound := range info.Bounds {
			if in.IsSubtype(in.MakeNotNull(bound), in.Intern(b)) {
				return true
			}
		}
		return false
	case KindArray:
		return b.Kind == KindArray && in.IsSubtype(a.Elem, b.Elem)
	default:
		return false
	}
}

func (in *Interner) classDerives(sub, super TypeID, seen map[TypeID]bool) bool {
	if sub == super {
		return true
	}
	if seen[sub] {
		return false
	}
	seen[sub] = true
	info := in.classInfo(sub)
	if info == nil {
		return false
	}
	for _, s := range info.Supers {
		if in.classDerives(in.MakeNotNull(s), super, seen) {
			return true
		}
	}
	return false
}

// Assignable reports whether a value of type value fits a slot of type slot.
// An unresolved side (NoTypeID) is treated as compatible.
func (in *Interner) Assignable(slot, value TypeID) bool {
	if slot == NoTypeID || value == NoTypeID {
		return true
	}
	return in.IsSubtype(value, slot)
}
