package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// ClassFlags describe a nominal class type.
type ClassFlags uint16

const (
	ClassOpen ClassFlags = 1 << iota
	ClassAbstract
	// ClassValue marks inline-like value wrappers.
	ClassValue
	ClassExternal
	ClassBuiltin
	// ClassLibrary marks classes loaded from a persisted library.
	ClassLibrary
	// ClassMissing marks a class that is referenced by a library but that
	// no library on the path provides.
	ClassMissing
)

func (f ClassFlags) Has(flag ClassFlags) bool { return f&flag != 0 }

// ClassInfo stores metadata for a class type.
type ClassInfo struct {
	FQName string
	Flags  ClassFlags
	Supers []TypeID
	// SuperArgs are the types used as type arguments of the supertypes.
	SuperArgs  []TypeID
	TypeParams []TypeID
}

// Name returns the simple name.
func (c *ClassInfo) Name() string {
	for i := len(c.FQName) - 1; i >= 0; i-- {
		if c.FQName[i] == '.' {
			return c.FQName[i+1:]
		}
	}
	return c.FQName
}

// TypeParamInfo stores metadata for a type parameter.
type TypeParamInfo struct {
	Name   string
	Owner  string // FQ name of the declaring class or function
	Bounds []TypeID
}

// RegisterClass returns the TypeID for fqName, allocating a slot on first
// use. Flags of an existing class are merged.
func (in *Interner) RegisterClass(fqName string, flags ClassFlags) TypeID {
	if id, ok := in.classByFQ[fqName]; ok {
		in.classes[in.MustLookup(id).Payload].Flags |= flags
		return id
	}
	slot, err := safecast.Conv[uint32](len(in.classes))
	if err != nil {
		panic(fmt.Errorf("class slots overflow: %w", err))
	}
	in.classes = append(in.classes, ClassInfo{FQName: fqName, Flags: flags})
	id := in.internRaw(Type{Kind: KindClass, Payload: slot})
	in.classByFQ[fqName] = id
	return id
}

// ClassByName finds a registered class by fully qualified name.
func (in *Interner) ClassByName(fqName string) (TypeID, bool) {
	id, ok := in.classByFQ[fqName]
	return id, ok
}

// SetSupertypes stores the direct supertypes of a class.
func (in *Interner) SetSupertypes(id TypeID, supers []TypeID) {
	if info := in.classInfo(id); info != nil {
		info.Supers = slices.Clone(supers)
	}
}

// SetSuperTypeArgs stores the type arguments written in the supertype list.
func (in *Interner) SetSuperTypeArgs(id TypeID, args []TypeID) {
	if info := in.classInfo(id); info != nil {
		info.SuperArgs = slices.Clone(args)
	}
}

// SetClassTypeParams stores the type parameters of a class.
func (in *Interner) SetClassTypeParams(id TypeID, params []TypeID) {
	if info := in.classInfo(id); info != nil {
		info.TypeParams = slices.Clone(params)
	}
}

// ClassInfo returns metadata for a class type, looking through nullability.
func (in *Interner) ClassInfo(id TypeID) (*ClassInfo, bool) {
	info := in.classInfo(id)
	return info, info != nil
}

func (in *Interner) classInfo(id TypeID) *ClassInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClass {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.classes) {
		return nil
	}
	return &in.classes[tt.Payload]
}

// RegisterTypeParam allocates a fresh type parameter.
func (in *Interner) RegisterTypeParam(name, owner string, bounds []TypeID) TypeID {
	slot, err := safecast.Conv[uint32](len(in.typeParams))
	if err != nil {
		panic(fmt.Errorf("type param slots overflow: %w", err))
	}
	in.typeParams = append(in.typeParams, TypeParamInfo{Name: name, Owner: owner, Bounds: slices.Clone(bounds)})
	return in.internRaw(Type{Kind: KindTypeParam, Payload: slot})
}

// TypeParamInfo returns metadata for a type parameter type.
func (in *Interner) TypeParamInfo(id TypeID) (*TypeParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTypeParam || int(tt.Payload) >= len(in.typeParams) {
		return nil, false
	}
	return &in.typeParams[tt.Payload], true
}

// IsThrowable reports whether a class is Throwable or derives from it.
func (in *Interner) IsThrowable(id TypeID) bool {
	return in.IsSubtype(in.MakeNotNull(id), in.builtins.Throwable)
}

// IsValueClass reports whether id is an inline-like value class.
func (in *Interner) IsValueClass(id TypeID) bool {
	info := in.classInfo(id)
	return info != nil && info.Flags.Has(ClassValue)
}
