package check

import (
	"vela/internal/types"
)

const missingCacheName = "check.missing-supertypes"

// SupertypeOrigin tells how a missing class entered a hierarchy.
type SupertypeOrigin uint8

const (
	// OriginSupertype is a class named in a supertype list.
	OriginSupertype SupertypeOrigin = iota
	// OriginTypeArgument is a class used as a type argument of a supertype.
	OriginTypeArgument
)

func (o SupertypeOrigin) String() string {
	if o == OriginTypeArgument {
		return "type-argument"
	}
	return "supertype"
}

// MissingSupertype is a class that some library refers to but that no
// library on the path provides.
type MissingSupertype struct {
	FQName string
	Origin SupertypeOrigin
}

// MissingSupertypes lists the missing classes reachable through the
// supertypes of class, nearest first. Results for library classes are
// shared by every unit of the session.
func (c *Context) MissingSupertypes(class types.TypeID) []MissingSupertype {
	info, ok := c.Types.ClassInfo(class)
	if !ok || info.Flags.Has(types.ClassMissing) {
		return nil
	}
	if !info.Flags.Has(types.ClassLibrary) {
		return collectMissing(c.Types, class)
	}
	out, err := c.missing.Get(info.FQName, func() ([]MissingSupertype, error) {
		return collectMissing(c.Types, class), nil
	})
	if err != nil {
		return collectMissing(c.Types, class)
	}
	return out
}

func collectMissing(in *types.Interner, class types.TypeID) []MissingSupertype {
	w := missingWalker{in: in, seen: make(map[types.TypeID]bool), found: make(map[string]bool)}
	w.walk(in.MakeNotNull(class), OriginSupertype)
	return w.out
}

type missingWalker struct {
	in    *types.Interner
	seen  map[types.TypeID]bool
	found map[string]bool
	out   []MissingSupertype
}

func (w *missingWalker) add(fq string, origin SupertypeOrigin) {
	if w.found[fq] {
		return
	}
	w.found[fq] = true
	w.out = append(w.out, MissingSupertype{FQName: fq, Origin: origin})
}

// walk visits the supertypes of class. origin is inherited by everything
// found below a type argument.
func (w *missingWalker) walk(class types.TypeID, origin SupertypeOrigin) {
	if w.seen[class] {
		return
	}
	w.seen[class] = true
	info, ok := w.in.ClassInfo(class)
	if !ok {
		return
	}
	for _, s := range info.Supers {
		w.visit(s, origin)
	}
	for _, a := range info.SuperArgs {
		w.visit(a, OriginTypeArgument)
	}
}

func (w *missingWalker) visit(t types.TypeID, origin SupertypeOrigin) {
	t = w.in.MakeNotNull(t)
	if elem, isArray := w.in.ElemType(t); isArray {
		w.visit(elem, origin)
		return
	}
	info, ok := w.in.ClassInfo(t)
	if !ok {
		return
	}
	if info.Flags.Has(types.ClassMissing) {
		w.add(info.FQName, origin)
		return
	}
	w.walk(t, origin)
}
