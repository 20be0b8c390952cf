package symbols

import (
	"vela/internal/source"
	"vela/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolPackage
	SymbolClass
	SymbolConstructor
	SymbolFunction
	SymbolProperty
	SymbolParam
	// SymbolReceiver is the implicit `this` of a class member.
	SymbolReceiver
	SymbolVariable
	// SymbolType names a builtin type or a type parameter.
	SymbolType
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolPackage:
		return "package"
	case SymbolClass:
		return "class"
	case SymbolConstructor:
		return "constructor"
	case SymbolFunction:
		return "function"
	case SymbolProperty:
		return "property"
	case SymbolParam:
		return "param"
	case SymbolReceiver:
		return "receiver"
	case SymbolVariable:
		return "variable"
	case SymbolType:
		return "type"
	default:
		return "invalid"
	}
}

// IsLocal reports whether symbols of this kind live in function bodies.
func (k SymbolKind) IsLocal() bool {
	return k == SymbolParam || k == SymbolVariable || k == SymbolReceiver
}

// Visibility of a declaration.
type Visibility uint8

const (
	VisPublic Visibility = iota
	VisInternal
	VisProtected
	VisPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisInternal:
		return "internal"
	case VisProtected:
		return "protected"
	case VisPrivate:
		return "private"
	default:
		return "public"
	}
}

// SymbolFlags encode modifiers and origin for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagOpen SymbolFlags = 1 << iota
	SymbolFlagAbstract
	SymbolFlagFinal
	SymbolFlagExternal
	// SymbolFlagValue marks inline-like value classes.
	SymbolFlagValue
	SymbolFlagPrimary
	SymbolFlagMutable
	SymbolFlagVararg
	SymbolFlagImported
	SymbolFlagBuiltin
	SymbolFlagLibrary
	SymbolFlagSynthesized
	SymbolFlagInline
)

var flagLabels = [...]string{
	"open", "abstract", "final", "external", "value", "primary", "mutable",
	"vararg", "imported", "builtin", "library", "synthesized", "inline",
}

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for i, label := range flagLabels {
		if f&(1<<i) != 0 {
			labels = append(labels, label)
		}
	}
	return labels
}

// Has reports whether all bits of flag are set.
func (f SymbolFlags) Has(flag SymbolFlags) bool { return f&flag == flag }

// Annotation is a resolved annotation use.
type Annotation struct {
	Name string
	Args map[string]string
	Span source.Span
}

// Signature captures the callable shape of functions and constructors.
type Signature struct {
	Params     []types.TypeID
	ParamNames []string
	// Vararg is the index of the vararg parameter, -1 when absent. Its
	// Params entry is the element type.
	Vararg int
	// Defaults marks parameters that may be omitted at call sites.
	Defaults   []bool
	Result     types.TypeID
	TypeParams []types.TypeID
}

// Arity returns the number of declared parameters.
func (s *Signature) Arity() int { return len(s.Params) }

// HasDefault reports whether parameter i has a default value.
func (s *Signature) HasDefault(i int) bool {
	return i >= 0 && i < len(s.Defaults) && s.Defaults[i]
}

// Symbol describes a named entity available in a scope.
type Symbol struct {
	Name        source.StringID
	Kind        SymbolKind
	Scope       ScopeID
	Owner       SymbolID // enclosing class, function or constructor
	Span        source.Span
	Flags       SymbolFlags
	Visibility  Visibility
	Type        types.TypeID
	Signature   *Signature
	Annotations []Annotation
	FQName      string
	Library     string     // providing library, empty for sources
	Members     ScopeID    // class member scope
	Supers      []SymbolID // direct superclasses
}

// Annotation returns the first annotation called name.
func (s *Symbol) Annotation(name string) (Annotation, bool) {
	for _, a := range s.Annotations {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}
