package symbols

import (
	"vela/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	// ScopeFile is the per-file root; it holds nothing but anchors the chain.
	ScopeFile
	// ScopePackage holds the top-level declarations of one package.
	ScopePackage
	// ScopeImport holds explicitly imported names of one file.
	ScopeImport
	// ScopeDefaultImport holds the prelude and star imports.
	ScopeDefaultImport
	ScopeClass
	ScopeFunction
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopePackage:
		return "package"
	case ScopeImport:
		return "import"
	case ScopeDefaultImport:
		return "default-import"
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// LookupPolicy decides how a scope combines its own results with its parent.
type LookupPolicy uint8

const (
	// Shadowing scopes stop at the first non-empty local result.
	Shadowing LookupPolicy = iota
	// Delegating scopes always consult the parent and union both results.
	Delegating
)

func (p LookupPolicy) String() string {
	if p == Delegating {
		return "delegating"
	}
	return "shadowing"
}

// Policy returns the lookup policy of the kind.
func (k ScopeKind) Policy() LookupPolicy {
	switch k {
	case ScopePackage, ScopeImport, ScopeDefaultImport:
		return Delegating
	default:
		return Shadowing
	}
}

// Scope models a lexical scope with a parent-child hierarchy.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Owner     SymbolID // class or function owning the scope
	Span      source.Span
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
