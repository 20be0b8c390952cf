package symbols

import (
	"slices"

	"vela/internal/source"
)

// KindMask restricts lookup to specific symbol kinds.
type KindMask uint32

const (
	// KindMaskNone filters out all kinds.
	KindMaskNone KindMask = 0
	// KindMaskAny allows all kinds.
	KindMaskAny KindMask = ^KindMask(0)
	// KindMaskValue matches everything a simple name expression can read.
	KindMaskValue = KindMask(1<<SymbolParam | 1<<SymbolVariable | 1<<SymbolProperty | 1<<SymbolReceiver)
	// KindMaskCallable matches things that can be invoked by name.
	KindMaskCallable = KindMask(1<<SymbolFunction | 1<<SymbolClass)
	// KindMaskClassifier matches names usable in type positions.
	KindMaskClassifier = KindMask(1<<SymbolClass | 1<<SymbolType)
)

// Mask converts a symbol kind into a KindMask bit.
func (k SymbolKind) Mask() KindMask {
	return KindMask(1 << uint(k))
}

func matchKind(mask KindMask, kind SymbolKind) bool {
	return mask == KindMaskAny || mask&kind.Mask() != 0
}

func allowsOverload(kind SymbolKind) bool {
	return kind == SymbolFunction || kind == SymbolConstructor
}

// canShareName reports whether two declarations may live under one name in
// one scope.
func canShareName(existing, next SymbolKind) bool {
	if existing == next {
		return allowsOverload(next)
	}
	// a class and a factory-like function of the same name
	if (existing == SymbolFunction && next == SymbolClass) || (existing == SymbolClass && next == SymbolFunction) {
		return true
	}
	return false
}

// LookupResult is the outcome of a name lookup. An empty result is a normal
// outcome; Ambiguous marks incompatible candidates.
type LookupResult struct {
	Symbols   []SymbolID
	Ambiguous bool
}

// Found reports whether any candidate was found.
func (r LookupResult) Found() bool { return len(r.Symbols) > 0 }

// First returns the first candidate, innermost scope first.
func (r LookupResult) First() SymbolID {
	if len(r.Symbols) == 0 {
		return NoSymbolID
	}
	return r.Symbols[0]
}

// Lookup resolves name starting at scopeID. Each scope contributes its local
// matches; a shadowing scope with matches ends the walk, a delegating scope
// always continues to its parent and the results are united. Lookup never
// mutates the table.
func (t *Table) Lookup(scopeID ScopeID, name source.StringID, mask KindMask) LookupResult {
	if mask == KindMaskNone {
		return LookupResult{}
	}
	var result []SymbolID
	seen := make(map[ScopeID]bool, 8)
	for scopeID.IsValid() && !seen[scopeID] {
		seen[scopeID] = true
		scope := t.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		local := t.lookupLocal(scope, name, mask)
		for _, id := range local {
			if !slices.Contains(result, id) {
				result = append(result, id)
			}
		}
		if len(local) > 0 && scope.Kind.Policy() == Shadowing {
			break
		}
		scopeID = scope.Parent
	}
	return LookupResult{Symbols: result, Ambiguous: t.ambiguous(result)}
}

// LookupLocal returns only the matches declared or aliased in scopeID.
func (t *Table) LookupLocal(scopeID ScopeID, name source.StringID, mask KindMask) []SymbolID {
	scope := t.Scopes.Get(scopeID)
	if scope == nil {
		return nil
	}
	return slices.Clone(t.lookupLocal(scope, name, mask))
}

// LookupMember resolves name among the members of class and, failing that,
// its superclasses.
func (t *Table) LookupMember(class SymbolID, name source.StringID, mask KindMask) LookupResult {
	seen := make(map[SymbolID]bool, 4)
	queue := []SymbolID{class}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		sym := t.Symbols.Get(id)
		if sym == nil {
			continue
		}
		if scope := t.Scopes.Get(sym.Members); scope != nil {
			if local := t.lookupLocal(scope, name, mask); len(local) > 0 {
				out := slices.Clone(local)
				return LookupResult{Symbols: out, Ambiguous: t.ambiguous(out)}
			}
		}
		queue = append(queue, sym.Supers...)
	}
	return LookupResult{}
}

func (t *Table) lookupLocal(scope *Scope, name source.StringID, mask KindMask) []SymbolID {
	ids := scope.NameIndex[name]
	if len(ids) == 0 || mask == KindMaskAny {
		return ids
	}
	var filtered []SymbolID
	for _, id := range ids {
		if sym := t.Symbols.Get(id); sym != nil && matchKind(mask, sym.Kind) {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

// ambiguous reports whether candidates contain two declarations that can
// neither share a name nor denote the same entity.
func (t *Table) ambiguous(ids []SymbolID) bool {
	for i := range ids {
		a := t.Symbols.Get(ids[i])
		if a == nil {
			continue
		}
		for _, other := range ids[i+1:] {
			b := t.Symbols.Get(other)
			if b == nil {
				continue
			}
			if a.FQName != "" && a.FQName == b.FQName {
				continue
			}
			if canShareName(a.Kind, b.Kind) {
				continue
			}
			return true
		}
	}
	return false
}
