package symbols

import (
	"vela/internal/types"
)

// PreludeEntry describes a symbol injected before source traversal.
type PreludeEntry struct {
	Name      string
	FQName    string
	Kind      SymbolKind
	Flags     SymbolFlags
	Type      types.TypeID
	Signature *Signature
	Members   []PreludeEntry
}

// BuiltinPrelude returns the declarations every file sees without imports.
func BuiltinPrelude(in *types.Interner) []PreludeEntry {
	b := in.Builtins()
	nullableString := in.MakeNullable(b.String)
	nullableAny := in.MakeNullable(b.Any)
	throwableCtors := func(owner types.TypeID) []PreludeEntry {
		return []PreludeEntry{
			{Name: "<init>", Kind: SymbolConstructor, Flags: SymbolFlagExternal | SymbolFlagPrimary,
				Type: owner, Signature: &Signature{Vararg: -1, Result: owner}},
			{Name: "<init>", Kind: SymbolConstructor, Flags: SymbolFlagExternal,
				Type: owner, Signature: &Signature{Params: []types.TypeID{nullableString}, ParamNames: []string{"message"}, Vararg: -1, Result: owner}},
		}
	}
	return []PreludeEntry{
		{Name: "Any", Kind: SymbolType, Type: b.Any},
		{Name: "Unit", Kind: SymbolType, Type: b.Unit},
		{Name: "Nothing", Kind: SymbolType, Type: b.Nothing},
		{Name: "Boolean", Kind: SymbolType, Type: b.Bool},
		{Name: "Int", Kind: SymbolType, Type: b.Int},
		{Name: "Long", Kind: SymbolType, Type: b.Long},
		{Name: "Double", Kind: SymbolType, Type: b.Double},
		{Name: "String", Kind: SymbolType, Type: b.String},
		{Name: "Throwable", FQName: types.ThrowableName, Kind: SymbolClass, Flags: SymbolFlagOpen | SymbolFlagExternal,
			Type: b.Throwable, Members: throwableCtors(b.Throwable)},
		{Name: "Exception", FQName: types.ExceptionName, Kind: SymbolClass, Flags: SymbolFlagOpen | SymbolFlagExternal,
			Type: b.Exception, Members: throwableCtors(b.Exception)},
		{Name: "println", FQName: "vela.println", Kind: SymbolFunction, Flags: SymbolFlagExternal,
			Signature: &Signature{Params: []types.TypeID{nullableAny}, ParamNames: []string{"message"}, Vararg: -1, Result: b.Unit}},
	}
}

// InstallPrelude declares entries into scopeID, flagged as builtins.
func (t *Table) InstallPrelude(scopeID ScopeID, entries []PreludeEntry) {
	for _, entry := range entries {
		t.installEntry(scopeID, NoSymbolID, entry)
	}
	// Exception derives from Throwable.
	if thr, ok := t.ClassByFQName(types.ThrowableName); ok {
		if exc, ok := t.ClassByFQName(types.ExceptionName); ok {
			t.Symbols.Get(exc).Supers = []SymbolID{thr}
		}
	}
}

func (t *Table) installEntry(scopeID ScopeID, owner SymbolID, entry PreludeEntry) SymbolID {
	id := t.Add(scopeID, Symbol{
		Name:      t.Strings.Intern(entry.Name),
		Kind:      entry.Kind,
		Owner:     owner,
		Flags:     entry.Flags | SymbolFlagBuiltin,
		Type:      entry.Type,
		Signature: entry.Signature,
		FQName:    entry.FQName,
	})
	if entry.Kind == SymbolClass {
		members := t.Scopes.New(ScopeClass, NoScopeID, id, t.Symbols.Get(id).Span)
		t.Symbols.Get(id).Members = members
		for _, m := range entry.Members {
			t.installEntry(members, id, m)
		}
	}
	return id
}
