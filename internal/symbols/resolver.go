package symbols

import (
	"fmt"

	"vela/internal/diag"
	"vela/internal/source"
)

// ResolverOptions configures resolver construction.
type ResolverOptions struct {
	Reporter diag.Reporter
}

// Resolver drives scope management and declaration routines while a unit
// is being built.
type Resolver struct {
	table                 *Table
	reporter              diag.Reporter
	stack                 []ScopeID
	scopeMismatchReported map[ScopeID]bool
}

// NewResolver wires a resolver to the table. If root is valid it becomes the
// current scope; otherwise scope-sensitive operations are no-ops.
func NewResolver(table *Table, root ScopeID, opts ResolverOptions) *Resolver {
	r := &Resolver{
		table:                 table,
		reporter:              opts.Reporter,
		stack:                 make([]ScopeID, 0, 8),
		scopeMismatchReported: make(map[ScopeID]bool),
	}
	if root.IsValid() {
		r.stack = append(r.stack, root)
	}
	return r
}

// Table returns the underlying table.
func (r *Resolver) Table() *Table { return r.table }

// CurrentScope returns the scope at the top of the stack.
func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Enter creates a child scope, pushes it onto the stack, and returns its ID.
func (r *Resolver) Enter(kind ScopeKind, owner SymbolID, span source.Span) ScopeID {
	scope := r.table.Scopes.New(kind, r.CurrentScope(), owner, span)
	r.stack = append(r.stack, scope)
	return scope
}

// Push makes an existing scope current.
func (r *Resolver) Push(scope ScopeID) {
	r.stack = append(r.stack, scope)
}

// Leave pops the current scope, validating against the expected one. A
// mismatch is reported once per scope as a warning.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) == 0 {
		return
	}
	top := r.stack[len(r.stack)-1]
	if expected.IsValid() && top != expected {
		r.reportScopeMismatch(expected, top)
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Declare installs sym into the current scope.
func (r *Resolver) Declare(sym Symbol) (SymbolID, bool) {
	return r.DeclareIn(r.CurrentScope(), sym)
}

// DeclareIn installs sym into scopeID. Returns false if the declaration
// conflicts with an existing one; the conflict is reported.
func (r *Resolver) DeclareIn(scopeID ScopeID, sym Symbol) (SymbolID, bool) {
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID, false
	}
	for _, id := range scope.NameIndex[sym.Name] {
		prev := r.table.Symbols.Get(id)
		if prev == nil || canShareName(prev.Kind, sym.Kind) {
			continue
		}
		if prev.Scope != scopeID {
			// alias of an imported declaration
			continue
		}
		r.reportDuplicateSymbol(sym.Name, sym.Span, prev)
		return NoSymbolID, false
	}
	if sym.Kind.IsLocal() && sym.Kind != SymbolReceiver {
		if shadow := r.findShadowing(scopeID, sym.Name); shadow.IsValid() {
			r.reportShadowing(sym.Name, sym.Span, shadow)
		}
	}
	return r.table.Add(scopeID, sym), true
}

// findShadowing looks for a local of the same name in enclosing function
// and block scopes.
func (r *Resolver) findShadowing(scopeID ScopeID, name source.StringID) SymbolID {
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID
	}
	for parent := scope.Parent; parent.IsValid(); {
		parentScope := r.table.Scopes.Get(parent)
		if parentScope == nil || (parentScope.Kind != ScopeFunction && parentScope.Kind != ScopeBlock) {
			break
		}
		for _, id := range parentScope.NameIndex[name] {
			if sym := r.table.Symbols.Get(id); sym != nil && sym.Kind.IsLocal() {
				return id
			}
		}
		parent = parentScope.Parent
	}
	return NoSymbolID
}

func (r *Resolver) reportDuplicateSymbol(name source.StringID, span source.Span, prev *Symbol) {
	if r.reporter == nil {
		return
	}
	nameStr := r.table.Strings.MustLookup(name)
	msg := fmt.Sprintf("duplicate declaration of '%s'", nameStr)
	builder := diag.ReportError(r.reporter, diag.SemaDuplicateSymbol, span, msg).WithArgs(nameStr)
	noteMsg := "previous declaration here"
	if prev.Flags&SymbolFlagBuiltin != 0 {
		noteMsg = "built-in declaration here"
	}
	if !prev.Span.IsZero() {
		builder.WithNote(prev.Span, noteMsg)
	}
	builder.Emit()
}

func (r *Resolver) reportShadowing(name source.StringID, span source.Span, shadow SymbolID) {
	if r.reporter == nil {
		return
	}
	nameStr := r.table.Strings.MustLookup(name)
	if nameStr == "_" {
		return
	}
	msg := fmt.Sprintf("declaration of '%s' shadows previous binding", nameStr)
	builder := diag.ReportWarning(r.reporter, diag.SemaShadowedName, span, msg).WithArgs(nameStr)
	if prev := r.table.Symbols.Get(shadow); prev != nil && !prev.Span.IsZero() {
		builder.WithNote(prev.Span, "previous declaration here")
	}
	builder.Emit()
}

func (r *Resolver) reportScopeMismatch(expected, actual ScopeID) {
	if r.reporter == nil || r.scopeMismatchReported[actual] {
		return
	}
	r.scopeMismatchReported[actual] = true

	var primary source.Span
	actualLabel := fmt.Sprintf("scope #%d", actual)
	if scope := r.table.Scopes.Get(actual); scope != nil {
		primary = scope.Span
		actualLabel = fmt.Sprintf("%s scope #%d", scope.Kind, actual)
	}
	expectedLabel := "unknown scope"
	expectedScope := r.table.Scopes.Get(expected)
	if expectedScope != nil {
		expectedLabel = fmt.Sprintf("%s scope #%d", expectedScope.Kind, expected)
	}
	msg := fmt.Sprintf("scope stack mismatch: closing %s while expecting %s", actualLabel, expectedLabel)
	builder := diag.ReportWarning(r.reporter, diag.SemaScopeMismatch, primary, msg)
	if expectedScope != nil {
		builder.WithNote(expectedScope.Span, "expected scope declared here")
	}
	builder.Emit()
}
