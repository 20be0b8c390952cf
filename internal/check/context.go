package check

import (
	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/session"
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/types"
)

// Context is what a rule sees of the run. It is valid only during the
// callback it was passed to.
type Context struct {
	Session  *session.Session
	Module   *ir.Module
	Table    *symbols.Table
	Types    *types.Interner
	Features session.FeatureSet
	Reporter diag.Reporter

	scopes  []symbols.ScopeID
	missing *session.Cache[[]MissingSupertype]
}

func newContext(sess *session.Session, m *ir.Module, r diag.Reporter) *Context {
	return &Context{
		Session:  sess,
		Module:   m,
		Table:    m.Symbols,
		Types:    m.Types,
		Features: sess.Features(),
		Reporter: r,
		missing:  session.CacheFor[[]MissingSupertype](sess, missingCacheName),
	}
}

// Scope returns the innermost scope around the node being checked.
func (c *Context) Scope() symbols.ScopeID {
	if len(c.scopes) == 0 {
		return symbols.NoScopeID
	}
	return c.scopes[len(c.scopes)-1]
}

// Enabled reports whether language feature f is on.
func (c *Context) Enabled(f session.Feature) bool {
	return c.Features.Enabled(f)
}

// Symbol returns the symbol id, or nil.
func (c *Context) Symbol(id symbols.SymbolID) *symbols.Symbol {
	if !id.IsValid() {
		return nil
	}
	return c.Table.Get(id)
}

// TypeString renders a type for messages.
func (c *Context) TypeString(id types.TypeID) string {
	return c.Types.Format(id)
}

func (c *Context) errorAt(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportError(c.Reporter, code, sp, msg)
}

func (c *Context) warningAt(code diag.Code, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportWarning(c.Reporter, code, sp, msg)
}

func (c *Context) push(id symbols.ScopeID) { c.scopes = append(c.scopes, id) }
func (c *Context) pop()                    { c.scopes = c.scopes[:len(c.scopes)-1] }
