package check

import (
	"fmt"
	"strings"

	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/symbols"
)

const deprecatedAnnotation = "Deprecated"

// checkDeprecatedCall reports calls of declarations annotated @Deprecated.
// Constructors also inherit the annotation from their class. The argument
// level = "ERROR" turns the warning into an error.
func checkDeprecatedCall(c *Context, n ir.Node) {
	call, ok := n.(*ir.Expr)
	if !ok {
		return
	}
	id := callee(call)
	sym := c.Symbol(id)
	if sym == nil {
		return
	}
	ann, found := sym.Annotation(deprecatedAnnotation)
	if !found && sym.Kind == symbols.SymbolConstructor {
		if cls := c.Symbol(sym.Owner); cls != nil {
			ann, found = cls.Annotation(deprecatedAnnotation)
		}
	}
	if !found {
		return
	}
	name := displayName(c, id)
	msg := fmt.Sprintf("'%s' is deprecated", name)
	if text := ann.Args["message"]; text != "" {
		msg += ": " + text
	}
	if strings.EqualFold(ann.Args["level"], "ERROR") {
		c.errorAt(diag.SemaDeprecatedUsageError, call.Span, msg).WithArgs(name).Emit()
		return
	}
	c.warningAt(diag.SemaDeprecatedUsage, call.Span, msg).WithArgs(name).Emit()
}

func displayName(c *Context, id symbols.SymbolID) string {
	sym := c.Symbol(id)
	if sym.Kind == symbols.SymbolConstructor && sym.Owner.IsValid() {
		id, sym = sym.Owner, c.Symbol(sym.Owner)
	}
	if sym.FQName != "" {
		return sym.FQName
	}
	return c.Table.Name(id)
}
