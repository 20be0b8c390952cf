package check

import (
	"fmt"

	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/session"
	"vela/internal/source"
	"vela/internal/types"
)

// checkMissingOnClass runs the eager check: every class declaration is
// checked against its whole supertype hierarchy.
func checkMissingOnClass(c *Context, n ir.Node) {
	if cls, ok := n.(*ir.Class); ok {
		reportMissing(c, cls.Type, cls.Span, true)
	}
}

// checkMissingOnTypeRef checks written type uses. Supertype lists and the
// type arguments inside them are left to the eager class check.
func checkMissingOnTypeRef(c *Context, n ir.Node) {
	ref, ok := n.(*ir.TypeRef)
	if !ok || inSupertypeList(ref) {
		return
	}
	reportMissing(c, ref.Type, ref.Span, false)
}

// checkMissingOnCall checks the class being constructed and the receiver
// of member calls.
func checkMissingOnCall(c *Context, n ir.Node) {
	call, ok := n.(*ir.Expr)
	if !ok {
		return
	}
	switch data := call.Data.(type) {
	case *ir.NewData:
		reportMissing(c, data.Class, call.Span, false)
	case *ir.CallData:
		if data.Receiver != nil {
			reportMissing(c, data.Receiver.Type, call.Span, false)
		}
	}
}

func inSupertypeList(ref *ir.TypeRef) bool {
	for cur := ir.Node(ref); cur != nil; cur = cur.ParentNode() {
		t, ok := cur.(*ir.TypeRef)
		if !ok {
			return false
		}
		if t.Role == ir.RefSupertype {
			return true
		}
	}
	return false
}

// reportMissing reports one diagnostic per missing class in the hierarchy
// of class. A type-argument origin is a warning until
// ForbidUsingSupertypesWithInaccessibleContentInTypeArguments; an eager
// finding is a warning until AllowEagerSupertypeAccessibilityChecks; all
// others are errors.
func reportMissing(c *Context, class types.TypeID, sp source.Span, eager bool) {
	if class == types.NoTypeID {
		return
	}
	missing := c.MissingSupertypes(class)
	if len(missing) == 0 {
		return
	}
	owner := c.TypeString(c.Types.MakeNotNull(class))
	for _, m := range missing {
		msg := fmt.Sprintf("cannot access class '%s', a supertype of '%s'; check the library path for missing or conflicting dependencies", m.FQName, owner)
		var b *diag.ReportBuilder
		switch {
		case m.Origin == OriginTypeArgument && !c.Enabled(session.ForbidUsingSupertypesWithInaccessibleContentInTypeArguments):
			b = c.warningAt(diag.SemaMissingDependencySuperclassInTypeArgument, sp, msg)
		case eager && !c.Enabled(session.AllowEagerSupertypeAccessibilityChecks):
			b = c.warningAt(diag.SemaMissingDependencySuperclassWarning, sp, msg)
		default:
			b = c.errorAt(diag.SemaMissingDependencySuperclass, sp, msg)
		}
		b.WithArgs(m.FQName, owner).Emit()
	}
}
