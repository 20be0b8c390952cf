package check

import (
	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/session"
)

// checkConstructorShape validates secondary constructors: with a primary
// constructor present they must delegate to a constructor of the same
// class, and value classes may give them a body only behind a feature.
func checkConstructorShape(c *Context, n ir.Node) {
	ctor, ok := n.(*ir.Constructor)
	if !ok || ctor.Primary {
		return
	}
	cls := ctor.Class()
	if cls == nil {
		return
	}
	if cls.PrimaryConstructor() != nil && !delegatesToThis(ctor) {
		c.errorAt(diag.SemaSecondaryCtorMustDelegate, ctor.Span,
			"primary constructor call expected: a secondary constructor must delegate to this(...)").
			WithArgs(cls.Name).
			Emit()
	}
	if cls.IsValue() && ctor.Body != nil && !c.Enabled(session.ValueClassSecondaryConstructorsWithBodies) {
		c.errorAt(diag.SemaValueClassCtorBody, ctor.Span,
			"secondary constructors of value classes cannot have bodies").
			WithArgs(cls.Name).
			Emit()
	}
}

func delegatesToThis(ctor *ir.Constructor) bool {
	if ctor.Delegation == nil {
		return false
	}
	data, ok := ctor.Delegation.Data.(*ir.DelegatingCallData)
	return ok && !data.Super
}
