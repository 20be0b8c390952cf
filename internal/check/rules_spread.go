package check

import (
	"vela/internal/diag"
	"vela/internal/ir"
)

// checkSpreadOfNullable reports `*xs` arguments whose array may be null.
// Vararg groups are checked per element, so one call can report several
// times, in argument order.
func checkSpreadOfNullable(c *Context, n ir.Node) {
	call, ok := n.(*ir.Expr)
	if !ok {
		return
	}
	for _, arg := range call.Args() {
		if group, isGroup := arg.Data.(*ir.VarargData); isGroup {
			for _, elem := range group.Elems {
				spreadOfNullable(c, elem)
			}
			continue
		}
		spreadOfNullable(c, arg)
	}
}

func spreadOfNullable(c *Context, arg *ir.Expr) {
	spread, ok := arg.Data.(*ir.SpreadData)
	if !ok || spread.Fake {
		return
	}
	if c.Types.IsFlexible(arg.Type) || !c.Types.CanBeNull(arg.Type) {
		return
	}
	c.errorAt(diag.SemaSpreadOfNullable, arg.Span, "the spread operator (*foo) cannot be applied to an argument of nullable type").
		WithArgs(c.TypeString(arg.Type)).
		Emit()
}
