package check

import (
	"fmt"

	"vela/internal/diag"
	"vela/internal/ir"
	"vela/internal/symbols"
	"vela/internal/types"
)

// callee returns the function or constructor a call-like expression binds.
func callee(e *ir.Expr) symbols.SymbolID {
	switch data := e.Data.(type) {
	case *ir.CallData:
		return data.Callee
	case *ir.NewData:
		return data.Ctor
	case *ir.DelegatingCallData:
		return data.Ctor
	}
	return symbols.NoSymbolID
}

// checkArgumentTypes matches each argument against its parameter. Vararg
// groups are matched element by element; a spread contributes its array's
// element type.
func checkArgumentTypes(c *Context, n ir.Node) {
	call, ok := n.(*ir.Expr)
	if !ok {
		return
	}
	sym := c.Symbol(callee(call))
	if sym == nil || sym.Signature == nil {
		return
	}
	sig := sym.Signature
	for i, arg := range call.Args() {
		if i >= len(sig.Params) {
			break
		}
		group, isGroup := arg.Data.(*ir.VarargData)
		if !isGroup {
			argumentFits(c, sig.Params[i], arg, arg.Type)
			continue
		}
		if sig.Vararg < 0 {
			continue
		}
		slot := sig.Params[sig.Vararg]
		for _, elem := range group.Elems {
			got := elem.Type
			if _, spread := elem.Data.(*ir.SpreadData); spread {
				if e, isArray := c.Types.ElemType(c.Types.MakeNotNull(got)); isArray {
					got = e
				}
			}
			argumentFits(c, slot, elem, got)
		}
	}
}

func argumentFits(c *Context, slot types.TypeID, arg *ir.Expr, got types.TypeID) {
	if skipTypeCheck(c.Types, slot) || skipTypeCheck(c.Types, got) || c.Types.Assignable(slot, got) {
		return
	}
	if c.Types.Assignable(slot, c.Types.MakeNotNull(got)) {
		c.errorAt(diag.SemaNullableArgument, arg.Span,
			fmt.Sprintf("argument of type '%s' may be null, parameter expects '%s'", c.TypeString(got), c.TypeString(slot))).
			WithArgs(c.TypeString(got), c.TypeString(slot)).
			Emit()
		return
	}
	c.errorAt(diag.SemaTypeMismatch, arg.Span,
		fmt.Sprintf("argument type mismatch: expected '%s', found '%s'", c.TypeString(slot), c.TypeString(got))).
		WithArgs(c.TypeString(slot), c.TypeString(got)).
		Emit()
}

// checkReturnType matches returned values against the declared result of
// the function the return leaves.
func checkReturnType(c *Context, n ir.Node) {
	st, ok := n.(*ir.Stmt)
	if !ok {
		return
	}
	ret, ok := st.Data.(*ir.ReturnData)
	if !ok || ret.Value == nil {
		return
	}
	target := c.Symbol(ret.Target)
	if target == nil || target.Kind != symbols.SymbolFunction || target.Signature == nil {
		return
	}
	want, got := target.Signature.Result, ret.Value.Type
	if skipTypeCheck(c.Types, want) || skipTypeCheck(c.Types, got) || c.Types.Assignable(want, got) {
		return
	}
	c.errorAt(diag.SemaReturnTypeMismatch, ret.Value.Span,
		fmt.Sprintf("return type mismatch: expected '%s', found '%s'", c.TypeString(want), c.TypeString(got))).
		WithArgs(c.TypeString(want), c.TypeString(got)).
		Emit()
}

// skipTypeCheck is true for types the checker cannot judge: unresolved
// types, errors already reported, and anything built from a type
// parameter.
func skipTypeCheck(in *types.Interner, id types.TypeID) bool {
	if id == types.NoTypeID || in.IsError(id) {
		return true
	}
	if elem, ok := in.ElemType(in.MakeNotNull(id)); ok {
		return skipTypeCheck(in, elem)
	}
	_, isParam := in.TypeParamInfo(id)
	return isParam
}
