package lower

import (
	"errors"
	"fmt"

	"vela/internal/diag"
	"vela/internal/ir"
)

// Validate checks that m holds no secondary constructor outside bypassed
// classes and no call still bound to one.
func (l *Lowerer) Validate(m *ir.Module) error {
	var errs []error
	m.Inspect(func(n ir.Node) bool {
		switch n := n.(type) {
		case *ir.Constructor:
			if !n.Primary && !l.bypassed(n.Class()) {
				errs = append(errs, fmt.Errorf("class %s: secondary constructor survived lowering", className(n)))
			}
		case *ir.Function:
			if n.Role == ir.RoleInitializer && n.This == nil {
				errs = append(errs, fmt.Errorf("initializer %s has no instance parameter", n.Name))
			}
		case *ir.Expr:
			target := delegationTarget(n)
			if data, ok := n.Data.(*ir.NewData); ok {
				target = data.Ctor
			}
			if _, redirect := l.isSecondaryCall(target); redirect {
				errs = append(errs, fmt.Errorf("%s call still targets %s", n.Kind, l.table.Describe(target)))
			}
		}
		return true
	})
	if err := errors.Join(errs...); err != nil {
		return &InternalError{Code: diag.InternalMalformedIR, Msg: "lowered module " + m.Name + " is malformed", Err: err}
	}
	return nil
}
