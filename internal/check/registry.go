package check

import (
	"fmt"

	"vela/internal/ir"
)

// Rule is one check bound to a node shape.
type Rule struct {
	Name  string
	Shape Shape
	Check func(c *Context, n ir.Node)
}

// Registry maps shapes to rules. Rules of one shape run in the order they
// were registered.
type Registry struct {
	byShape [shapeCount][]Rule
	names   map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register adds r. Registering a rule without a shape or callback, or
// twice under one name, is a programming error.
func (r *Registry) Register(rule Rule) {
	if rule.Shape == ShapeNone || rule.Shape >= shapeCount || rule.Check == nil {
		panic(fmt.Sprintf("check: malformed rule %q", rule.Name))
	}
	if r.names[rule.Name] {
		panic(fmt.Sprintf("check: rule %q registered twice", rule.Name))
	}
	r.names[rule.Name] = true
	r.byShape[rule.Shape] = append(r.byShape[rule.Shape], rule)
}

// Rules returns the rules registered for s.
func (r *Registry) Rules(s Shape) []Rule {
	if s >= shapeCount {
		return nil
	}
	return r.byShape[s]
}

// Len counts every registered rule.
func (r *Registry) Len() int {
	return len(r.names)
}

// DefaultRegistry returns the built-in rules in their documented priority.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Rule{Name: "spread-of-nullable", Shape: ShapeCall, Check: checkSpreadOfNullable})
	r.Register(Rule{Name: "missing-supertype-eager", Shape: ShapeClass, Check: checkMissingOnClass})
	r.Register(Rule{Name: "missing-supertype-type-ref", Shape: ShapeTypeRef, Check: checkMissingOnTypeRef})
	r.Register(Rule{Name: "missing-supertype-call", Shape: ShapeCall, Check: checkMissingOnCall})
	r.Register(Rule{Name: "argument-types", Shape: ShapeCall, Check: checkArgumentTypes})
	r.Register(Rule{Name: "return-types", Shape: ShapeReturn, Check: checkReturnType})
	r.Register(Rule{Name: "constructor-shape", Shape: ShapeConstructor, Check: checkConstructorShape})
	r.Register(Rule{Name: "deprecated-call", Shape: ShapeCall, Check: checkDeprecatedCall})
	return r
}
