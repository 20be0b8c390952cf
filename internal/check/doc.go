// Package check runs diagnostic rules over a built IR module.
//
// Rules are registered per node shape. Run walks every file in
// declaration order and hands each node to the rules registered for its
// shape, in registration order. Rules read the IR and report through the
// Context; they never modify the module, so running twice reports the same
// diagnostics twice and nothing else.
package check
