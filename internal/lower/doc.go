// Package lower rewrites a checked IR module into the simpler form the code
// generators expect.
//
// The main work is secondary constructor lowering. Every secondary
// constructor of an ordinary class is replaced by two functions:
//
//	Foo_init_$Init$(..., $this)   runs the constructor body on $this
//	Foo_init_$Create$(...)        allocates a Foo and passes it to $Init$
//
// A second pass redirects call sites: `Foo(...)` becomes a $Create$ call
// and a delegating `this(...)` becomes an $Init$ call that forwards the
// instance under construction. Value classes and the ES6 object model keep
// their constructors.
//
// Passes run through a Pipeline. Broken invariants panic with an
// *InternalError which Pipeline.Run turns into an error for the unit.
package lower
