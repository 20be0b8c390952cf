// Package ir is the typed semantic graph that the checker inspects and the
// lowering passes rewrite.
//
// Declarations own their children. Every node also keeps a non-owning
// back-reference to its parent which Link (re)establishes after a tree is
// built or rewritten. Statements and expressions use the Kind + Data
// payload layout.
package ir
