// Package syntax is the input contract of the front end: syntax trees
// produced by the parser, with a source position on every node.
//
// Trees arrive as YAML documents, one document per source file:
//
//	file: src/shapes.vela
//	package: demo
//	imports:
//	  - {path: lib.Base, pos: "2:1"}
//	decls:
//	  - class: Point
//	    pos: "4:1"
//	    supers: [Base]
//	    members:
//	      - constructor: primary
//	        params: [{name: x, type: Int}]
//	      - constructor: secondary
//	        params: [{name: a, type: Int}, {name: b, type: String}]
//	        delegate: {this: [{int: 0}]}
//	        body:
//	          - expr: {call: println, args: [{this: true}]}
//
// Expressions, statements and declarations are mappings whose first known
// key selects the node kind.
package syntax
