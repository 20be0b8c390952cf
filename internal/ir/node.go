package ir

import (
	"vela/internal/source"
)

// Node is implemented by every IR node.
type Node interface {
	NodeSpan() source.Span
	ParentNode() Node
	setParent(Node)
}

// Decl is a named declaration.
type Decl interface {
	Node
	DeclName() string
	declNode()
}

// Origin records where a declaration came from.
type Origin uint8

const (
	OriginSource Origin = iota
	// OriginSynthesized marks declarations produced by lowering.
	OriginSynthesized
)

func (o Origin) String() string {
	if o == OriginSynthesized {
		return "synthesized"
	}
	return "source"
}

type parentLink struct {
	parent Node
}

func (p *parentLink) ParentNode() Node      { return p.parent }
func (p *parentLink) setParent(parent Node) { p.parent = parent }

// EnclosingClass returns the nearest Class above n.
func EnclosingClass(n Node) *Class {
	for cur := n.ParentNode(); cur != nil; cur = cur.ParentNode() {
		if c, ok := cur.(*Class); ok {
			return c
		}
	}
	return nil
}

// EnclosingCallable returns the nearest Function or Constructor above n.
func EnclosingCallable(n Node) Node {
	for cur := n.ParentNode(); cur != nil; cur = cur.ParentNode() {
		switch cur.(type) {
		case *Function, *Constructor:
			return cur
		}
	}
	return nil
}

// EnclosingFile returns the File containing n.
func EnclosingFile(n Node) *File {
	for cur := Node(n); cur != nil; cur = cur.ParentNode() {
		if f, ok := cur.(*File); ok {
			return f
		}
	}
	return nil
}
