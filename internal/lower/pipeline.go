package lower

import (
	"context"
	"errors"
	"fmt"

	"vela/internal/ir"
	"vela/internal/session"
	"vela/internal/trace"
)

// Pass is one named step of a Pipeline.
type Pass struct {
	Name string
	Run  func(ctx context.Context, m *ir.Module) error
}

// DeclarationTransformer replaces declarations one at a time. A nil
// result keeps d; otherwise d is replaced by the returned list.
type DeclarationTransformer interface {
	TransformFlat(d ir.Decl) []ir.Decl
}

// BodyLowering rewrites one body. container is the declaration owning
// body: a function, a constructor, a property or a parameter.
type BodyLowering interface {
	LowerBody(body ir.Node, container ir.Decl)
}

// Pipeline runs passes in order.
type Pipeline struct {
	passes []Pass
}

// NewPipeline builds a pipeline from passes.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Add appends a pass.
func (p *Pipeline) Add(pass Pass) *Pipeline {
	p.passes = append(p.passes, pass)
	return p
}

// Names lists the passes in run order.
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.passes))
	for i, pass := range p.passes {
		out[i] = pass.Name
	}
	return out
}

// Run applies every pass to m. An *InternalError raised by a pass stops
// the pipeline and is returned; m must then be discarded.
func (p *Pipeline) Run(ctx context.Context, m *ir.Module) (err error) {
	ctx, span := trace.Start(ctx, trace.ScopePass, "lower")
	defer span.End(m.Name)
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*InternalError)
			if !ok {
				panic(r)
			}
			err = ie
		}
	}()
	for _, pass := range p.passes {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, ps := trace.Start(ctx, trace.ScopePass, pass.Name)
		err := pass.Run(ctx, m)
		ps.End("")
		if err != nil {
			var ie *InternalError
			if errors.As(err, &ie) {
				return err
			}
			return fmt.Errorf("lower pass %s: %w", pass.Name, err)
		}
	}
	return nil
}

// TransformFlat runs t over every declaration, nested class members
// included, and relinks the result.
func TransformFlat(name string, t DeclarationTransformer) Pass {
	return Pass{Name: name, Run: func(_ context.Context, m *ir.Module) error {
		for _, f := range m.Files {
			f.Decls = transformDecls(f.Decls, t)
			ir.Link(f)
		}
		return nil
	}}
}

func transformDecls(decls []ir.Decl, t DeclarationTransformer) []ir.Decl {
	out := make([]ir.Decl, 0, len(decls))
	for _, d := range decls {
		if cls, ok := d.(*ir.Class); ok {
			cls.Members = transformDecls(cls.Members, t)
		}
		if repl := t.TransformFlat(d); repl != nil {
			out = append(out, repl...)
			continue
		}
		out = append(out, d)
	}
	return out
}

// BodyPass hands every body of m to b, in declaration order.
func BodyPass(name string, b BodyLowering) Pass {
	return Pass{Name: name, Run: func(_ context.Context, m *ir.Module) error {
		for _, f := range m.Files {
			for _, d := range f.Decls {
				lowerBodies(d, b)
			}
		}
		return nil
	}}
}

func lowerBodies(d ir.Decl, b BodyLowering) {
	params := func(ps []*ir.ValueParam) {
		for _, p := range ps {
			if p.Default != nil {
				b.LowerBody(p.Default, p)
			}
		}
	}
	switch d := d.(type) {
	case *ir.Class:
		for _, m := range d.Members {
			lowerBodies(m, b)
		}
	case *ir.Function:
		params(d.Params)
		if d.Body != nil {
			b.LowerBody(d.Body, d)
		}
	case *ir.Constructor:
		params(d.Params)
		if d.Delegation != nil {
			b.LowerBody(d.Delegation, d)
		}
		if d.Body != nil {
			b.LowerBody(d.Body, d)
		}
	case *ir.Property:
		if d.Init != nil {
			b.LowerBody(d.Init, d)
		}
	}
}

// DefaultPipeline lowers secondary constructors and validates the result.
func DefaultPipeline(l *Lowerer) *Pipeline {
	return NewPipeline(
		TransformFlat("secondary-constructors", SecondaryConstructors{l: l}),
		BodyPass("secondary-call-sites", CallSiteRedirection{l: l}),
		Pass{Name: "validate", Run: func(_ context.Context, m *ir.Module) error {
			return l.Validate(m)
		}},
	)
}

// Lower runs the default pipeline over m.
func Lower(ctx context.Context, sess *session.Session, m *ir.Module) error {
	return DefaultPipeline(NewLowerer(sess, m)).Run(ctx, m)
}
