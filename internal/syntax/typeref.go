package syntax

import (
	"fmt"
	"strings"
	"unicode"
)

// TypeRef is a written type: Name, Name?, Name!, Name<Args>.
type TypeRef struct {
	Name     string
	Args     []*TypeRef
	Nullable bool
	// Flexible marks T! types whose nullability is unknown.
	Flexible bool
	Pos      Pos
}

func (t *TypeRef) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *TypeRef) write(sb *strings.Builder) {
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		sb.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			a.write(sb)
		}
		sb.WriteByte('>')
	}
	switch {
	case t.Nullable:
		sb.WriteByte('?')
	case t.Flexible:
		sb.WriteByte('!')
	}
}

// ParseTypeRef parses the textual form of a type reference.
func ParseTypeRef(text string) (*TypeRef, error) {
	p := typeParser{src: text}
	ref, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("type %q: unexpected %q", text, p.src[p.pos:])
	}
	return ref, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) parse() (*TypeRef, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r == '.' || r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) || r >= 0x80 {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return nil, fmt.Errorf("type %q: expected a name at offset %d", p.src, start)
	}
	ref := &TypeRef{Name: p.src[start:p.pos]}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '<' {
		p.pos++
		for {
			arg, err := p.parse()
			if err != nil {
				return nil, err
			}
			ref.Args = append(ref.Args, arg)
			p.skipSpace()
			if p.pos >= len(p.src) {
				return nil, fmt.Errorf("type %q: unclosed '<'", p.src)
			}
			if p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.src[p.pos] == '>' {
				p.pos++
				break
			}
			return nil, fmt.Errorf("type %q: unexpected %q", p.src, p.src[p.pos])
		}
	}
	if p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '?':
			ref.Nullable = true
			p.pos++
		case '!':
			ref.Flexible = true
			p.pos++
		}
	}
	return ref, nil
}
