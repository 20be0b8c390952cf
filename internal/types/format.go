package types

import "strings"

// Format renders a type the way diagnostics print it.
func (in *Interner) Format(id TypeID) string {
	var sb strings.Builder
	in.format(&sb, id)
	return sb.String()
}

func (in *Interner) format(sb *strings.Builder, id TypeID) {
	tt, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("<no type>")
		return
	}
	switch tt.Kind {
	case KindClass:
		sb.WriteString(in.classes[tt.Payload].FQName)
	case KindTypeParam:
		sb.WriteString(in.typeParams[tt.Payload].Name)
	case KindArray:
		sb.WriteString("Array<")
		in.format(sb, tt.Elem)
		sb.WriteByte('>')
	default:
		sb.WriteString(tt.Kind.String())
	}
	switch tt.Nullability {
	case Nullable:
		sb.WriteByte('?')
	case Flexible:
		sb.WriteByte('!')
	}
}
