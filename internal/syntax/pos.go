package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos is a 1-based line:column position in the source file. The zero Pos
// means "unknown".
type Pos struct {
	Line uint32
	Col  uint32
}

// IsZero reports whether the position is unknown.
func (p Pos) IsZero() bool { return p.Line == 0 }

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// ParsePos parses "line:col" or "line".
func ParsePos(s string) (Pos, error) {
	s = strings.TrimSpace(s)
	lineStr, colStr, hasCol := strings.Cut(s, ":")
	line, err := strconv.ParseUint(lineStr, 10, 32)
	if err != nil || line == 0 {
		return Pos{}, fmt.Errorf("bad position %q: want line:col", s)
	}
	col := uint64(1)
	if hasCol {
		col, err = strconv.ParseUint(colStr, 10, 32)
		if err != nil || col == 0 {
			return Pos{}, fmt.Errorf("bad position %q: want line:col", s)
		}
	}
	return Pos{Line: uint32(line), Col: uint32(col)}, nil
}
