package symbols

import (
	"fmt"

	"vela/internal/session"
)

// Ref is a symbol handle that remembers the session generation it was
// created under. It must be dereferenced through Deref.
type Ref struct {
	ID    SymbolID
	Token session.Token
}

// Ref creates a handle for id bound to the table's session generation.
func (t *Table) Ref(id SymbolID) Ref {
	return Ref{ID: id, Token: t.token}
}

// Deref resolves ref after checking that it is still valid for sess.
// Stale handles fail with session.ErrStaleReference.
func (t *Table) Deref(ref Ref, sess *session.Session) (*Symbol, error) {
	if err := sess.Check(ref.Token); err != nil {
		return nil, err
	}
	if ref.Token != t.token {
		return nil, fmt.Errorf("%w: reference from another table", session.ErrStaleReference)
	}
	sym := t.Symbols.Get(ref.ID)
	if sym == nil {
		return nil, fmt.Errorf("unknown symbol #%d", ref.ID)
	}
	return sym, nil
}
