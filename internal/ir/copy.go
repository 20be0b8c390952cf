package ir

import (
	"vela/internal/symbols"
)

// Remap substitutes symbols and block scopes while copying. Entries missing
// from the maps are kept as they are.
type Remap struct {
	Symbols map[symbols.SymbolID]symbols.SymbolID
	Scopes  map[symbols.ScopeID]symbols.ScopeID
}

// NewRemap builds an empty remap.
func NewRemap() *Remap {
	return &Remap{
		Symbols: make(map[symbols.SymbolID]symbols.SymbolID),
		Scopes:  make(map[symbols.ScopeID]symbols.ScopeID),
	}
}

// MapScope records old -> repl for block scopes.
func (r *Remap) MapScope(old, repl symbols.ScopeID) {
	r.Scopes[old] = repl
}

// Scope returns the substitute for id.
func (r *Remap) Scope(id symbols.ScopeID) symbols.ScopeID {
	if r == nil {
		return id
	}
	if repl, ok := r.Scopes[id]; ok {
		return repl
	}
	return id
}

// Map records old -> repl.
func (r *Remap) Map(old, repl symbols.SymbolID) {
	r.Symbols[old] = repl
}

// Symbol returns the substitute for id.
func (r *Remap) Symbol(id symbols.SymbolID) symbols.SymbolID {
	if r == nil {
		return id
	}
	if repl, ok := r.Symbols[id]; ok {
		return repl
	}
	return id
}

// CopyBlock deep-copies b applying r. The copy is unlinked; call Link on
// its new owner.
func CopyBlock(b *Block, r *Remap) *Block {
	if b == nil {
		return nil
	}
	out := &Block{Span: b.Span, Scope: r.Scope(b.Scope), Stmts: make([]*Stmt, 0, len(b.Stmts))}
	for _, s := range b.Stmts {
		out.Stmts = append(out.Stmts, CopyStmt(s, r))
	}
	return out
}

// CopyStmt deep-copies s applying r.
func CopyStmt(s *Stmt, r *Remap) *Stmt {
	if s == nil {
		return nil
	}
	out := &Stmt{Kind: s.Kind, Span: s.Span}
	switch data := s.Data.(type) {
	case *VarData:
		out.Data = &VarData{
			Name:    data.Name,
			Symbol:  r.Symbol(data.Symbol),
			Type:    data.Type,
			TypeRef: CopyTypeRef(data.TypeRef),
			Value:   CopyExpr(data.Value, r),
			Mutable: data.Mutable,
		}
	case *ExprStmtData:
		out.Data = &ExprStmtData{Expr: CopyExpr(data.Expr, r)}
	case *AssignData:
		out.Data = &AssignData{Target: CopyExpr(data.Target, r), Value: CopyExpr(data.Value, r)}
	case *ReturnData:
		out.Data = &ReturnData{Value: CopyExpr(data.Value, r), Target: r.Symbol(data.Target)}
	case *IfData:
		out.Data = &IfData{Cond: CopyExpr(data.Cond, r), Then: CopyBlock(data.Then, r), Else: CopyBlock(data.Else, r)}
	case *ThrowData:
		out.Data = &ThrowData{Value: CopyExpr(data.Value, r)}
	case *BlockData:
		out.Data = &BlockData{Block: CopyBlock(data.Block, r)}
	}
	return out
}

// CopyExpr deep-copies e applying r.
func CopyExpr(e *Expr, r *Remap) *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Type: e.Type, Span: e.Span}
	switch data := e.Data.(type) {
	case *LiteralData:
		cp := *data
		out.Data = &cp
	case *GetValueData:
		out.Data = &GetValueData{Name: data.Name, Symbol: r.Symbol(data.Symbol)}
	case *GetFieldData:
		out.Data = &GetFieldData{Receiver: CopyExpr(data.Receiver, r), Name: data.Name, Field: r.Symbol(data.Field)}
	case *CallData:
		out.Data = &CallData{
			Name:     data.Name,
			Callee:   r.Symbol(data.Callee),
			Receiver: CopyExpr(data.Receiver, r),
			Args:     copyExprs(data.Args, r),
			TypeArgs: copyTypeRefs(data.TypeArgs),
		}
	case *NewData:
		out.Data = &NewData{Class: data.Class, Ctor: r.Symbol(data.Ctor), Args: copyExprs(data.Args, r), TypeArgs: copyTypeRefs(data.TypeArgs)}
	case *DelegatingCallData:
		out.Data = &DelegatingCallData{Ctor: r.Symbol(data.Ctor), Super: data.Super, Args: copyExprs(data.Args, r)}
	case *VarargData:
		out.Data = &VarargData{Elems: copyExprs(data.Elems, r)}
	case *SpreadData:
		out.Data = &SpreadData{Value: CopyExpr(data.Value, r), Fake: data.Fake}
	case *BinaryData:
		out.Data = &BinaryData{Op: data.Op, Left: CopyExpr(data.Left, r), Right: CopyExpr(data.Right, r)}
	case *CreateObjectData:
		cp := *data
		out.Data = &cp
	case *CaptureStackData:
		out.Data = &CaptureStackData{Instance: CopyExpr(data.Instance, r), Function: r.Symbol(data.Function)}
	}
	return out
}

// CopyTypeRef deep-copies a type reference.
func CopyTypeRef(t *TypeRef) *TypeRef {
	if t == nil {
		return nil
	}
	return &TypeRef{Name: t.Name, Type: t.Type, Role: t.Role, Class: t.Class, Args: copyTypeRefs(t.Args), Span: t.Span}
}

func copyExprs(in []*Expr, r *Remap) []*Expr {
	if in == nil {
		return nil
	}
	out := make([]*Expr, len(in))
	for i, e := range in {
		out[i] = CopyExpr(e, r)
	}
	return out
}

func copyTypeRefs(in []*TypeRef) []*TypeRef {
	if in == nil {
		return nil
	}
	out := make([]*TypeRef, len(in))
	for i, t := range in {
		out[i] = CopyTypeRef(t)
	}
	return out
}
