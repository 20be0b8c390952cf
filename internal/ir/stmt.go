package ir

import (
	"vela/internal/source"
	"vela/internal/symbols"
	"vela/internal/types"
)

// StmtKind enumerates IR statement kinds.
type StmtKind uint8

const (
	StmtVar StmtKind = iota
	StmtExpr
	StmtAssign
	// StmtReturn returns from the callable named by Target.
	StmtReturn
	StmtIf
	StmtThrow
	StmtBlock
)

// String returns a human-readable name for the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtVar:
		return "Var"
	case StmtExpr:
		return "Expr"
	case StmtAssign:
		return "Assign"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtThrow:
		return "Throw"
	case StmtBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

// Stmt represents an IR statement.
type Stmt struct {
	parentLink
	Kind StmtKind
	Span source.Span
	Data StmtData
}

func (s *Stmt) NodeSpan() source.Span { return s.Span }

// StmtData is the interface for statement-specific data.
type StmtData interface {
	stmtData()
}

// VarData holds data for StmtVar.
type VarData struct {
	Name    string
	Symbol  symbols.SymbolID
	Type    types.TypeID
	TypeRef *TypeRef
	Value   *Expr
	Mutable bool
}

func (VarData) stmtData() {}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

func (ExprStmtData) stmtData() {}

// AssignData holds data for StmtAssign.
type AssignData struct {
	Target *Expr
	Value  *Expr
}

func (AssignData) stmtData() {}

// ReturnData holds data for StmtReturn.
type ReturnData struct {
	Value  *Expr // nil for bare return
	Target symbols.SymbolID
}

func (ReturnData) stmtData() {}

// IfData holds data for StmtIf.
type IfData struct {
	Cond *Expr
	Then *Block
	Else *Block
}

func (IfData) stmtData() {}

// ThrowData holds data for StmtThrow.
type ThrowData struct {
	Value *Expr
}

func (ThrowData) stmtData() {}

// BlockData holds data for StmtBlock.
type BlockData struct {
	Block *Block
}

func (BlockData) stmtData() {}

// Block is a sequence of statements with its own scope.
type Block struct {
	parentLink
	Stmts []*Stmt
	Span  source.Span
	Scope symbols.ScopeID
}

func (b *Block) NodeSpan() source.Span { return b.Span }

// IsEmpty returns true if the block has no statements.
func (b *Block) IsEmpty() bool {
	return b == nil || len(b.Stmts) == 0
}
