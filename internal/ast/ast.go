// Package ast defines the typed AST node model that semantic analysis, TAC
// lowering and printing walk over.
//
// Per the redesign notes carried into SPEC_FULL.md, nodes are concrete Go
// structs grouped by syntactic category (no virtual-dispatch Accept/Visitor
// hierarchy); later stages use type switches ("pattern matching") instead.
// Every node embeds Header for source coordinates; every expression also
// embeds ExprMeta, which analysis fills in.
package ast

import (
	"dcc/internal/symtab"
	"dcc/internal/types"
)

// Header carries source coordinates shared by every node.
type Header struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (h Header) Pos() Header { return h }

func (m *ExprMeta) GetType() types.Type       { return m.Type }
func (m *ExprMeta) SetType(t types.Type)      { m.Type = t }
func (m *ExprMeta) GetIsArray() bool          { return m.IsArray }
func (m *ExprMeta) SetIsArray(b bool)         { m.IsArray = b }
func (m *ExprMeta) GetUsedAsWrite() bool      { return m.UsedAsWrite }
func (m *ExprMeta) SetUsedAsWrite(b bool)     { m.UsedAsWrite = b }
func (m *ExprMeta) GetResultID() string       { return m.ResultID }
func (m *ExprMeta) SetResultID(id string)     { m.ResultID = id }

// Node is implemented by every AST node.
type Node interface {
	Pos() Header
}

// ExprMeta is embedded by every expression variant. Type propagation fills
// Type; analysis allocates ResultID for expressions that produce a value
// consumed by a parent. IsArray is set by type propagation on a Location;
// UsedAsWrite is set by analysis on the left-hand side of an assignment.
type ExprMeta struct {
	Header
	Type        types.Type
	IsArray     bool
	UsedAsWrite bool
	ResultID    string
}

// Expr is implemented by every expression node. The metadata accessors are
// promoted from the embedded ExprMeta on every concrete type; they exist so
// callers that only need to read or stamp common fields (type, array-ness,
// write-context, result id) don't need a type switch of their own — the
// type switches mandated for per-kind dispatch live in semantic/tac/print.
type Expr interface {
	Node
	exprNode()
	GetType() types.Type
	SetType(types.Type)
	GetIsArray() bool
	SetIsArray(bool)
	GetUsedAsWrite() bool
	SetUsedAsWrite(bool)
	GetResultID() string
	SetResultID(string)
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is implemented by every declaration node (fields, variables,
// methods, classes, interfaces, the program root).
type Decl interface {
	Node
	declNode()
}

// ---- Expressions ----------------------------------------------------------

type IntLit struct {
	ExprMeta
	Value int64
}

type DoubleLit struct {
	ExprMeta
	Value float64
}

type BoolLit struct {
	ExprMeta
	Value bool
}

type CharLit struct {
	ExprMeta
	Value rune
}

type StringLit struct {
	ExprMeta
	Value string
}

// Identifier is a bare name reference used where no indexing is possible
// (e.g. the callee name of an internal method call).
type Identifier struct {
	ExprMeta
	Name string
}

// Location is an lvalue/rvalue: a bare variable or an array element when
// Index is non-nil.
type Location struct {
	ExprMeta
	Name  string
	Index Expr // nil for a scalar location
}

type BinaryExpr struct {
	ExprMeta
	LHS, RHS Expr
	Op       types.BinaryOp
}

// BooleanExpr covers relational and logical operators. LHS is nil only when
// Op == types.Not.
type BooleanExpr struct {
	ExprMeta
	LHS, RHS Expr
	Op       types.BoolOp
}

type AssignExpr struct {
	ExprMeta
	LHS *Location
	Op  types.AssignOp
	RHS Expr
}

// MethodCall models both in-program and external (string-named) callees.
type MethodCall struct {
	ExprMeta
	Callee   string
	Args     []Expr
	External bool
}

func (*IntLit) exprNode()      {}
func (*DoubleLit) exprNode()   {}
func (*BoolLit) exprNode()     {}
func (*CharLit) exprNode()     {}
func (*StringLit) exprNode()   {}
func (*Identifier) exprNode()  {}
func (*Location) exprNode()    {}
func (*BinaryExpr) exprNode()  {}
func (*BooleanExpr) exprNode() {}
func (*AssignExpr) exprNode()  {}
func (*MethodCall) exprNode()  {}

// ---- Statements -------------------------------------------------------------

type If struct {
	Header
	Cond       Expr
	Then       *Block
	Else       *Block // nil when there is no else clause
}

// For models `for (loopVar = init; loopVar < end; ...)`: the loop variable
// is implicitly Integer-typed and scoped to the loop per spec.md §4.2.
type For struct {
	Header
	LoopVar string
	Init    Expr
	End     Expr
	Body    *Block

	// EndLabel/ContinueLabel are resolved during analysis and cloned into
	// any Break/Continue within Body; avoids a back-pointer to this node.
	EndLabel      string
	ContinueLabel string
}

type While struct {
	Header
	Cond Expr
	Body *Block

	EndLabel      string
	ContinueLabel string
}

type DoWhile struct {
	Header
	Body *Block
	Cond Expr

	EndLabel      string
	ContinueLabel string
}

// Break/Continue carry the resolved target label, cloned in by analysis
// from the enclosing loop's labels rather than a back-pointer to that loop
// node — see the package doc comment on the redesign this mirrors.
type Break struct {
	Header
	Label string
}

type Continue struct {
	Header
	Label string
}

type Return struct {
	Header
	Value Expr // nil for a bare `return;`
}

type Goto struct {
	Header
	Label string
}

type LabelStmt struct {
	Header
	Name string
}

type ExprStmt struct {
	Header
	X Expr
}

// Block is both the statement-list container and the scope owner for
// locals declared at this nesting level.
type Block struct {
	Header
	Decls []*VariableDecl
	Stmts []Stmt
	Scope *symtab.Table
}

func (*If) stmtNode()        {}
func (*For) stmtNode()       {}
func (*While) stmtNode()     {}
func (*DoWhile) stmtNode()   {}
func (*Break) stmtNode()     {}
func (*Continue) stmtNode()  {}
func (*Return) stmtNode()    {}
func (*Goto) stmtNode()      {}
func (*LabelStmt) stmtNode() {}
func (*ExprStmt) stmtNode()  {}
func (*Block) stmtNode()     {}

// ---- Declarations -----------------------------------------------------------

// FieldDecl is a class/interface/global field: a location, possibly an
// array whose size is a compile-time-known positive literal.
type FieldDecl struct {
	Header
	Name      string
	Type      types.Type
	ArraySize int64 // 0 for a scalar field
	Addr      int64 // byte offset assigned by the address allocator
}

// VariableDecl declares one or more locals sharing a type.
type VariableDecl struct {
	Header
	Names []string
	Type  types.Type
	Addrs map[string]int64
}

type MethodDecl struct {
	Header
	Name       string
	ReturnType types.Type
	Args       []*VariableDecl
	Body       *Block
	Scope      *symtab.Table
	FrameSize  int64
}

type Class struct {
	Header
	Name       string
	Extends    string
	Implements []string
	Fields     []*FieldDecl
	Methods    []*MethodDecl
	Scope      *symtab.Table
}

type Interface struct {
	Header
	Name    string
	Methods []*MethodDecl
	Scope   *symtab.Table
}

type Program struct {
	Header
	Fields     []*FieldDecl
	Methods    []*MethodDecl
	Classes    []*Class
	Interfaces []*Interface
	Scope      *symtab.Table
}

func (*FieldDecl) declNode()    {}
func (*VariableDecl) declNode() {}
func (*MethodDecl) declNode()   {}
func (*Class) declNode()        {}
func (*Interface) declNode()    {}
func (*Program) declNode()      {}

