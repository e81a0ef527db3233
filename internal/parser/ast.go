// Package parser builds an AST for the surface language of spec.md §4.H
// via recursive descent with precedence climbing, producing the visitor-
// shaped node set internal/compiler walks to emit bytecode.
package parser

// Expr is any expression node.
type Expr interface {
	Accept(v ExprVisitor) interface{}
}

// NumberLit carries the raw lexeme so the compiler (not the parser) owns
// the lexer.ParseNumber conversion into an exact rational constant.
type NumberLit struct {
	Lexeme string
}

func (n *NumberLit) Accept(v ExprVisitor) interface{} { return v.VisitNumberLit(n) }

type StringLit struct{ Value string }

func (s *StringLit) Accept(v ExprVisitor) interface{} { return v.VisitStringLit(s) }

type NullLit struct{}

func (n *NullLit) Accept(v ExprVisitor) interface{} { return v.VisitNullLit(n) }

type Ident struct{ Name string }

func (i *Ident) Accept(v ExprVisitor) interface{} { return v.VisitIdent(i) }

// Binary covers every arithmetic/comparison/bitwise binary operator; Op is
// one of the token lexemes (+, -, *, /, //, %, **, ==, !=, <, <=, >, >=,
// &, |, ^, <<, >>).
type Binary struct {
	Left  Expr
	Op    string
	Right Expr
}

func (b *Binary) Accept(v ExprVisitor) interface{} { return v.VisitBinary(b) }

// Logical covers && and ||, kept distinct from Binary because short-
// circuit evaluation needs its own branch-based compilation.
type Logical struct {
	Left  Expr
	Op    string
	Right Expr
}

func (l *Logical) Accept(v ExprVisitor) interface{} { return v.VisitLogical(l) }

// Unary covers unary -, !, ~.
type Unary struct {
	Op      string
	Operand Expr
}

func (u *Unary) Accept(v ExprVisitor) interface{} { return v.VisitUnary(u) }

type Assign struct {
	Name  string
	Value Expr
}

func (a *Assign) Accept(v ExprVisitor) interface{} { return v.VisitAssign(a) }

type Call struct {
	Callee string
	Args   []Expr
}

func (c *Call) Accept(v ExprVisitor) interface{} { return v.VisitCall(c) }

// Index is n-dimensional, matching Matrix's bounds-checked multi-index
// and List/Assoc's single-key indexing (spec.md §4.E item 2).
type Index struct {
	Object  Expr
	Indices []Expr
}

func (i *Index) Accept(v ExprVisitor) interface{} { return v.VisitIndex(i) }

// ListLit is the `{e1, e2, ...}` literal building a List value.
type ListLit struct {
	Elements []Expr
}

func (l *ListLit) Accept(v ExprVisitor) interface{} { return v.VisitListLit(l) }

// FieldGet is `object.field` access on an Object value.
type FieldGet struct {
	Object Expr
	Field  string
}

func (f *FieldGet) Accept(v ExprVisitor) interface{} { return v.VisitFieldGet(f) }

// NewObj is `T{}` construction of a declared obj type (the braces take no
// field values).
type NewObj struct {
	TypeName string
}

func (n *NewObj) Accept(v ExprVisitor) interface{} { return v.VisitNewObj(n) }

type ExprVisitor interface {
	VisitNumberLit(n *NumberLit) interface{}
	VisitStringLit(s *StringLit) interface{}
	VisitNullLit(n *NullLit) interface{}
	VisitIdent(i *Ident) interface{}
	VisitBinary(b *Binary) interface{}
	VisitLogical(l *Logical) interface{}
	VisitUnary(u *Unary) interface{}
	VisitAssign(a *Assign) interface{}
	VisitCall(c *Call) interface{}
	VisitIndex(i *Index) interface{}
	VisitListLit(l *ListLit) interface{}
	VisitFieldGet(f *FieldGet) interface{}
	VisitNewObj(n *NewObj) interface{}
}
