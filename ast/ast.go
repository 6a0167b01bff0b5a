// Package ast defines the resolved statement tree the compiler consumes.
//
// The SQL grammar itself lives in an external parser; statements arrive here
// already parsed, as a closed set of node variants. Every analysis pass is a
// single exhaustive switch over these variants, so adding a construct means
// the compiler stops building until every pass handles it.
package ast

import "github.com/shopspring/decimal"

// Statement is a sealed statement variant: SelectStatement or ValuesStatement.
type Statement interface {
	stmt()
}

// Expr is a sealed expression variant.
type Expr interface {
	expr()
}

// SelectStatement is a SELECT query.
type SelectStatement struct {
	Items   []SelectItem
	From    *TableRef
	Where   Expr
	GroupBy []Expr
	OrderBy []OrderItem
	Limit   Expr
	Offset  Expr
}

func (*SelectStatement) stmt() {}

// ValuesStatement is a bare VALUES (...), (...) statement. All rows must
// have the same width.
type ValuesStatement struct {
	Rows [][]Expr
}

func (*ValuesStatement) stmt() {}

// SelectItem is one entry of a projection list: either a star or an
// expression with an optional alias.
type SelectItem struct {
	Star  bool
	Expr  Expr
	Alias string
}

// TableRef names the table a statement reads from.
type TableRef struct {
	Table string
	Alias string
}

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	Expr Expr
	Desc bool
}

// ColumnRef references a declared column, optionally table-qualified.
type ColumnRef struct {
	Table string
	Name  string
}

func (*ColumnRef) expr() {}

// NumericLiteral is an integer or real literal. Value keeps the exact
// lexical magnitude; Integer distinguishes 1 from 1.0.
type NumericLiteral struct {
	Value   decimal.Decimal
	Integer bool
}

func (*NumericLiteral) expr() {}

// StringLiteral is a quoted text literal.
type StringLiteral struct {
	Value string
}

func (*StringLiteral) expr() {}

// BlobLiteral is a hex blob literal (X'...').
type BlobLiteral struct {
	Hex string
}

func (*BlobLiteral) expr() {}

// NullLiteral is the NULL keyword.
type NullLiteral struct{}

func (*NullLiteral) expr() {}

// BindRef is a bind-parameter site. Name is empty for an anonymous `?`.
type BindRef struct {
	Name string
}

func (*BindRef) expr() {}

// Binary is a binary operation: comparison, logical connective, arithmetic,
// or concatenation.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

func (*Binary) expr() {}

// Unary is NOT or numeric negation.
type Unary struct {
	Op      string
	Operand Expr
}

func (*Unary) expr() {}

// In is an IN / NOT IN predicate. Exactly one of Bind, List, or Select is
// set: a caller-supplied collection, a literal value list, or a subquery.
type In struct {
	Not     bool
	Operand Expr
	Bind    *BindRef
	List    []Expr
	Select  *SelectStatement
}

func (*In) expr() {}

// FunctionCall is a function or aggregate invocation. Star marks count(*).
type FunctionCall struct {
	Name string
	Star bool
	Args []Expr
}

func (*FunctionCall) expr() {}

// Subselect is a parenthesized scalar subquery used in expression position.
type Subselect struct {
	Select *SelectStatement
}

func (*Subselect) expr() {}
