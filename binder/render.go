package binder

import (
	"fmt"
	"strings"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/ast"
	"github.com/typedsql/typedsql/typeinference"
)

// comparisonOps are the binary operators whose bind sites adopt the type of
// the opposite operand.
var comparisonOps = map[string]bool{
	"=": true, "==": true, "!=": true, "<>": true,
	"<": true, "<=": true, ">": true, ">=": true,
	"LIKE": true, "GLOB": true, "IS": true, "IS NOT": true,
	"+": true, "-": true, "*": true, "/": true, "%": true, "||": true,
}

func (w *walker) selectStatement(s *ast.SelectStatement) error {
	prev := w.ctx
	w.ctx = w.ctx.WithFrom(s.From)

	defer func() { w.ctx = prev }()

	w.write("SELECT ")

	for i, item := range s.Items {
		if i > 0 {
			w.write(", ")
		}

		if item.Star {
			w.write("*")
			continue
		}

		if err := w.expr(item.Expr, typedsql.ResolvedType{}, ""); err != nil {
			return err
		}

		if item.Alias != "" {
			w.write(" AS " + item.Alias)
		}
	}

	if s.From != nil {
		w.write(" FROM " + s.From.Table)

		if s.From.Alias != "" {
			w.write(" AS " + s.From.Alias)
		}
	}

	if s.Where != nil {
		w.write(" WHERE ")

		if err := w.expr(s.Where, typedsql.ResolvedType{}, ""); err != nil {
			return err
		}
	}

	if len(s.GroupBy) > 0 {
		w.write(" GROUP BY ")

		for i, g := range s.GroupBy {
			if i > 0 {
				w.write(", ")
			}

			if err := w.expr(g, typedsql.ResolvedType{}, ""); err != nil {
				return err
			}
		}
	}

	if len(s.OrderBy) > 0 {
		w.write(" ORDER BY ")

		for i, o := range s.OrderBy {
			if i > 0 {
				w.write(", ")
			}

			if err := w.expr(o.Expr, typedsql.ResolvedType{}, ""); err != nil {
				return err
			}

			if o.Desc {
				w.write(" DESC")
			}
		}
	}

	// LIMIT and OFFSET sites are always integer counts.
	if s.Limit != nil {
		w.write(" LIMIT ")

		if err := w.expr(s.Limit, typedsql.ResolvedType{Kind: typedsql.TypeInteger}, "limit"); err != nil {
			return err
		}
	}

	if s.Offset != nil {
		w.write(" OFFSET ")

		if err := w.expr(s.Offset, typedsql.ResolvedType{Kind: typedsql.TypeInteger}, "offset"); err != nil {
			return err
		}
	}

	return nil
}

func (w *walker) valuesStatement(s *ast.ValuesStatement) error {
	w.write("VALUES ")

	for i, row := range s.Rows {
		if i > 0 {
			w.write(", ")
		}

		w.write("(")

		for j, cell := range row {
			if j > 0 {
				w.write(", ")
			}

			if err := w.expr(cell, typedsql.ResolvedType{}, ""); err != nil {
				return err
			}
		}

		w.write(")")
	}

	return nil
}

// expr renders one expression, recording bind sites as it goes. expected is
// the context-derived type a bind at this position takes; hint names an
// anonymous bind at this position.
func (w *walker) expr(e ast.Expr, expected typedsql.ResolvedType, hint string) error {
	switch e := e.(type) {
	case *ast.ColumnRef:
		if e.Table != "" {
			w.write(e.Table + "." + e.Name)
		} else {
			w.write(e.Name)
		}

		return nil

	case *ast.NumericLiteral:
		w.write(e.Value.String())
		return nil

	case *ast.StringLiteral:
		w.write("'" + strings.ReplaceAll(e.Value, "'", "''") + "'")
		return nil

	case *ast.BlobLiteral:
		w.write("X'" + e.Hex + "'")
		return nil

	case *ast.NullLiteral:
		w.write("NULL")
		return nil

	case *ast.BindRef:
		if expected.Kind == "" {
			// No constraining context.
			expected = typedsql.ResolvedType{Kind: typedsql.TypeText, Nullable: true}
		}

		return w.site(e, false, expected, hint)

	case *ast.Binary:
		return w.binary(e)

	case *ast.Unary:
		if e.Op == "NOT" {
			w.write("NOT ")
		} else {
			w.write(e.Op)
		}

		return w.operand(e.Operand, expected, hint)

	case *ast.In:
		return w.in(e)

	case *ast.FunctionCall:
		w.write(e.Name + "(")

		if e.Star {
			w.write("*")
		}

		for i, arg := range e.Args {
			if i > 0 {
				w.write(", ")
			}

			if err := w.expr(arg, typedsql.ResolvedType{}, ""); err != nil {
				return err
			}
		}

		w.write(")")

		return nil

	case *ast.Subselect:
		w.write("(")

		if err := w.selectStatement(e.Select); err != nil {
			return err
		}

		w.write(")")

		return nil

	default:
		return fmt.Errorf("%w: %T", typedsql.ErrUnsupportedExpression, e)
	}
}

func (w *walker) binary(e *ast.Binary) error {
	leftExpected, leftHint := typedsql.ResolvedType{}, ""
	rightExpected, rightHint := typedsql.ResolvedType{}, ""

	if comparisonOps[e.Op] {
		var err error

		if rightExpected, rightHint, err = w.contextOf(e.Left); err != nil {
			return err
		}

		if leftExpected, leftHint, err = w.contextOf(e.Right); err != nil {
			return err
		}
	}

	if err := w.operand(e.Left, leftExpected, leftHint); err != nil {
		return err
	}

	w.write(" " + e.Op + " ")

	return w.operand(e.Right, rightExpected, rightHint)
}

func (w *walker) in(e *ast.In) error {
	operandType, operandHint, err := w.contextOf(e.Operand)
	if err != nil {
		return err
	}

	if err := w.operand(e.Operand, typedsql.ResolvedType{}, ""); err != nil {
		return err
	}

	if e.Not {
		w.write(" NOT IN ")
	} else {
		w.write(" IN ")
	}

	switch {
	case e.Bind != nil:
		// The site's hole covers the whole parenthesized group; its
		// placeholder run is computed from the runtime collection size.
		return w.site(e.Bind, true, elementType(operandType), operandHint)

	case e.Select != nil:
		w.write("(")

		if err := w.selectStatement(e.Select); err != nil {
			return err
		}

		w.write(")")

		return nil

	default:
		w.write("(")

		for i, item := range e.List {
			if i > 0 {
				w.write(", ")
			}

			if err := w.expr(item, elementType(operandType), operandHint); err != nil {
				return err
			}
		}

		w.write(")")

		return nil
	}
}

// operand renders a nested expression, parenthesizing compound forms so the
// re-emitted text keeps the tree's grouping.
func (w *walker) operand(e ast.Expr, expected typedsql.ResolvedType, hint string) error {
	switch e.(type) {
	case *ast.Binary, *ast.In, *ast.Unary:
		w.write("(")

		if err := w.expr(e, expected, hint); err != nil {
			return err
		}

		w.write(")")

		return nil
	default:
		return w.expr(e, expected, hint)
	}
}

// contextOf resolves the type an expression contributes as bind context.
// A bind site never provides context for its counterpart.
func (w *walker) contextOf(e ast.Expr) (typedsql.ResolvedType, string, error) {
	if e == nil {
		return typedsql.ResolvedType{}, "", nil
	}

	if _, isBind := e.(*ast.BindRef); isBind {
		return typedsql.ResolvedType{}, "", nil
	}

	t, err := typeinference.Resolve(e, w.ctx)
	if err != nil {
		return typedsql.ResolvedType{}, "", err
	}

	hint := ""
	if col, ok := e.(*ast.ColumnRef); ok {
		hint = col.Name
	}

	return t, hint, nil
}

// elementType is the per-element type of a collection compared with IN.
func elementType(operand typedsql.ResolvedType) typedsql.ResolvedType {
	if operand.Kind == "" {
		return typedsql.ResolvedType{Kind: typedsql.TypeText, Nullable: true}
	}

	return operand
}
