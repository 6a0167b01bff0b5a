package typeinference

import (
	"fmt"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/ast"
)

// Resolve computes the semantic type of an expression. It is total over the
// expression grammar: every variant either resolves or reports a schema
// resolution error, never an untyped result.
func Resolve(expr ast.Expr, ctx *Context) (typedsql.ResolvedType, error) {
	switch e := expr.(type) {
	case *ast.ColumnRef:
		col, err := ctx.LookupColumn(e)
		if err != nil {
			return typedsql.ResolvedType{}, err
		}

		return col.ResolvedType(), nil

	case *ast.NumericLiteral:
		if e.Integer {
			return typedsql.ResolvedType{Kind: typedsql.TypeInteger}, nil
		}

		return typedsql.ResolvedType{Kind: typedsql.TypeReal}, nil

	case *ast.StringLiteral:
		return typedsql.ResolvedType{Kind: typedsql.TypeText}, nil

	case *ast.BlobLiteral:
		return typedsql.ResolvedType{Kind: typedsql.TypeBlob}, nil

	case *ast.NullLiteral:
		// Untyped null: Kind stays empty so folding adopts the other
		// side's kind. finalize turns a bare null into nullable TEXT.
		return typedsql.ResolvedType{Nullable: true}, nil

	case *ast.BindRef:
		// A bind site with no constraining context. The layout analyzer
		// assigns context-derived types; this is the fallback.
		return typedsql.ResolvedType{Kind: typedsql.TypeText, Nullable: true}, nil

	case *ast.Binary:
		return resolveBinary(e, ctx)

	case *ast.Unary:
		return resolveUnary(e, ctx)

	case *ast.In:
		// A predicate result, regardless of operand types.
		if _, err := Resolve(e.Operand, ctx); err != nil {
			return typedsql.ResolvedType{}, err
		}

		if err := checkInRhs(e, ctx); err != nil {
			return typedsql.ResolvedType{}, err
		}

		return typedsql.ResolvedType{Kind: typedsql.TypeInteger}, nil

	case *ast.FunctionCall:
		// Function and aggregate results are integer counts in the
		// modeled dialect.
		for _, arg := range e.Args {
			if _, err := Resolve(arg, ctx); err != nil {
				return typedsql.ResolvedType{}, err
			}
		}

		return typedsql.ResolvedType{Kind: typedsql.TypeInteger}, nil

	case *ast.Subselect:
		return resolveSubselect(e, ctx)

	default:
		return typedsql.ResolvedType{}, fmt.Errorf("%w: %T", typedsql.ErrUnsupportedExpression, expr)
	}
}

func resolveBinary(e *ast.Binary, ctx *Context) (typedsql.ResolvedType, error) {
	left, err := Resolve(e.Left, ctx)
	if err != nil {
		return typedsql.ResolvedType{}, err
	}

	right, err := Resolve(e.Right, ctx)
	if err != nil {
		return typedsql.ResolvedType{}, err
	}

	switch e.Op {
	case "=", "==", "!=", "<>", "<", "<=", ">", ">=", "LIKE", "GLOB", "IS", "IS NOT", "AND", "OR":
		return typedsql.ResolvedType{Kind: typedsql.TypeInteger}, nil

	case "||":
		return typedsql.ResolvedType{Kind: typedsql.TypeText, Nullable: left.Nullable || right.Nullable}, nil

	case "+", "-", "*", "/", "%":
		kind := typedsql.TypeInteger
		if left.Kind == typedsql.TypeReal || right.Kind == typedsql.TypeReal {
			kind = typedsql.TypeReal
		}

		return typedsql.ResolvedType{Kind: kind, Nullable: left.Nullable || right.Nullable}, nil

	default:
		return typedsql.ResolvedType{}, fmt.Errorf("%w: binary operator %q", typedsql.ErrUnsupportedExpression, e.Op)
	}
}

func resolveUnary(e *ast.Unary, ctx *Context) (typedsql.ResolvedType, error) {
	operand, err := Resolve(e.Operand, ctx)
	if err != nil {
		return typedsql.ResolvedType{}, err
	}

	switch e.Op {
	case "NOT":
		return typedsql.ResolvedType{Kind: typedsql.TypeInteger}, nil
	case "-", "+":
		return operand, nil
	default:
		return typedsql.ResolvedType{}, fmt.Errorf("%w: unary operator %q", typedsql.ErrUnsupportedExpression, e.Op)
	}
}

// resolveSubselect types a scalar subquery as its first projected column.
// The result is always nullable: an empty result set reads as NULL.
func resolveSubselect(e *ast.Subselect, ctx *Context) (typedsql.ResolvedType, error) {
	shape, err := ResultShape(e.Select, ctx)
	if err != nil {
		return typedsql.ResolvedType{}, err
	}

	if len(shape.Columns) == 0 {
		return typedsql.ResolvedType{}, typedsql.ErrNoResultColumns
	}

	t := shape.Columns[0].Type
	t.Nullable = true

	return t, nil
}

// checkInRhs resolves the non-bind right-hand sides of an IN predicate so
// schema errors inside them surface. Bind collections are typed by the
// layout analyzer.
func checkInRhs(e *ast.In, ctx *Context) error {
	for _, item := range e.List {
		if _, err := Resolve(item, ctx); err != nil {
			return err
		}
	}

	if e.Select != nil {
		if _, err := ResultShape(e.Select, ctx); err != nil {
			return err
		}
	}

	return nil
}
