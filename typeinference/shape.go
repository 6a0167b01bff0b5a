package typeinference

import (
	"fmt"
	"strconv"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/ast"
)

// ShapeKind classifies how a query's result maps onto generated code.
type ShapeKind string

const (
	// ShapeRow is a projection of named columns; a row struct is generated
	// and both accessor forms are emitted.
	ShapeRow ShapeKind = "row"
	// ShapeScalar is a single-column result; the element type is the
	// column's value type, no row struct is generated.
	ShapeScalar ShapeKind = "scalar"
	// ShapeAdHoc is a folded VALUES shape with no named row type; only the
	// custom-mapper accessor is emitted.
	ShapeAdHoc ShapeKind = "adhoc"
)

// ResultColumn is one position of a query's result shape.
type ResultColumn struct {
	Name string
	Type typedsql.ResolvedType
}

// Shape is the ordered result shape of a statement.
type Shape struct {
	Kind    ShapeKind
	Columns []ResultColumn
}

// ResultShape determines the ordered (name, type) pairs a statement's result
// set yields. Column order follows projection order, or declaration order
// for SELECT *.
func ResultShape(stmt ast.Statement, ctx *Context) (Shape, error) {
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		return selectShape(s, ctx)
	case *ast.ValuesStatement:
		return valuesShape(s, ctx)
	default:
		return Shape{}, fmt.Errorf("%w: %T", typedsql.ErrUnsupportedStatement, stmt)
	}
}

func selectShape(stmt *ast.SelectStatement, ctx *Context) (Shape, error) {
	scope := ctx.WithFrom(stmt.From)
	names := newNameAllocator()

	var columns []ResultColumn

	for _, item := range stmt.Items {
		if item.Star {
			if stmt.From == nil {
				return Shape{}, fmt.Errorf("%w: SELECT * without FROM", typedsql.ErrTableNotFound)
			}

			table, err := ctx.Registry.LookupTable(stmt.From.Table)
			if err != nil {
				return Shape{}, err
			}

			for _, col := range table.Columns {
				columns = append(columns, ResultColumn{
					Name: names.allocate(col.Name),
					Type: col.ResolvedType(),
				})
			}

			continue
		}

		resolved, err := Resolve(item.Expr, scope)
		if err != nil {
			return Shape{}, err
		}

		columns = append(columns, ResultColumn{
			Name: names.allocate(columnName(item)),
			Type: finalize(resolved),
		})
	}

	if len(columns) == 0 {
		return Shape{}, typedsql.ErrNoResultColumns
	}

	kind := ShapeRow
	if len(columns) == 1 {
		kind = ShapeScalar
	}

	return Shape{Kind: kind, Columns: columns}, nil
}

// valuesShape folds every row's types position by position into one common
// type per column.
func valuesShape(stmt *ast.ValuesStatement, ctx *Context) (Shape, error) {
	if len(stmt.Rows) == 0 {
		return Shape{}, typedsql.ErrEmptyValues
	}

	width := len(stmt.Rows[0])
	folded := make([]typedsql.ResolvedType, width)

	for rowIndex, row := range stmt.Rows {
		if len(row) != width {
			return Shape{}, fmt.Errorf("%w: row 1 has %d columns, row %d has %d", typedsql.ErrRaggedValues, width, rowIndex+1, len(row))
		}

		for i, cell := range row {
			resolved, err := Resolve(cell, ctx)
			if err != nil {
				return Shape{}, err
			}

			if rowIndex == 0 {
				folded[i] = resolved
			} else {
				folded[i] = Fold(folded[i], resolved)
			}
		}
	}

	columns := make([]ResultColumn, width)
	for i, t := range folded {
		columns[i] = ResultColumn{Name: "column" + strconv.Itoa(i+1), Type: finalize(t)}
	}

	return Shape{Kind: ShapeAdHoc, Columns: columns}, nil
}

// CheckStatement resolves every expression a statement references so that
// schema resolution errors surface even for expressions outside the
// projection (WHERE, GROUP BY, ORDER BY, LIMIT, OFFSET).
func CheckStatement(stmt ast.Statement, ctx *Context) error {
	s, ok := stmt.(*ast.SelectStatement)
	if !ok {
		return nil
	}

	scope := ctx.WithFrom(s.From)

	if s.From != nil {
		if _, err := ctx.Registry.LookupTable(s.From.Table); err != nil {
			return err
		}
	}

	exprs := make([]ast.Expr, 0, len(s.GroupBy)+len(s.OrderBy)+3)
	if s.Where != nil {
		exprs = append(exprs, s.Where)
	}

	exprs = append(exprs, s.GroupBy...)

	for _, o := range s.OrderBy {
		exprs = append(exprs, o.Expr)
	}

	if s.Limit != nil {
		exprs = append(exprs, s.Limit)
	}

	if s.Offset != nil {
		exprs = append(exprs, s.Offset)
	}

	for _, expr := range exprs {
		if _, err := Resolve(expr, scope); err != nil {
			return err
		}
	}

	return nil
}

func columnName(item ast.SelectItem) string {
	if item.Alias != "" {
		return item.Alias
	}

	switch e := item.Expr.(type) {
	case *ast.ColumnRef:
		return e.Name
	case *ast.FunctionCall:
		return e.Name
	default:
		return "expr"
	}
}

// nameAllocator keeps result column names unique in a deterministic way:
// the first use keeps the base name, later uses get a numeric suffix.
type nameAllocator struct {
	used map[string]int
}

func newNameAllocator() *nameAllocator {
	return &nameAllocator{used: map[string]int{}}
}

func (a *nameAllocator) allocate(base string) string {
	count, exists := a.used[base]
	if !exists {
		a.used[base] = 1
		return base
	}

	a.used[base] = count + 1

	return base + strconv.Itoa(count+1)
}
