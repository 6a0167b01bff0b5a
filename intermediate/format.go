// Package intermediate assembles the per-statement compilation record every
// code generator consumes, and runs the compile pipeline over a query set.
package intermediate

import (
	"fmt"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/ast"
	"github.com/typedsql/typedsql/binder"
	"github.com/typedsql/typedsql/typeinference"
)

// NamedQuery is the compiled form of one named statement: its result shape,
// its binding plan, and the statement itself. Built once, immutable
// afterward.
type NamedQuery struct {
	Name      string
	Source    string
	Statement ast.Statement
	Shape     typeinference.Shape
	Plan      *binder.Plan
}

// HasParameters reports whether accessor invocations carry argument
// identity. Zero-parameter queries yield plain query values.
func (q *NamedQuery) HasParameters() bool {
	return len(q.Plan.Parameters) > 0
}

// StaticSQL renders the final statement text when no list parameter makes
// the text runtime-dependent.
func (q *NamedQuery) StaticSQL(dialect typedsql.Dialect) string {
	return q.Plan.StaticSQL(dialect)
}

// CompileQuery analyzes one statement against the registry: it checks every
// referenced table and column, resolves the result shape, and lays out the
// bind parameters. The registry must be fully built before the first call.
func CompileQuery(name, source string, stmt ast.Statement, registry *typedsql.Registry) (*NamedQuery, error) {
	ctx := typeinference.NewContext(registry)

	if err := typeinference.CheckStatement(stmt, ctx); err != nil {
		return nil, fmt.Errorf("query %q: %w", name, err)
	}

	shape, err := typeinference.ResultShape(stmt, ctx)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", name, err)
	}

	plan, err := binder.Layout(stmt, ctx)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", name, err)
	}

	return &NamedQuery{
		Name:      name,
		Source:    source,
		Statement: stmt,
		Shape:     shape,
		Plan:      plan,
	}, nil
}
