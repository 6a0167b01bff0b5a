// Package typeinference computes the semantic type of every expression,
// column, and result position of a statement against the schema registry.
package typeinference

import (
	"fmt"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/ast"
)

// Context carries everything a resolution call may consult: the read-only
// schema registry plus the table scope opened by the statement's FROM
// clause. Contexts are immutable; WithFrom derives a new one.
type Context struct {
	Registry     *typedsql.Registry
	defaultTable string
	aliases      map[string]string
}

// NewContext creates a resolution context over a registry with no table
// scope.
func NewContext(registry *typedsql.Registry) *Context {
	return &Context{Registry: registry}
}

// WithFrom derives a context whose unqualified column references resolve
// against the given table reference.
func (c *Context) WithFrom(ref *ast.TableRef) *Context {
	if ref == nil {
		return c
	}

	derived := &Context{
		Registry:     c.Registry,
		defaultTable: ref.Table,
		aliases:      map[string]string{},
	}

	for alias, table := range c.aliases {
		derived.aliases[alias] = table
	}

	if ref.Alias != "" {
		derived.aliases[ref.Alias] = ref.Table
	}

	return derived
}

// LookupColumn resolves a column reference in the current scope.
func (c *Context) LookupColumn(ref *ast.ColumnRef) (typedsql.ColumnDefinition, error) {
	table := ref.Table
	if table == "" {
		table = c.defaultTable
	} else if resolved, ok := c.aliases[table]; ok {
		table = resolved
	}

	if table == "" {
		return typedsql.ColumnDefinition{}, fmt.Errorf("%w: column %q referenced outside a table scope", typedsql.ErrColumnNotFound, ref.Name)
	}

	return c.Registry.LookupColumn(table, ref.Name)
}
