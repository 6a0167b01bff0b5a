// Package gogen emits Go accessor code from compiled queries: per query a
// default-result accessor backed by a generated row type, plus a
// custom-mapper accessor generic over the caller's result element type.
package gogen

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/intermediate"
)

// ErrUnknownImport indicates a referenced package selector with no configured import path.
var ErrUnknownImport = errors.New("no import path configured for package")

// wellKnownImports covers selectors that need no configuration.
var wellKnownImports = map[string]string{
	"time":    "time",
	"decimal": "github.com/shopspring/decimal",
}

// Generator generates Go code from compiled named queries.
type Generator struct {
	PackageName string
	Dialect     typedsql.Dialect
	// Imports maps a package selector used by adapter or override types to
	// its import path, e.g. "mypkg" -> "example.com/app/mypkg".
	Imports map[string]string
}

// Option is a function that configures Generator
type Option func(*Generator)

// WithPackageName sets the package name for generated code
func WithPackageName(name string) Option {
	return func(g *Generator) {
		g.PackageName = name
	}
}

// WithDialect sets the placeholder style of emitted SQL
func WithDialect(dialect typedsql.Dialect) Option {
	return func(g *Generator) {
		g.Dialect = dialect
	}
}

// WithImports registers import paths for packages referenced by adapter and
// override types
func WithImports(imports map[string]string) Option {
	return func(g *Generator) {
		g.Imports = imports
	}
}

// New creates a new Generator
func New(opts ...Option) *Generator {
	g := &Generator{
		PackageName: "queries",
		Dialect:     typedsql.DialectSQLite,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate writes one Go source file covering every query, in input order.
// Output is byte-identical across runs for the same input: queries keep
// their given order, adapters and imports are sorted.
func (g *Generator) Generate(w io.Writer, queries []*intermediate.NamedQuery) error {
	adapters := collectAdapters(queries)

	imports, err := g.collectImports(queries, adapters)
	if err != nil {
		return err
	}

	var buf strings.Builder

	buf.WriteString("// Code generated by typedsql. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", g.PackageName)

	g.writeImports(&buf, queries, imports)
	g.writeQueriesType(&buf, adapters)

	for _, q := range queries {
		if err := g.emitQuery(&buf, q); err != nil {
			return fmt.Errorf("query %q: %w", q.Name, err)
		}
	}

	_, err = io.WriteString(w, buf.String())

	return err
}

// adapterUse is one distinct adapter referenced by the query set.
type adapterUse struct {
	field string
	ref   typedsql.AdapterRef
}

func collectAdapters(queries []*intermediate.NamedQuery) []adapterUse {
	seen := map[string]typedsql.AdapterRef{}

	for _, q := range queries {
		for _, col := range q.Shape.Columns {
			if col.Type.Adapter != nil {
				seen[col.Type.Adapter.Name()] = *col.Type.Adapter
			}
		}

		for _, p := range q.Plan.Parameters {
			if p.Type.Adapter != nil {
				seen[p.Type.Adapter.Name()] = *p.Type.Adapter
			}
		}
	}

	out := make([]adapterUse, 0, len(seen))
	for _, ref := range seen {
		out = append(out, adapterUse{field: adapterField(ref), ref: ref})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].field < out[j].field })

	return out
}

// adapterField names the Queries struct field holding one adapter.
func adapterField(ref typedsql.AdapterRef) string {
	return paramName(ref.Table) + exportedName(ref.Column) + "Adapter"
}

// collectImports resolves the import paths of every external type the file
// references.
func (g *Generator) collectImports(queries []*intermediate.NamedQuery, adapters []adapterUse) ([]string, error) {
	selectors := map[string]bool{}

	record := func(goType string) {
		goType = strings.TrimPrefix(goType, "*")
		if i := strings.IndexByte(goType, '.'); i > 0 {
			selectors[goType[:i]] = true
		}
	}

	for _, a := range adapters {
		record(a.ref.GoType)
	}

	for _, q := range queries {
		for _, col := range q.Shape.Columns {
			record(col.Type.GoType())
		}

		for _, p := range q.Plan.Parameters {
			record(p.Type.GoType())
		}
	}

	paths := make([]string, 0, len(selectors))

	for selector := range selectors {
		path, ok := g.Imports[selector]
		if !ok {
			path, ok = wellKnownImports[selector]
		}

		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownImport, selector)
		}

		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths, nil
}

func (g *Generator) writeImports(buf *strings.Builder, queries []*intermediate.NamedQuery, extra []string) {
	needsStrings := false

	for _, q := range queries {
		if q.Plan.HasList() {
			needsStrings = true
			break
		}
	}

	buf.WriteString("import (\n")

	if needsStrings {
		buf.WriteString("\t\"strings\"\n\n")
	}

	buf.WriteString("\t\"github.com/typedsql/typedsql/langs/typedsqlgo\"\n")

	if len(extra) > 0 {
		buf.WriteString("\n")

		for _, path := range extra {
			fmt.Fprintf(buf, "\t%q\n", path)
		}
	}

	buf.WriteString(")\n\n")
}

func (g *Generator) writeQueriesType(buf *strings.Builder, adapters []adapterUse) {
	buf.WriteString("// Queries carries the column adapters generated accessors encode and\n// decode through.\n")

	if len(adapters) == 0 {
		buf.WriteString("type Queries struct{}\n\n")
		buf.WriteString("// New creates the accessor container.\nfunc New() *Queries {\n\treturn &Queries{}\n}\n\n")

		return
	}

	buf.WriteString("type Queries struct {\n")

	for _, a := range adapters {
		fmt.Fprintf(buf, "\t%s typedsqlgo.Adapter[%s]\n", a.field, a.ref.GoType)
	}

	buf.WriteString("}\n\n")

	buf.WriteString("// New creates the accessor container with every adapter the compiled\n// queries reference.\nfunc New(")

	for i, a := range adapters {
		if i > 0 {
			buf.WriteString(", ")
		}

		fmt.Fprintf(buf, "%s typedsqlgo.Adapter[%s]", a.field, a.ref.GoType)
	}

	buf.WriteString(") *Queries {\n\treturn &Queries{\n")

	for _, a := range adapters {
		fmt.Fprintf(buf, "\t\t%s: %s,\n", a.field, a.field)
	}

	buf.WriteString("\t}\n}\n\n")
}
