package gogen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/binder"
	"github.com/typedsql/typedsql/intermediate"
	"github.com/typedsql/typedsql/typeinference"
)

type paramInfo struct {
	param  binder.Parameter
	goName string
	goType string
}

type colInfo struct {
	col     typeinference.ResultColumn
	argName string
	goField string
	goType  string
}

type queryEmitter struct {
	g      *Generator
	q      *intermediate.NamedQuery
	fn     string
	params []paramInfo
	cols   []colInfo
}

func (g *Generator) emitQuery(buf *strings.Builder, q *intermediate.NamedQuery) error {
	e := &queryEmitter{g: g, q: q, fn: exportedName(q.Name)}

	// Name folding can collide distinct source names, so both signatures
	// run through an allocator.
	paramIdents := newIdentAllocator()

	for _, p := range q.Plan.Parameters {
		goType := p.Type.GoType()
		if p.Arity == binder.List {
			goType = "[]" + goType
		}

		e.params = append(e.params, paramInfo{param: p, goName: paramIdents.allocate(paramName(p.Name)), goType: goType})
	}

	argIdents := newIdentAllocator()
	fieldIdents := newIdentAllocator()

	for _, col := range q.Shape.Columns {
		e.cols = append(e.cols, colInfo{
			col:     col,
			argName: argIdents.allocate(paramName(col.Name)),
			goField: fieldIdents.allocate(exportedName(col.Name)),
			goType:  col.Type.GoType(),
		})
	}

	switch q.Shape.Kind {
	case typeinference.ShapeRow:
		e.writeRowType(buf)
		e.writeRowAccessor(buf)
	case typeinference.ShapeScalar:
		e.writeScalarAccessor(buf)
	case typeinference.ShapeAdHoc:
		// Folded shapes have no named row type; only the mapper form exists.
	}

	e.writeMapperAccessor(buf)

	return nil
}

// signature renders the shared leading parameter list of both accessors.
func (e *queryEmitter) signature() string {
	var sb strings.Builder

	for i, p := range e.params {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(p.goName + " " + p.goType)
	}

	return sb.String()
}

// mapperArgs renders the mapper function's parameter list, one argument per
// result column.
func (e *queryEmitter) mapperArgs() string {
	var sb strings.Builder

	for i, c := range e.cols {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(c.argName + " " + c.goType)
	}

	return sb.String()
}

func (e *queryEmitter) forwardArgs() string {
	var sb strings.Builder

	sb.WriteString("q")

	for _, p := range e.params {
		sb.WriteString(", " + p.goName)
	}

	return sb.String()
}

func (e *queryEmitter) writeRowType(buf *strings.Builder) {
	fmt.Fprintf(buf, "// %sRow is the default result type of %s.\n", e.fn, e.fn)
	fmt.Fprintf(buf, "type %sRow struct {\n", e.fn)

	for _, c := range e.cols {
		fmt.Fprintf(buf, "\t%s %s\n", c.goField, c.goType)
	}

	buf.WriteString("}\n\n")
}

func (e *queryEmitter) writeRowAccessor(buf *strings.Builder) {
	fmt.Fprintf(buf, "// %s returns the query decoded into %sRow values.\n", e.fn, e.fn)
	fmt.Fprintf(buf, "func (q *Queries) %s(%s) *typedsqlgo.Query[%sRow] {\n", e.fn, e.signature(), e.fn)
	fmt.Fprintf(buf, "\treturn %sMapper(%s, func(%s) %sRow {\n", e.fn, e.forwardArgs(), e.mapperArgs(), e.fn)
	fmt.Fprintf(buf, "\t\treturn %sRow{\n", e.fn)

	for _, c := range e.cols {
		fmt.Fprintf(buf, "\t\t\t%s: %s,\n", c.goField, c.argName)
	}

	buf.WriteString("\t\t}\n\t})\n}\n\n")
}

func (e *queryEmitter) writeScalarAccessor(buf *strings.Builder) {
	c := e.cols[0]

	fmt.Fprintf(buf, "// %s returns the query's single %s column directly.\n", e.fn, c.col.Name)
	fmt.Fprintf(buf, "func (q *Queries) %s(%s) *typedsqlgo.Query[%s] {\n", e.fn, e.signature(), c.goType)
	fmt.Fprintf(buf, "\treturn %sMapper(%s, func(%s %s) %s { return %s })\n", e.fn, e.forwardArgs(), c.argName, c.goType, c.goType, c.argName)
	buf.WriteString("}\n\n")
}

func (e *queryEmitter) writeMapperAccessor(buf *strings.Builder) {
	sig := e.signature()
	if sig != "" {
		sig += ", "
	}

	fmt.Fprintf(buf, "// %sMapper decodes each row through a caller-supplied mapper.\n", e.fn)
	fmt.Fprintf(buf, "func %sMapper[T any](q *Queries, %smapper func(%s) T) *typedsqlgo.Query[T] {\n", e.fn, sig, e.mapperArgs())
	buf.WriteString("\treturn typedsqlgo.NewQuery(\n")
	fmt.Fprintf(buf, "\t\t%q,\n", e.q.Name)

	e.writeSQLFunc(buf)
	e.writeBindFunc(buf)
	e.writeDecodeFunc(buf)

	for _, p := range e.params {
		fmt.Fprintf(buf, "\t\t%s,\n", p.goName)
	}

	buf.WriteString("\t)\n}\n\n")
}

// sqlPiece is either a literal run of the rendered SQL (single-site
// placeholders already inlined) or a list hole expanded at runtime.
type sqlPiece struct {
	text      string
	listParam string
}

func (e *queryEmitter) sqlPieces() []sqlPiece {
	var (
		pieces  []sqlPiece
		literal strings.Builder
	)

	for _, seg := range e.q.Plan.Segments {
		if seg.Text != "" {
			literal.WriteString(seg.Text)
			continue
		}

		site := e.q.Plan.Sites[seg.Site]
		if !site.List {
			literal.WriteString(e.g.Dialect.Placeholder(seg.Site + 1))
			continue
		}

		if literal.Len() > 0 {
			pieces = append(pieces, sqlPiece{text: literal.String()})
			literal.Reset()
		}

		pieces = append(pieces, sqlPiece{listParam: e.params[site.Param].goName})
	}

	if literal.Len() > 0 {
		pieces = append(pieces, sqlPiece{text: literal.String()})
	}

	return pieces
}

func (e *queryEmitter) writeSQLFunc(buf *strings.Builder) {
	pieces := e.sqlPieces()

	if !e.q.Plan.HasList() {
		text := ""
		if len(pieces) == 1 {
			text = pieces[0].text
		}

		fmt.Fprintf(buf, "\t\tfunc() string { return %q },\n", text)

		return
	}

	// The statement text depends on runtime collection sizes: list holes
	// expand into fresh ordinal runs allocated past the declared sites.
	listsLeft := 0

	for _, p := range pieces {
		if p.listParam != "" {
			listsLeft++
		}
	}

	buf.WriteString("\t\tfunc() string {\n")
	buf.WriteString("\t\t\tvar sb strings.Builder\n\n")
	fmt.Fprintf(buf, "\t\t\tord := %d\n", len(e.q.Plan.Sites)+1)

	for _, p := range pieces {
		if p.listParam == "" {
			fmt.Fprintf(buf, "\t\t\tsb.WriteString(%q)\n", p.text)
			continue
		}

		fmt.Fprintf(buf, "\t\t\tsb.WriteString(typedsqlgo.PlaceholderGroup(%q, ord, len(%s)))\n", e.g.Dialect.Marker(), p.listParam)

		listsLeft--
		if listsLeft > 0 {
			fmt.Fprintf(buf, "\t\t\tord += len(%s)\n", p.listParam)
		}
	}

	buf.WriteString("\n\t\t\treturn sb.String()\n\t\t},\n")
}

func (e *queryEmitter) writeBindFunc(buf *strings.Builder) {
	buf.WriteString("\t\tfunc(stmt typedsqlgo.Statement) error {\n")

	if e.q.Plan.HasList() {
		fmt.Fprintf(buf, "\t\t\tord := %d\n\n", len(e.q.Plan.Sites)+1)
	}

	for si, site := range e.q.Plan.Sites {
		p := e.params[site.Param]

		if site.List {
			e.writeListBind(buf, si, p)
			continue
		}

		e.writeScalarBind(buf, "\t\t\t", strconv.Itoa(si+1), p.goName, p.param.Type, fmt.Sprintf("raw%d", si))
	}

	buf.WriteString("\t\t\treturn nil\n\t\t},\n")
}

func (e *queryEmitter) writeListBind(buf *strings.Builder, si int, p paramInfo) {
	fmt.Fprintf(buf, "\t\t\tfor _, v := range %s {\n", p.goName)
	e.writeScalarBind(buf, "\t\t\t\t", "ord", "v", p.param.Type, fmt.Sprintf("raw%d", si))
	buf.WriteString("\t\t\t\tord++\n\t\t\t}\n")
}

// writeScalarBind emits one typed bind of value at ordExpr.
func (e *queryEmitter) writeScalarBind(buf *strings.Builder, indent, ordExpr, value string, t typedsql.ResolvedType, tmp string) {
	// Nullable values arrive as pointers, except blobs which stay nilable
	// slices.
	deref := t.Nullable && t.Kind != typedsql.TypeBlob

	if t.Adapter != nil {
		field := adapterField(*t.Adapter)

		encodeValue := value
		if deref {
			encodeValue = "*" + value
		}

		inner := indent

		if t.Nullable {
			fmt.Fprintf(buf, "%sif %s == nil {\n", indent, value)
			fmt.Fprintf(buf, "%s\tif err := stmt.BindNull(%s); err != nil {\n%s\t\treturn err\n%s\t}\n", indent, ordExpr, indent, indent)
			fmt.Fprintf(buf, "%s} else {\n", indent)

			inner = indent + "\t"
		}

		fmt.Fprintf(buf, "%s%s, err := q.%s.Encode(%s)\n", inner, tmp, field, encodeValue)
		fmt.Fprintf(buf, "%sif err != nil {\n%s\treturn err\n%s}\n", inner, inner, inner)
		fmt.Fprintf(buf, "%sif err := typedsqlgo.BindRaw(stmt, %s, %s); err != nil {\n%s\treturn err\n%s}\n", inner, ordExpr, tmp, inner, inner)

		if t.Nullable {
			fmt.Fprintf(buf, "%s}\n", indent)
		}

		return
	}

	bindCall := bindCallFor(t.Kind)

	bindValue := value
	if deref {
		bindValue = "*" + value
	}

	if conv := storageConversion(t); conv != "" {
		bindValue = conv + "(" + bindValue + ")"
	}

	if t.Nullable {
		fmt.Fprintf(buf, "%sif %s == nil {\n", indent, value)
		fmt.Fprintf(buf, "%s\tif err := stmt.BindNull(%s); err != nil {\n%s\t\treturn err\n%s\t}\n", indent, ordExpr, indent, indent)
		fmt.Fprintf(buf, "%s} else if err := stmt.%s(%s, %s); err != nil {\n%s\treturn err\n%s}\n", indent, bindCall, ordExpr, bindValue, indent, indent)

		return
	}

	fmt.Fprintf(buf, "%sif err := stmt.%s(%s, %s); err != nil {\n%s\treturn err\n%s}\n", indent, bindCall, ordExpr, bindValue, indent, indent)
}

// bindCallFor returns the typed bind method for a storage class.
func bindCallFor(kind typedsql.TypeKind) string {
	switch kind {
	case typedsql.TypeInteger:
		return "BindInt64"
	case typedsql.TypeReal:
		return "BindFloat64"
	case typedsql.TypeBlob:
		return "BindBytes"
	default:
		return "BindText"
	}
}

// storageConversion returns the conversion wrapping an overridden value
// back into its storage representation, or "" when none is needed.
func storageConversion(t typedsql.ResolvedType) string {
	if t.Override == "" {
		return ""
	}

	switch t.Kind {
	case typedsql.TypeInteger:
		return "int64"
	case typedsql.TypeReal:
		return "float64"
	case typedsql.TypeBlob:
		return "[]byte"
	default:
		return "string"
	}
}

func (e *queryEmitter) writeDecodeFunc(buf *strings.Builder) {
	buf.WriteString("\t\tfunc(cursor typedsqlgo.Cursor) (T, error) {\n")
	buf.WriteString("\t\t\tvar zero T\n\n")

	args := make([]string, len(e.cols))

	for i, c := range e.cols {
		args[i] = e.writeDecodeColumn(buf, i, c)
	}

	fmt.Fprintf(buf, "\t\t\treturn mapper(%s), nil\n\t\t},\n", strings.Join(args, ", "))
}

// writeDecodeColumn emits the positional read of one result column and
// returns the expression passed to the mapper for it.
func (e *queryEmitter) writeDecodeColumn(buf *strings.Builder, i int, c colInfo) string {
	t := c.col.Type
	getter, blob := getterFor(t.Kind)
	raw := fmt.Sprintf("c%d", i)

	needsConvert := t.Adapter != nil || t.Override != ""
	if needsConvert {
		raw += "raw"
	}

	fmt.Fprintf(buf, "\t\t\t%s, err := cursor.%s(%d)\n", raw, getter, i)
	buf.WriteString("\t\t\tif err != nil {\n\t\t\t\treturn zero, err\n\t\t\t}\n")

	if !t.Nullable {
		fmt.Fprintf(buf, "\t\t\tif %s == nil {\n\t\t\t\treturn zero, typedsqlgo.ErrUnexpectedNull\n\t\t\t}\n", raw)
	}

	rawValue := raw
	if !blob {
		rawValue = "*" + raw
	}

	switch {
	case t.Adapter != nil && !t.Nullable:
		field := adapterField(*t.Adapter)
		fmt.Fprintf(buf, "\t\t\tc%d, err := q.%s.Decode(%s)\n", i, field, rawValue)
		buf.WriteString("\t\t\tif err != nil {\n\t\t\t\treturn zero, err\n\t\t\t}\n\n")

		return fmt.Sprintf("c%d", i)

	case t.Adapter != nil:
		field := adapterField(*t.Adapter)
		fmt.Fprintf(buf, "\n\t\t\tvar c%d %s\n\n", i, t.GoType())
		fmt.Fprintf(buf, "\t\t\tif %s != nil {\n", raw)
		fmt.Fprintf(buf, "\t\t\t\tv, err := q.%s.Decode(%s)\n", field, rawValue)
		buf.WriteString("\t\t\t\tif err != nil {\n\t\t\t\t\treturn zero, err\n\t\t\t\t}\n\n")
		fmt.Fprintf(buf, "\t\t\t\tc%d = &v\n\t\t\t}\n\n", i)

		return fmt.Sprintf("c%d", i)

	case t.Override != "" && !t.Nullable:
		buf.WriteString("\n")
		return fmt.Sprintf("%s(%s)", t.Override, rawValue)

	case t.Override != "":
		fmt.Fprintf(buf, "\n\t\t\tvar c%d *%s\n\n", i, t.Override)
		fmt.Fprintf(buf, "\t\t\tif %s != nil {\n", raw)
		fmt.Fprintf(buf, "\t\t\t\tv := %s(%s)\n", t.Override, rawValue)
		fmt.Fprintf(buf, "\t\t\t\tc%d = &v\n\t\t\t}\n\n", i)

		return fmt.Sprintf("c%d", i)

	case t.Nullable || blob:
		buf.WriteString("\n")
		return raw

	default:
		buf.WriteString("\n")
		return rawValue
	}
}

// getterFor returns the positional cursor getter for a storage class and
// whether its result is a nilable slice rather than a pointer.
func getterFor(kind typedsql.TypeKind) (string, bool) {
	switch kind {
	case typedsql.TypeInteger:
		return "Int64", false
	case typedsql.TypeReal:
		return "Float64", false
	case typedsql.TypeBlob:
		return "Bytes", true
	default:
		return "Text", false
	}
}
