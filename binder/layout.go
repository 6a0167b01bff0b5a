// Package binder determines the positional binding layout of a statement:
// every bind site in text order, the logical parameter behind each site, and
// the ordinal numbering scheme used by the rendered SQL, including the
// runtime expansion of IN (...) list parameters.
package binder

import (
	"strconv"
	"strings"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/ast"
	"github.com/typedsql/typedsql/typeinference"
)

// Arity tells whether a parameter carries one value or a collection.
type Arity string

const (
	Single Arity = "single"
	List   Arity = "list"
)

// Parameter is one logical bind parameter of a statement. A parameter
// referenced at several sites stays one Parameter with several Sites.
type Parameter struct {
	Name string
	// Ordinal is the 1-based position of the parameter's first site among
	// all placeholder sites in text order.
	Ordinal int
	Arity   Arity
	Type    typedsql.ResolvedType
	// Sites are 0-based indexes into Plan.Sites, in text order.
	Sites []int
}

// Site is one placeholder site in the rendered SQL text.
type Site struct {
	// Param indexes Plan.Parameters.
	Param int
	List  bool
}

// Segment is a run of the rendered SQL text. Either Text is set, or the
// segment is a bind hole referencing Plan.Sites[Site]. A list site's hole
// covers the whole parenthesized group.
type Segment struct {
	Text string
	Site int
}

// Plan is the binding layout of one statement.
type Plan struct {
	Parameters []Parameter
	Sites      []Site
	Segments   []Segment
}

// HasList reports whether any parameter needs runtime placeholder
// expansion, making the rendered SQL text runtime-dependent.
func (p *Plan) HasList() bool {
	for _, param := range p.Parameters {
		if param.Arity == List {
			return true
		}
	}

	return false
}

// StaticSQL renders the final SQL text for a plan without list parameters:
// every site gets its declared ordinal as placeholder.
func (p *Plan) StaticSQL(dialect typedsql.Dialect) string {
	var sb strings.Builder

	for _, seg := range p.Segments {
		if seg.Text != "" || seg.Site < 0 {
			sb.WriteString(seg.Text)
			continue
		}

		sb.WriteString(dialect.Placeholder(seg.Site + 1))
	}

	return sb.String()
}

// Layout walks a statement's bind sites in text order and produces its
// binding plan. Bind types are inferred from the site context: comparison
// against a column adopts the column's type (and adapter), IN collections
// adopt the operand's element type, LIMIT and OFFSET sites are integer
// counts. A named parameter reused with a conflicting inferred type keeps
// the type of its first occurrence; the caller is responsible for
// consistency.
func Layout(stmt ast.Statement, ctx *typeinference.Context) (*Plan, error) {
	w := &walker{
		ctx:    ctx,
		plan:   &Plan{},
		byName: map[string]int{},
		counts: map[string]int{},
		used:   map[string]bool{},
	}

	// Explicit names own their spelling regardless of text order, so a
	// synthesized name never shadows one that appears later.
	reserveStatement(w.used, stmt)

	var err error

	switch s := stmt.(type) {
	case *ast.SelectStatement:
		err = w.selectStatement(s)
	case *ast.ValuesStatement:
		err = w.valuesStatement(s)
	default:
		err = typedsql.ErrUnsupportedStatement
	}

	if err != nil {
		return nil, err
	}

	w.flush()

	return w.plan, nil
}

type walker struct {
	ctx    *typeinference.Context
	plan   *Plan
	text   strings.Builder
	byName map[string]int  // explicit parameter name -> Parameters index
	counts map[string]int  // synthesized name usage counts
	used   map[string]bool // every name taken, explicit and synthesized
}

func (w *walker) write(s string) {
	w.text.WriteString(s)
}

// flush closes the pending literal text segment.
func (w *walker) flush() {
	if w.text.Len() == 0 {
		return
	}

	w.plan.Segments = append(w.plan.Segments, Segment{Text: w.text.String(), Site: -1})
	w.text.Reset()
}

// site records one placeholder site for a bind reference and appends its
// hole segment.
func (w *walker) site(bind *ast.BindRef, list bool, expected typedsql.ResolvedType, hint string) error {
	siteIndex := len(w.plan.Sites)

	var (
		paramIndex int
		ok         bool
	)

	if bind.Name != "" {
		paramIndex, ok = w.byName[bind.Name]
	}

	if ok {
		param := &w.plan.Parameters[paramIndex]
		if (param.Arity == List) != list {
			return typedsql.ErrListParameterContext
		}

		// First-seen occurrence's type wins; later sites reuse it.
		param.Sites = append(param.Sites, siteIndex)
	} else {
		name := bind.Name
		if name == "" {
			name = w.synthesize(hint)
		}

		arity := Single
		if list {
			arity = List
		}

		paramIndex = len(w.plan.Parameters)
		w.plan.Parameters = append(w.plan.Parameters, Parameter{
			Name:    name,
			Ordinal: siteIndex + 1,
			Arity:   arity,
			Type:    expected,
			Sites:   []int{siteIndex},
		})

		if bind.Name != "" {
			w.byName[bind.Name] = paramIndex
		}
	}

	w.plan.Sites = append(w.plan.Sites, Site{Param: paramIndex, List: list})
	w.flush()
	w.plan.Segments = append(w.plan.Segments, Segment{Site: siteIndex})

	return nil
}

// synthesize names an anonymous site after the column it is compared
// against, stepping past every name already taken, explicit ones included.
func (w *walker) synthesize(hint string) string {
	if hint == "" {
		hint = "value"
	}

	for {
		w.counts[hint]++

		name := hint
		if n := w.counts[hint]; n > 1 {
			name = hint + strconv.Itoa(n)
		}

		if !w.used[name] {
			w.used[name] = true
			return name
		}
	}
}

// reserveStatement records every explicit bind name of a statement.
func reserveStatement(used map[string]bool, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		for _, item := range s.Items {
			reserveExpr(used, item.Expr)
		}

		reserveExpr(used, s.Where)

		for _, e := range s.GroupBy {
			reserveExpr(used, e)
		}

		for _, item := range s.OrderBy {
			reserveExpr(used, item.Expr)
		}

		reserveExpr(used, s.Limit)
		reserveExpr(used, s.Offset)
	case *ast.ValuesStatement:
		for _, row := range s.Rows {
			for _, e := range row {
				reserveExpr(used, e)
			}
		}
	}
}

func reserveExpr(used map[string]bool, e ast.Expr) {
	switch x := e.(type) {
	case *ast.BindRef:
		if x.Name != "" {
			used[x.Name] = true
		}
	case *ast.Binary:
		reserveExpr(used, x.Left)
		reserveExpr(used, x.Right)
	case *ast.Unary:
		reserveExpr(used, x.Operand)
	case *ast.In:
		reserveExpr(used, x.Operand)

		if x.Bind != nil && x.Bind.Name != "" {
			used[x.Bind.Name] = true
		}

		for _, item := range x.List {
			reserveExpr(used, item)
		}

		if x.Select != nil {
			reserveStatement(used, x.Select)
		}
	case *ast.FunctionCall:
		for _, arg := range x.Args {
			reserveExpr(used, arg)
		}
	case *ast.Subselect:
		reserveStatement(used, x.Select)
	}
}
