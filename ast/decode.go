package ast

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"

	"github.com/typedsql/typedsql"
)

// StatementDoc is the serialized statement form produced by the external
// parser. Decode it into a Statement with its Statement method.
type StatementDoc struct {
	Kind    string       `yaml:"kind" json:"kind"`
	Items   []ItemDoc    `yaml:"items,omitempty" json:"items,omitempty"`
	From    *TableDoc    `yaml:"from,omitempty" json:"from,omitempty"`
	Where   *ExprDoc     `yaml:"where,omitempty" json:"where,omitempty"`
	GroupBy []*ExprDoc   `yaml:"group_by,omitempty" json:"groupBy,omitempty"`
	OrderBy []OrderDoc   `yaml:"order_by,omitempty" json:"orderBy,omitempty"`
	Limit   *ExprDoc     `yaml:"limit,omitempty" json:"limit,omitempty"`
	Offset  *ExprDoc     `yaml:"offset,omitempty" json:"offset,omitempty"`
	Rows    [][]*ExprDoc `yaml:"rows,omitempty" json:"rows,omitempty"`
}

// ItemDoc is one serialized projection entry.
type ItemDoc struct {
	Star  bool     `yaml:"star,omitempty" json:"star,omitempty"`
	Expr  *ExprDoc `yaml:"expr,omitempty" json:"expr,omitempty"`
	Alias string   `yaml:"alias,omitempty" json:"alias,omitempty"`
}

// TableDoc is a serialized table reference.
type TableDoc struct {
	Table string `yaml:"table" json:"table"`
	Alias string `yaml:"alias,omitempty" json:"alias,omitempty"`
}

// OrderDoc is one serialized ORDER BY entry.
type OrderDoc struct {
	Expr *ExprDoc `yaml:"expr" json:"expr"`
	Desc bool     `yaml:"desc,omitempty" json:"desc,omitempty"`
}

// ExprDoc is the serialized expression form: a kind tag plus the union of
// per-kind fields.
type ExprDoc struct {
	Kind    string        `yaml:"kind" json:"kind"`
	Table   string        `yaml:"table,omitempty" json:"table,omitempty"`
	Name    string        `yaml:"name,omitempty" json:"name,omitempty"`
	Value   any           `yaml:"value,omitempty" json:"value,omitempty"`
	Type    string        `yaml:"type,omitempty" json:"type,omitempty"`
	Hex     string        `yaml:"hex,omitempty" json:"hex,omitempty"`
	Op      string        `yaml:"op,omitempty" json:"op,omitempty"`
	Left    *ExprDoc      `yaml:"left,omitempty" json:"left,omitempty"`
	Right   *ExprDoc      `yaml:"right,omitempty" json:"right,omitempty"`
	Operand *ExprDoc      `yaml:"operand,omitempty" json:"operand,omitempty"`
	Not     bool          `yaml:"not,omitempty" json:"not,omitempty"`
	Bind    *ExprDoc      `yaml:"bind,omitempty" json:"bind,omitempty"`
	List    []*ExprDoc    `yaml:"list,omitempty" json:"list,omitempty"`
	Select  *StatementDoc `yaml:"select,omitempty" json:"select,omitempty"`
	Star    bool          `yaml:"star,omitempty" json:"star,omitempty"`
	Args    []*ExprDoc    `yaml:"args,omitempty" json:"args,omitempty"`
}

// DecodeStatement parses one serialized statement document.
func DecodeStatement(data []byte) (Statement, error) {
	var doc StatementDoc

	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse statement document: %w", err)
	}

	return doc.Statement()
}

// Statement converts the serialized form into AST nodes.
func (d *StatementDoc) Statement() (Statement, error) {
	switch d.Kind {
	case "select":
		return d.selectStatement()
	case "values":
		return d.valuesStatement()
	default:
		return nil, fmt.Errorf("%w: statement kind %q", typedsql.ErrInvalidNodeKind, d.Kind)
	}
}

func (d *StatementDoc) selectStatement() (*SelectStatement, error) {
	stmt := &SelectStatement{}

	if len(d.Items) == 0 {
		return nil, fmt.Errorf("%w: select needs at least one projection item", typedsql.ErrMissingNodeField)
	}

	for _, item := range d.Items {
		decoded, err := decodeItem(item)
		if err != nil {
			return nil, err
		}

		stmt.Items = append(stmt.Items, decoded)
	}

	if d.From != nil {
		stmt.From = &TableRef{Table: d.From.Table, Alias: d.From.Alias}
	}

	var err error

	if stmt.Where, err = decodeOptional(d.Where); err != nil {
		return nil, err
	}

	for _, g := range d.GroupBy {
		expr, err := decodeExpr(g)
		if err != nil {
			return nil, err
		}

		stmt.GroupBy = append(stmt.GroupBy, expr)
	}

	for _, o := range d.OrderBy {
		expr, err := decodeExpr(o.Expr)
		if err != nil {
			return nil, err
		}

		stmt.OrderBy = append(stmt.OrderBy, OrderItem{Expr: expr, Desc: o.Desc})
	}

	if stmt.Limit, err = decodeOptional(d.Limit); err != nil {
		return nil, err
	}

	if stmt.Offset, err = decodeOptional(d.Offset); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (d *StatementDoc) valuesStatement() (*ValuesStatement, error) {
	if len(d.Rows) == 0 {
		return nil, fmt.Errorf("%w: values needs at least one row", typedsql.ErrMissingNodeField)
	}

	stmt := &ValuesStatement{}

	for _, row := range d.Rows {
		exprs := make([]Expr, 0, len(row))

		for _, cell := range row {
			expr, err := decodeExpr(cell)
			if err != nil {
				return nil, err
			}

			exprs = append(exprs, expr)
		}

		stmt.Rows = append(stmt.Rows, exprs)
	}

	return stmt, nil
}

func decodeItem(item ItemDoc) (SelectItem, error) {
	if item.Star {
		return SelectItem{Star: true}, nil
	}

	if item.Expr == nil {
		return SelectItem{}, fmt.Errorf("%w: projection item needs star or expr", typedsql.ErrMissingNodeField)
	}

	expr, err := decodeExpr(item.Expr)
	if err != nil {
		return SelectItem{}, err
	}

	return SelectItem{Expr: expr, Alias: item.Alias}, nil
}

func decodeOptional(doc *ExprDoc) (Expr, error) {
	if doc == nil {
		return nil, nil
	}

	return decodeExpr(doc)
}

func decodeExpr(doc *ExprDoc) (Expr, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: expression", typedsql.ErrMissingNodeField)
	}

	switch doc.Kind {
	case "column":
		if doc.Name == "" {
			return nil, fmt.Errorf("%w: column reference needs a name", typedsql.ErrMissingNodeField)
		}

		return &ColumnRef{Table: doc.Table, Name: doc.Name}, nil

	case "literal":
		return decodeLiteral(doc)

	case "blob":
		return &BlobLiteral{Hex: doc.Hex}, nil

	case "bind":
		return &BindRef{Name: doc.Name}, nil

	case "binary":
		left, err := decodeExpr(doc.Left)
		if err != nil {
			return nil, err
		}

		right, err := decodeExpr(doc.Right)
		if err != nil {
			return nil, err
		}

		return &Binary{Op: doc.Op, Left: left, Right: right}, nil

	case "unary":
		operand, err := decodeExpr(doc.Operand)
		if err != nil {
			return nil, err
		}

		return &Unary{Op: doc.Op, Operand: operand}, nil

	case "in":
		return decodeIn(doc)

	case "call":
		call := &FunctionCall{Name: doc.Name, Star: doc.Star}

		for _, arg := range doc.Args {
			expr, err := decodeExpr(arg)
			if err != nil {
				return nil, err
			}

			call.Args = append(call.Args, expr)
		}

		return call, nil

	case "subselect":
		if doc.Select == nil {
			return nil, fmt.Errorf("%w: subselect needs a select", typedsql.ErrMissingNodeField)
		}

		inner, err := doc.Select.selectStatement()
		if err != nil {
			return nil, err
		}

		return &Subselect{Select: inner}, nil

	default:
		return nil, fmt.Errorf("%w: expression kind %q", typedsql.ErrInvalidNodeKind, doc.Kind)
	}
}

func decodeIn(doc *ExprDoc) (Expr, error) {
	operand, err := decodeExpr(doc.Operand)
	if err != nil {
		return nil, err
	}

	in := &In{Not: doc.Not, Operand: operand}

	set := 0

	if doc.Bind != nil {
		in.Bind = &BindRef{Name: doc.Bind.Name}
		set++
	}

	if len(doc.List) > 0 {
		for _, item := range doc.List {
			expr, err := decodeExpr(item)
			if err != nil {
				return nil, err
			}

			in.List = append(in.List, expr)
		}

		set++
	}

	if doc.Select != nil {
		inner, err := doc.Select.selectStatement()
		if err != nil {
			return nil, err
		}

		in.Select = inner
		set++
	}

	if set != 1 {
		return nil, fmt.Errorf("%w: IN needs exactly one of bind, list, or select", typedsql.ErrMissingNodeField)
	}

	return in, nil
}

func decodeLiteral(doc *ExprDoc) (Expr, error) {
	switch v := doc.Value.(type) {
	case nil:
		return &NullLiteral{}, nil
	case bool:
		// The modeled dialect has no boolean storage class.
		if v {
			return &NumericLiteral{Value: decimal.NewFromInt(1), Integer: true}, nil
		}

		return &NumericLiteral{Value: decimal.NewFromInt(0), Integer: true}, nil
	case int:
		return &NumericLiteral{Value: decimal.NewFromInt(int64(v)), Integer: true}, nil
	case int64:
		return &NumericLiteral{Value: decimal.NewFromInt(v), Integer: true}, nil
	case uint64:
		return &NumericLiteral{Value: decimal.NewFromUint64(v), Integer: true}, nil
	case float64:
		return &NumericLiteral{Value: decimal.NewFromFloat(v)}, nil
	case string:
		if doc.Type == "real" || doc.Type == "integer" {
			dec, err := decimal.NewFromString(v)
			if err != nil {
				return nil, fmt.Errorf("invalid numeric literal %q: %w", v, err)
			}

			return &NumericLiteral{Value: dec, Integer: doc.Type == "integer"}, nil
		}

		return &StringLiteral{Value: v}, nil
	default:
		return nil, fmt.Errorf("%w: literal value of type %T", typedsql.ErrInvalidNodeKind, doc.Value)
	}
}
