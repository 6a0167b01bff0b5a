package typedsql

import "fmt"

// ColumnDefinition is a resolved column declaration. Immutable once the
// schema is loaded.
type ColumnDefinition struct {
	Name         string      `json:"name" yaml:"name"`
	TableName    string      `json:"tableName" yaml:"table_name"`
	Type         TypeKind    `json:"type" yaml:"type"`
	Nullable     bool        `json:"nullable" yaml:"nullable"`
	IsPrimaryKey bool        `json:"isPrimaryKey" yaml:"primary_key"`
	TypeOverride string      `json:"typeOverride" yaml:"type_override"` // explicit Go type (optional)
	Adapter      *AdapterRef `json:"adapter" yaml:"adapter"`            // encode/decode capability (optional)
}

// ResolvedType returns the semantic type of a reference to this column.
// An INTEGER primary key is always non-nullable regardless of declaration:
// generated identity columns can never be observed as NULL by an accessor.
func (c ColumnDefinition) ResolvedType() ResolvedType {
	nullable := c.Nullable
	if c.IsPrimaryKey && c.Type == TypeInteger {
		nullable = false
	}

	return ResolvedType{
		Kind:     c.Type,
		Nullable: nullable,
		Adapter:  c.Adapter,
		Override: c.TypeOverride,
	}
}

// TableDefinition is a resolved table declaration. Column order matches
// declaration order; it is semantically significant because the shape of
// SELECT * depends on it.
type TableDefinition struct {
	Name    string             `json:"name" yaml:"name"`
	Columns []ColumnDefinition `json:"columns" yaml:"columns"`
}

// Column returns the column with the given name, or false if absent.
func (t TableDefinition) Column(name string) (ColumnDefinition, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}

	return ColumnDefinition{}, false
}

// Registry holds every resolved table definition of one compilation unit.
// It is built completely before query compilation starts and never mutated
// afterward, so compile workers may share it without locking.
type Registry struct {
	tables map[string]TableDefinition
	order  []string
}

// NewRegistry builds a registry from table definitions. Duplicate table
// names and duplicate column names within a table are rejected.
func NewRegistry(tables []TableDefinition) (*Registry, error) {
	r := &Registry{tables: make(map[string]TableDefinition, len(tables))}

	for _, table := range tables {
		if _, exists := r.tables[table.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTable, table.Name)
		}

		seen := make(map[string]struct{}, len(table.Columns))
		for i, col := range table.Columns {
			if _, dup := seen[col.Name]; dup {
				return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, table.Name, col.Name)
			}

			seen[col.Name] = struct{}{}
			table.Columns[i].TableName = table.Name
		}

		r.tables[table.Name] = table
		r.order = append(r.order, table.Name)
	}

	return r, nil
}

// LookupTable resolves a table by name.
func (r *Registry) LookupTable(name string) (TableDefinition, error) {
	table, ok := r.tables[name]
	if !ok {
		return TableDefinition{}, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}

	return table, nil
}

// LookupColumn resolves a column by table and column name.
func (r *Registry) LookupColumn(table, name string) (ColumnDefinition, error) {
	t, err := r.LookupTable(table)
	if err != nil {
		return ColumnDefinition{}, err
	}

	col, ok := t.Column(name)
	if !ok {
		return ColumnDefinition{}, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, name)
	}

	return col, nil
}

// TableNames returns every registered table name in declaration order.
func (r *Registry) TableNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}
