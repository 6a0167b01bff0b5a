package typedsql

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// SchemaFile is the serialized form of a compilation unit's schema,
// produced by the external DDL analyzer.
type SchemaFile struct {
	Tables []SchemaTable `yaml:"tables"`
}

// SchemaTable is one serialized table declaration.
type SchemaTable struct {
	Name    string         `yaml:"name"`
	Columns []SchemaColumn `yaml:"columns"`
}

// SchemaColumn is one serialized column declaration.
type SchemaColumn struct {
	Name         string      `yaml:"name"`
	Type         string      `yaml:"type"`
	Nullable     bool        `yaml:"nullable"`
	PrimaryKey   bool        `yaml:"primary_key"`
	TypeOverride string      `yaml:"type_override"`
	Adapter      *AdapterRef `yaml:"adapter"`
}

// LoadSchema reads a schema YAML file and builds the registry from it.
func LoadSchema(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	return ParseSchema(data)
}

// ParseSchema builds a registry from serialized schema YAML.
func ParseSchema(data []byte) (*Registry, error) {
	var file SchemaFile

	err := yaml.UnmarshalWithOptions(data, &file, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	tables := make([]TableDefinition, 0, len(file.Tables))

	for _, t := range file.Tables {
		table := TableDefinition{Name: t.Name, Columns: make([]ColumnDefinition, 0, len(t.Columns))}

		for _, c := range t.Columns {
			kind := TypeKind(c.Type)
			if !kind.IsValid() {
				return nil, fmt.Errorf("%w: %s.%s declared as %q", ErrUnknownTypeKind, t.Name, c.Name, c.Type)
			}

			adapter := c.Adapter
			if adapter != nil {
				// Adapter declarations may omit the owning table/column.
				if adapter.Table == "" {
					adapter.Table = t.Name
				}

				if adapter.Column == "" {
					adapter.Column = c.Name
				}
			}

			table.Columns = append(table.Columns, ColumnDefinition{
				Name:         c.Name,
				TableName:    t.Name,
				Type:         kind,
				Nullable:     c.Nullable,
				IsPrimaryKey: c.PrimaryKey,
				TypeOverride: c.TypeOverride,
				Adapter:      adapter,
			})
		}

		tables = append(tables, table)
	}

	return NewRegistry(tables)
}
