package intermediate

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/typedsql/typedsql/ast"
)

// QueryFile is the serialized form of one named-query file produced by the
// external SQL parser: function names plus resolved statement trees.
type QueryFile struct {
	Queries []QueryDoc `yaml:"queries"`
}

// QueryDoc is one serialized named query.
type QueryDoc struct {
	Name      string           `yaml:"name"`
	Statement ast.StatementDoc `yaml:"statement"`

	// Source is filled by the loader for error reporting.
	Source string `yaml:"-"`
}

// LoadQueries reads and decodes one query file.
func LoadQueries(path string) ([]QueryDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}

	return ParseQueries(path, data)
}

// ParseQueries decodes serialized queries, tagging each with its source for
// diagnostics.
func ParseQueries(source string, data []byte) ([]QueryDoc, error) {
	var file QueryFile

	err := yaml.UnmarshalWithOptions(data, &file, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse query file %s: %w", source, err)
	}

	for i := range file.Queries {
		file.Queries[i].Source = source
	}

	return file.Queries, nil
}
