package typedsql

import "errors"

// Common errors used throughout the typedsql package
var (
	// ErrTableNotFound indicates a statement references a table the schema does not declare.
	ErrTableNotFound = errors.New("table not found in schema")
	// ErrColumnNotFound indicates a statement references a column the table does not declare.
	ErrColumnNotFound = errors.New("column not found in table")
	// ErrDuplicateTable indicates the schema declares the same table name twice.
	ErrDuplicateTable = errors.New("duplicate table definition")
	// ErrDuplicateColumn indicates a table declares the same column name twice.
	ErrDuplicateColumn = errors.New("duplicate column definition")
	// ErrUnknownTypeKind indicates a column declaration uses an unknown storage class.
	ErrUnknownTypeKind = errors.New("unknown column type")

	// ErrUnsupportedStatement indicates a statement construct the compiler cannot analyze.
	ErrUnsupportedStatement = errors.New("unsupported statement")
	// ErrUnsupportedExpression indicates an expression construct the compiler cannot type.
	ErrUnsupportedExpression = errors.New("unsupported expression")
	// ErrTypeFoldConflict is reserved for dialects where VALUES rows admit no common type.
	ErrTypeFoldConflict = errors.New("cannot fold value rows into a common type")
	// ErrEmptyValues indicates a VALUES statement with no rows.
	ErrEmptyValues = errors.New("VALUES statement has no rows")
	// ErrRaggedValues indicates VALUES rows of differing widths.
	ErrRaggedValues = errors.New("VALUES rows have differing column counts")
	// ErrNoResultColumns indicates a query that yields no result columns.
	ErrNoResultColumns = errors.New("query has no result columns")
	// ErrDuplicateQueryName indicates two named queries share one function name.
	ErrDuplicateQueryName = errors.New("duplicate query name")
	// ErrListParameterContext indicates a list bind variable used outside an IN predicate.
	ErrListParameterContext = errors.New("list parameter is only allowed in IN predicates")

	// ErrConfigValidation is returned when configuration validation fails.
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrConfigFileNotFound indicates a configuration file could not be located.
	ErrConfigFileNotFound = errors.New("configuration file not found")

	// ErrInvalidNodeKind indicates a serialized AST node with an unknown kind tag.
	ErrInvalidNodeKind = errors.New("invalid AST node kind")
	// ErrMissingNodeField indicates a serialized AST node missing a required field.
	ErrMissingNodeField = errors.New("AST node is missing a required field")
)
