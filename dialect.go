package typedsql

import "strconv"

// Dialect selects the placeholder style of the rendered SQL text.
// This type is shared across all packages.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Placeholder renders the bind placeholder for a 1-based ordinal.
// SQLite uses explicit numbered markers (?1, ?2, ...) so that a value bound
// once can back several sites; Postgres uses $1, $2, ...
func (d Dialect) Placeholder(ordinal int) string {
	return d.Marker() + strconv.Itoa(ordinal)
}

// Marker returns the placeholder prefix the dialect numbers its bind
// markers with.
func (d Dialect) Marker() string {
	if d == DialectPostgres {
		return "$"
	}

	return "?"
}

// IsValid reports whether d is a supported dialect.
func (d Dialect) IsValid() bool {
	switch d {
	case DialectSQLite, DialectPostgres:
		return true
	}

	return false
}
