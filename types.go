package typedsql

// TypeKind is the SQL storage class of a value in the modeled dialect.
type TypeKind string

const (
	TypeInteger TypeKind = "INTEGER"
	TypeReal    TypeKind = "REAL"
	TypeText    TypeKind = "TEXT"
	TypeBlob    TypeKind = "BLOB"
)

// IsValid reports whether k is one of the known storage classes.
func (k TypeKind) IsValid() bool {
	switch k {
	case TypeInteger, TypeReal, TypeText, TypeBlob:
		return true
	}

	return false
}

// AdapterRef names a caller-supplied encode/decode capability for one column.
// The adapter itself is never implemented by the compiler; generated code
// looks it up by Name at runtime.
type AdapterRef struct {
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
	// GoType is the application-level type the adapter decodes into,
	// e.g. "time.Time" or "mypkg.Status".
	GoType string `json:"goType" yaml:"go_type"`
}

// Name returns the canonical adapter key, unique per (table, column).
func (a AdapterRef) Name() string {
	return a.Table + "." + a.Column
}

// ResolvedType is the semantic type of an expression, column, or bind
// parameter: its storage class, nullability, the Go type generated accessors
// use for it, and the adapter it routes through, if any.
type ResolvedType struct {
	Kind     TypeKind
	Nullable bool
	Adapter  *AdapterRef
	// Override replaces the default Go rendering of Kind. Set from a
	// column's explicit type override; empty for inferred expressions.
	Override string
}

// GoType returns the Go type generated code uses for a value of this type.
// Adapted columns use the adapter's target type, overridden columns use the
// declared override, and everything else maps from the storage class.
// Nullable values other than []byte are rendered as pointers.
func (t ResolvedType) GoType() string {
	base := t.baseGoType()
	if t.Nullable && base != "[]byte" {
		return "*" + base
	}

	return base
}

func (t ResolvedType) baseGoType() string {
	if t.Adapter != nil {
		return t.Adapter.GoType
	}

	if t.Override != "" {
		return t.Override
	}

	switch t.Kind {
	case TypeInteger:
		return "int64"
	case TypeReal:
		return "float64"
	case TypeBlob:
		return "[]byte"
	case TypeText:
		return "string"
	default:
		return "string"
	}
}

// Equal reports whether two resolved types are interchangeable: same storage
// class, same nullability, and same adapter identity.
func (t ResolvedType) Equal(other ResolvedType) bool {
	if t.Kind != other.Kind || t.Nullable != other.Nullable || t.Override != other.Override {
		return false
	}

	if (t.Adapter == nil) != (other.Adapter == nil) {
		return false
	}

	if t.Adapter != nil && t.Adapter.Name() != other.Adapter.Name() {
		return false
	}

	return true
}
