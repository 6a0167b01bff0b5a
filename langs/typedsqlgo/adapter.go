package typedsqlgo

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Adapter converts between a column's stored representation and an
// application-level type. Adapters are supplied by the application and
// injected into the generated Queries value; the compiler only references
// them by (table, column) name.
type Adapter[T any] interface {
	// Decode converts a raw stored value (int64, float64, string, or
	// []byte, never nil) into the application type.
	Decode(raw any) (T, error)
	// Encode converts the application type back into a bindable raw value.
	Encode(v T) (any, error)
}

// BindRaw binds an adapter-encoded raw value by its dynamic type. Adapters
// may encode into any storage class, so generated code routes their output
// through here instead of a fixed typed bind.
func BindRaw(stmt Statement, ordinal int, raw any) error {
	switch v := raw.(type) {
	case nil:
		return stmt.BindNull(ordinal)
	case int64:
		return stmt.BindInt64(ordinal, v)
	case int:
		return stmt.BindInt64(ordinal, int64(v))
	case bool:
		if v {
			return stmt.BindInt64(ordinal, 1)
		}

		return stmt.BindInt64(ordinal, 0)
	case float64:
		return stmt.BindFloat64(ordinal, v)
	case string:
		return stmt.BindText(ordinal, v)
	case []byte:
		return stmt.BindBytes(ordinal, v)
	default:
		return fmt.Errorf("cannot bind adapter-encoded value of type %T", raw)
	}
}

// DecimalTextAdapter adapts decimal values stored as TEXT columns.
type DecimalTextAdapter struct{}

func (DecimalTextAdapter) Decode(raw any) (decimal.Decimal, error) {
	s, ok := raw.(string)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("decimal adapter: expected TEXT, got %T", raw)
	}

	return decimal.NewFromString(s)
}

func (DecimalTextAdapter) Encode(v decimal.Decimal) (any, error) {
	return v.String(), nil
}
