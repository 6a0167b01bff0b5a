package typeinference

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/typedsql/typedsql"
)

func TestFold(t *testing.T) {
	integer := typedsql.ResolvedType{Kind: typedsql.TypeInteger}
	text := typedsql.ResolvedType{Kind: typedsql.TypeText}
	untypedNull := typedsql.ResolvedType{Nullable: true}

	t.Run("matching kinds keep the kind", func(t *testing.T) {
		assert.Equal(t, integer, Fold(integer, integer))
	})

	t.Run("differing kinds fall back to TEXT", func(t *testing.T) {
		assert.Equal(t, typedsql.TypeText, Fold(integer, typedsql.ResolvedType{Kind: typedsql.TypeReal}).Kind)
		assert.Equal(t, typedsql.TypeText, Fold(typedsql.ResolvedType{Kind: typedsql.TypeBlob}, integer).Kind)
	})

	t.Run("untyped null adopts the other side", func(t *testing.T) {
		folded := Fold(untypedNull, integer)
		assert.Equal(t, typedsql.TypeInteger, folded.Kind)
		assert.True(t, folded.Nullable)
	})

	t.Run("nullability is ORed", func(t *testing.T) {
		nullable := typedsql.ResolvedType{Kind: typedsql.TypeText, Nullable: true}
		assert.True(t, Fold(text, nullable).Nullable)
		assert.True(t, Fold(nullable, text).Nullable)
		assert.False(t, Fold(text, text).Nullable)
	})

	t.Run("adapters survive only on agreement", func(t *testing.T) {
		adapted := typedsql.ResolvedType{
			Kind:    typedsql.TypeText,
			Adapter: &typedsql.AdapterRef{Table: "games", Column: "played_at", GoType: "time.Time"},
		}
		other := typedsql.ResolvedType{
			Kind:    typedsql.TypeText,
			Adapter: &typedsql.AdapterRef{Table: "games", Column: "ended_at", GoType: "time.Time"},
		}

		assert.NotZero(t, Fold(adapted, adapted).Adapter)
		assert.Zero(t, Fold(adapted, other).Adapter)
		assert.Zero(t, Fold(adapted, text).Adapter)
	})

	t.Run("overrides survive only on agreement", func(t *testing.T) {
		overridden := typedsql.ResolvedType{Kind: typedsql.TypeInteger, Override: "Score"}

		assert.Equal(t, "Score", Fold(overridden, overridden).Override)
		assert.Equal(t, "", Fold(overridden, integer).Override)
	})
}

// Folding must not depend on row order: the shape of VALUES (1), ('a') has
// to match VALUES ('a'), (1).
func TestFoldCommutative(t *testing.T) {
	samples := []typedsql.ResolvedType{
		{Kind: typedsql.TypeInteger},
		{Kind: typedsql.TypeReal, Nullable: true},
		{Kind: typedsql.TypeText},
		{Kind: typedsql.TypeBlob},
		{Nullable: true},
	}

	for _, a := range samples {
		for _, b := range samples {
			assert.Equal(t, Fold(a, b), Fold(b, a))
		}
	}
}

func TestFoldAssociative(t *testing.T) {
	samples := []typedsql.ResolvedType{
		{Kind: typedsql.TypeInteger},
		{Kind: typedsql.TypeText, Nullable: true},
		{Nullable: true},
	}

	for _, a := range samples {
		for _, b := range samples {
			for _, c := range samples {
				assert.Equal(t, Fold(Fold(a, b), c), Fold(a, Fold(b, c)))
			}
		}
	}
}

func TestFoldAll(t *testing.T) {
	folded := FoldAll([]typedsql.ResolvedType{
		{Kind: typedsql.TypeInteger},
		{Nullable: true},
		{Kind: typedsql.TypeInteger},
	})

	assert.Equal(t, typedsql.TypeInteger, folded.Kind)
	assert.True(t, folded.Nullable)
}
