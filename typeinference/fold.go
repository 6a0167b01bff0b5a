package typeinference

import "github.com/typedsql/typedsql"

// Fold combines the resolved types of two rows at the same column position
// into one common type. The operation is associative and commutative, so a
// VALUES shape does not depend on row order:
//
//   - matching kinds keep the kind
//   - differing kinds fall back to TEXT, the most general representable kind
//   - nullability is the logical OR across rows
//   - an untyped null (empty kind) adopts the other side's kind
//
// Adapters and overrides survive only when both sides agree on them;
// heterogeneous rows cannot share a decode route.
func Fold(a, b typedsql.ResolvedType) typedsql.ResolvedType {
	out := typedsql.ResolvedType{Nullable: a.Nullable || b.Nullable}

	switch {
	case a.Kind == b.Kind:
		out.Kind = a.Kind
	case a.Kind == "":
		out.Kind = b.Kind
	case b.Kind == "":
		out.Kind = a.Kind
	default:
		out.Kind = typedsql.TypeText
	}

	if a.Kind == b.Kind {
		if a.Override == b.Override {
			out.Override = a.Override
		}

		if a.Adapter != nil && b.Adapter != nil && a.Adapter.Name() == b.Adapter.Name() {
			out.Adapter = a.Adapter
		}
	}

	return out
}

// FoldAll folds a non-empty sequence of types left to right.
func FoldAll(types []typedsql.ResolvedType) typedsql.ResolvedType {
	out := types[0]
	for _, t := range types[1:] {
		out = Fold(out, t)
	}

	return out
}

// finalize pins down a type that stayed untyped through folding (a column
// position holding only NULLs).
func finalize(t typedsql.ResolvedType) typedsql.ResolvedType {
	if t.Kind == "" {
		t.Kind = typedsql.TypeText
		t.Nullable = true
	}

	return t
}
