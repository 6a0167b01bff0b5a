package gogen

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/ast"
	"github.com/typedsql/typedsql/intermediate"
)

func testRegistry(t *testing.T) *typedsql.Registry {
	t.Helper()

	registry, err := typedsql.NewRegistry([]typedsql.TableDefinition{
		{
			Name: "players",
			Columns: []typedsql.ColumnDefinition{
				{Name: "id", Type: typedsql.TypeInteger, IsPrimaryKey: true},
				{Name: "name", Type: typedsql.TypeText},
				{Name: "number", Type: typedsql.TypeInteger, Nullable: true},
				{Name: "joined_at", Type: typedsql.TypeText, Adapter: &typedsql.AdapterRef{Table: "players", Column: "joined_at", GoType: "time.Time"}},
			},
		},
	})
	assert.NoError(t, err)

	return registry
}

func compile(t *testing.T, name string, stmt ast.Statement) *intermediate.NamedQuery {
	t.Helper()

	query, err := intermediate.CompileQuery(name, "queries.yaml", stmt, testRegistry(t))
	assert.NoError(t, err)

	return query
}

func generate(t *testing.T, queries ...*intermediate.NamedQuery) string {
	t.Helper()

	var sb strings.Builder

	err := New().Generate(&sb, queries)
	assert.NoError(t, err)

	return sb.String()
}

func selectByNumber() *ast.SelectStatement {
	return &ast.SelectStatement{
		Items: []ast.SelectItem{
			{Expr: &ast.ColumnRef{Name: "id"}},
			{Expr: &ast.ColumnRef{Name: "name"}},
			{Expr: &ast.ColumnRef{Name: "number"}},
		},
		From: &ast.TableRef{Table: "players"},
		Where: &ast.Binary{
			Op:    "=",
			Left:  &ast.ColumnRef{Name: "number"},
			Right: &ast.BindRef{Name: "number"},
		},
	}
}

func TestGenerateRowQuery(t *testing.T) {
	out := generate(t, compile(t, "playersByNumber", selectByNumber()))

	assert.Contains(t, out, "// Code generated by typedsql. DO NOT EDIT.")
	assert.Contains(t, out, "package queries")

	// Row type mirrors the projection, nullable column as a pointer.
	assert.Contains(t, out, "type PlayersByNumberRow struct {")
	assert.Contains(t, out, "\tID int64\n")
	assert.Contains(t, out, "\tName string\n")
	assert.Contains(t, out, "\tNumber *int64\n")

	// Default accessor is a method, mapper accessor a generic function.
	assert.Contains(t, out, "func (q *Queries) PlayersByNumber(number *int64) *typedsqlgo.Query[PlayersByNumberRow] {")
	assert.Contains(t, out, "func PlayersByNumberMapper[T any](q *Queries, number *int64, mapper func(id int64, name string, number *int64) T) *typedsqlgo.Query[T] {")

	// Static text, bind with null check, decode with null enforcement.
	assert.Contains(t, out, `return "SELECT id, name, number FROM players WHERE number = ?1"`)
	assert.Contains(t, out, "if number == nil {")
	assert.Contains(t, out, "stmt.BindNull(1)")
	assert.Contains(t, out, "stmt.BindInt64(1, *number)")
	assert.Contains(t, out, "typedsqlgo.ErrUnexpectedNull")

	// The invocation's identity is the parameter list.
	assert.Contains(t, out, "\t\tnumber,\n\t)")
}

func TestGenerateScalarQuery(t *testing.T) {
	stmt := &ast.SelectStatement{
		Items: []ast.SelectItem{{Expr: &ast.FunctionCall{Name: "count", Star: true}}},
		From:  &ast.TableRef{Table: "players"},
	}

	out := generate(t, compile(t, "countPlayers", stmt))

	// Single-column results skip the row struct; the element type is the
	// column's value type.
	assert.NotContains(t, out, "CountPlayersRow")
	assert.Contains(t, out, "func (q *Queries) CountPlayers() *typedsqlgo.Query[int64] {")
	assert.Contains(t, out, "func CountPlayersMapper[T any](q *Queries, mapper func(count int64) T) *typedsqlgo.Query[T] {")
}

func TestGeneratePrimaryKeyScalar(t *testing.T) {
	stmt := &ast.SelectStatement{
		Items: []ast.SelectItem{{Expr: &ast.ColumnRef{Name: "id"}}},
		From:  &ast.TableRef{Table: "players"},
	}

	out := generate(t, compile(t, "allPlayerIDs", stmt))

	// A projected INTEGER primary key is a plain non-null int64, so the
	// decode enforces the null check rather than producing a pointer.
	assert.Contains(t, out, "func (q *Queries) AllPlayerIDs() *typedsqlgo.Query[int64] {")
	assert.Contains(t, out, "typedsqlgo.ErrUnexpectedNull")
	assert.NotContains(t, out, "Query[*int64]")
}

func TestGenerateFoldedIdentifiers(t *testing.T) {
	stmt := &ast.SelectStatement{
		Items: []ast.SelectItem{{Expr: &ast.ColumnRef{Name: "name"}}},
		From:  &ast.TableRef{Table: "players"},
		Where: &ast.Binary{
			Op: "AND",
			Left: &ast.Binary{
				Op:    "=",
				Left:  &ast.ColumnRef{Name: "id"},
				Right: &ast.BindRef{Name: "user_id"},
			},
			Right: &ast.Binary{
				Op:    "=",
				Left:  &ast.ColumnRef{Name: "number"},
				Right: &ast.BindRef{Name: "userId"},
			},
		},
	}

	out := generate(t, compile(t, "findPlayer", stmt))

	// user_id and userId spell the same Go identifier; the later one gets
	// a numeric suffix instead of duplicating it in the signature.
	assert.Contains(t, out, "func (q *Queries) FindPlayer(userId int64, userId2 *int64) *typedsqlgo.Query[string] {")
	assert.NotContains(t, out, "userId int64, userId *int64")

	// Mapper arguments fold the same way.
	stmt = &ast.SelectStatement{
		Items: []ast.SelectItem{
			{Expr: &ast.ColumnRef{Name: "id"}, Alias: "user_id"},
			{Expr: &ast.ColumnRef{Name: "id"}, Alias: "userId"},
		},
		From: &ast.TableRef{Table: "players"},
	}

	out = generate(t, compile(t, "idPair", stmt))
	assert.Contains(t, out, "mapper func(userId int64, userId2 int64) T)")
}

func TestGenerateZeroParameterQuery(t *testing.T) {
	stmt := &ast.SelectStatement{
		Items: []ast.SelectItem{{Star: true}},
		From:  &ast.TableRef{Table: "players"},
	}

	out := generate(t, compile(t, "allPlayers", stmt))

	// No identity arguments trail the decode function.
	assert.Contains(t, out, "func (q *Queries) AllPlayers() *typedsqlgo.Query[AllPlayersRow] {")
	assert.Contains(t, out, "\t\t},\n\t)\n}")
}

func TestGenerateListExpansion(t *testing.T) {
	stmt := &ast.SelectStatement{
		Items: []ast.SelectItem{{Expr: &ast.ColumnRef{Name: "name"}}},
		From:  &ast.TableRef{Table: "players"},
		Where: &ast.Binary{
			Op: "AND",
			Left: &ast.In{
				Operand: &ast.ColumnRef{Name: "number"},
				Bind:    &ast.BindRef{Name: "good"},
			},
			Right: &ast.Unary{
				Op: "NOT",
				Operand: &ast.In{
					Operand: &ast.ColumnRef{Name: "number"},
					Bind:    &ast.BindRef{Name: "bad"},
				},
			},
		},
	}

	out := generate(t, compile(t, "filterPlayers", stmt))

	// List parameters arrive as slices.
	assert.Contains(t, out, "good []*int64, bad []*int64")

	// The statement text is assembled at runtime: both declared sites stay
	// reserved, runs are allocated past them and shifted by earlier sizes.
	assert.Contains(t, out, "\"strings\"")
	assert.Contains(t, out, "var sb strings.Builder")
	assert.Contains(t, out, "ord := 3")
	assert.Contains(t, out, `typedsqlgo.PlaceholderGroup("?", ord, len(good))`)
	assert.Contains(t, out, "ord += len(good)")
	assert.Contains(t, out, `typedsqlgo.PlaceholderGroup("?", ord, len(bad))`)

	// Binds walk each collection with the same ordinal stream.
	assert.Contains(t, out, "for _, v := range good {")
	assert.Contains(t, out, "for _, v := range bad {")
	assert.Contains(t, out, "ord++")
}

func TestGenerateAdapterColumn(t *testing.T) {
	stmt := &ast.SelectStatement{
		Items: []ast.SelectItem{
			{Expr: &ast.ColumnRef{Name: "id"}},
			{Expr: &ast.ColumnRef{Name: "joined_at"}},
		},
		From: &ast.TableRef{Table: "players"},
		Where: &ast.Binary{
			Op:    ">",
			Left:  &ast.ColumnRef{Name: "joined_at"},
			Right: &ast.BindRef{Name: "after"},
		},
	}

	out := generate(t, compile(t, "playersJoinedAfter", stmt))

	// The adapter is injected through the Queries container and routed on
	// both the bind and decode sides.
	assert.Contains(t, out, "playersJoinedAtAdapter typedsqlgo.Adapter[time.Time]")
	assert.Contains(t, out, "func New(playersJoinedAtAdapter typedsqlgo.Adapter[time.Time]) *Queries {")
	assert.Contains(t, out, "q.playersJoinedAtAdapter.Encode(after)")
	assert.Contains(t, out, "typedsqlgo.BindRaw(stmt,")
	assert.Contains(t, out, "q.playersJoinedAtAdapter.Decode(")
	assert.Contains(t, out, "\"time\"")
}

func TestGenerateAdHocValues(t *testing.T) {
	stmt := &ast.ValuesStatement{Rows: [][]ast.Expr{
		{&ast.BindRef{Name: "first"}, &ast.StringLiteral{Value: "a"}},
		{&ast.BindRef{Name: "second"}, &ast.StringLiteral{Value: "b"}},
	}}

	out := generate(t, compile(t, "pairs", stmt))

	// Folded shapes have no named row type or default accessor.
	assert.NotContains(t, out, "PairsRow")
	assert.NotContains(t, out, "func (q *Queries) Pairs(")
	assert.Contains(t, out, "func PairsMapper[T any](q *Queries, first *string, second *string, mapper func(column1 *string, column2 string) T) *typedsqlgo.Query[T] {")
}

func TestGeneratePostgresPlaceholders(t *testing.T) {
	var sb strings.Builder

	err := New(WithDialect(typedsql.DialectPostgres), WithPackageName("db")).
		Generate(&sb, []*intermediate.NamedQuery{compile(t, "playersByNumber", selectByNumber())})
	assert.NoError(t, err)

	assert.Contains(t, sb.String(), "package db")
	assert.Contains(t, sb.String(), `"SELECT id, name, number FROM players WHERE number = $1"`)
}

func TestGeneratePostgresListExpansion(t *testing.T) {
	stmt := &ast.SelectStatement{
		Items: []ast.SelectItem{{Expr: &ast.ColumnRef{Name: "name"}}},
		From:  &ast.TableRef{Table: "players"},
		Where: &ast.Binary{
			Op: "AND",
			Left: &ast.Binary{
				Op:    "=",
				Left:  &ast.ColumnRef{Name: "name"},
				Right: &ast.BindRef{Name: "name"},
			},
			Right: &ast.In{
				Operand: &ast.ColumnRef{Name: "number"},
				Bind:    &ast.BindRef{Name: "nums"},
			},
		},
	}

	var sb strings.Builder

	err := New(WithDialect(typedsql.DialectPostgres)).
		Generate(&sb, []*intermediate.NamedQuery{compile(t, "filterPlayers", stmt)})
	assert.NoError(t, err)

	// Expanded runs carry the same marker as the fixed sites.
	assert.Contains(t, sb.String(), "(name = $1) AND (number IN ")
	assert.Contains(t, sb.String(), `typedsqlgo.PlaceholderGroup("$", ord, len(nums))`)
	assert.NotContains(t, sb.String(), `PlaceholderGroup("?"`)
}

func TestGenerateDeterministic(t *testing.T) {
	queries := []*intermediate.NamedQuery{
		compile(t, "playersByNumber", selectByNumber()),
		compile(t, "allPlayers", &ast.SelectStatement{
			Items: []ast.SelectItem{{Star: true}},
			From:  &ast.TableRef{Table: "players"},
		}),
	}

	var first, second strings.Builder

	assert.NoError(t, New().Generate(&first, queries))
	assert.NoError(t, New().Generate(&second, queries))
	assert.Equal(t, first.String(), second.String())
}

func TestGenerateUnknownImport(t *testing.T) {
	registry, err := typedsql.NewRegistry([]typedsql.TableDefinition{
		{
			Name: "events",
			Columns: []typedsql.ColumnDefinition{
				{Name: "payload", Type: typedsql.TypeBlob, Adapter: &typedsql.AdapterRef{Table: "events", Column: "payload", GoType: "mypkg.Payload"}},
			},
		},
	})
	assert.NoError(t, err)

	stmt := &ast.SelectStatement{
		Items: []ast.SelectItem{{Expr: &ast.ColumnRef{Name: "payload"}}, {Expr: &ast.ColumnRef{Name: "payload"}}},
		From:  &ast.TableRef{Table: "events"},
	}

	query, err := intermediate.CompileQuery("eventPayloads", "queries.yaml", stmt, registry)
	assert.NoError(t, err)

	var sb strings.Builder

	err = New().Generate(&sb, []*intermediate.NamedQuery{query})
	assert.IsError(t, err, ErrUnknownImport)

	// A configured import path resolves it.
	err = New(WithImports(map[string]string{"mypkg": "example.com/app/mypkg"})).
		Generate(&sb, []*intermediate.NamedQuery{query})
	assert.NoError(t, err)
	assert.Contains(t, sb.String(), `"example.com/app/mypkg"`)
}
