package typedsql

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func testTables() []TableDefinition {
	return []TableDefinition{
		{
			Name: "players",
			Columns: []ColumnDefinition{
				{Name: "id", Type: TypeInteger, IsPrimaryKey: true},
				{Name: "name", Type: TypeText},
				{Name: "number", Type: TypeInteger, Nullable: true},
			},
		},
		{
			Name: "teams",
			Columns: []ColumnDefinition{
				{Name: "id", Type: TypeInteger, IsPrimaryKey: true},
				{Name: "name", Type: TypeText},
			},
		},
	}
}

func TestRegistryLookup(t *testing.T) {
	registry, err := NewRegistry(testTables())
	assert.NoError(t, err)

	table, err := registry.LookupTable("players")
	assert.NoError(t, err)
	assert.Equal(t, "players", table.Name)
	assert.Equal(t, 3, len(table.Columns))

	col, err := registry.LookupColumn("players", "name")
	assert.NoError(t, err)
	assert.Equal(t, TypeText, col.Type)
	assert.Equal(t, "players", col.TableName)

	assert.Equal(t, []string{"players", "teams"}, registry.TableNames())
}

func TestRegistryLookupErrors(t *testing.T) {
	registry, err := NewRegistry(testTables())
	assert.NoError(t, err)

	_, err = registry.LookupTable("missing")
	assert.IsError(t, err, ErrTableNotFound)

	_, err = registry.LookupColumn("players", "missing")
	assert.IsError(t, err, ErrColumnNotFound)

	_, err = registry.LookupColumn("missing", "id")
	assert.IsError(t, err, ErrTableNotFound)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]TableDefinition{
		{Name: "players"},
		{Name: "players"},
	})
	assert.IsError(t, err, ErrDuplicateTable)

	_, err = NewRegistry([]TableDefinition{
		{
			Name: "players",
			Columns: []ColumnDefinition{
				{Name: "id", Type: TypeInteger},
				{Name: "id", Type: TypeText},
			},
		},
	})
	assert.IsError(t, err, ErrDuplicateColumn)
}

func TestIntegerPrimaryKeyNeverNullable(t *testing.T) {
	// A row without an explicit id still gets one assigned on insert, so
	// reading the column back can never observe NULL.
	col := ColumnDefinition{Name: "id", Type: TypeInteger, IsPrimaryKey: true, Nullable: true}
	assert.False(t, col.ResolvedType().Nullable)

	// Only INTEGER keys get the override.
	textKey := ColumnDefinition{Name: "code", Type: TypeText, IsPrimaryKey: true, Nullable: true}
	assert.True(t, textKey.ResolvedType().Nullable)
}

func TestResolvedTypeGoType(t *testing.T) {
	tests := []struct {
		name string
		typ  ResolvedType
		want string
	}{
		{"integer", ResolvedType{Kind: TypeInteger}, "int64"},
		{"nullable integer", ResolvedType{Kind: TypeInteger, Nullable: true}, "*int64"},
		{"real", ResolvedType{Kind: TypeReal}, "float64"},
		{"text", ResolvedType{Kind: TypeText}, "string"},
		{"blob", ResolvedType{Kind: TypeBlob}, "[]byte"},
		{"nullable blob stays a slice", ResolvedType{Kind: TypeBlob, Nullable: true}, "[]byte"},
		{"override", ResolvedType{Kind: TypeInteger, Override: "PlayerNumber"}, "PlayerNumber"},
		{"nullable override", ResolvedType{Kind: TypeInteger, Nullable: true, Override: "PlayerNumber"}, "*PlayerNumber"},
		{
			"adapter wins over override",
			ResolvedType{Kind: TypeText, Override: "string", Adapter: &AdapterRef{Table: "games", Column: "played_at", GoType: "time.Time"}},
			"time.Time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.GoType())
		})
	}
}

func TestResolvedTypeEqual(t *testing.T) {
	adapted := ResolvedType{Kind: TypeText, Adapter: &AdapterRef{Table: "games", Column: "played_at", GoType: "time.Time"}}

	assert.True(t, adapted.Equal(adapted))
	assert.False(t, adapted.Equal(ResolvedType{Kind: TypeText}))
	assert.False(t, ResolvedType{Kind: TypeText}.Equal(ResolvedType{Kind: TypeText, Nullable: true}))
	assert.False(t, ResolvedType{Kind: TypeText}.Equal(ResolvedType{Kind: TypeInteger}))
}

func TestAdapterRefName(t *testing.T) {
	ref := AdapterRef{Table: "games", Column: "played_at", GoType: "time.Time"}
	assert.Equal(t, "games.played_at", ref.Name())
}

func TestDialectPlaceholder(t *testing.T) {
	assert.Equal(t, "?1", DialectSQLite.Placeholder(1))
	assert.Equal(t, "?12", DialectSQLite.Placeholder(12))
	assert.Equal(t, "$3", DialectPostgres.Placeholder(3))

	assert.True(t, DialectSQLite.IsValid())
	assert.False(t, Dialect("oracle").IsValid())
}

func TestParseSchema(t *testing.T) {
	data := []byte(`tables:
  - name: games
    columns:
      - name: id
        type: INTEGER
        primary_key: true
      - name: played_at
        type: TEXT
        adapter:
          go_type: time.Time
      - name: score
        type: INTEGER
        nullable: true
        type_override: Score
`)

	registry, err := ParseSchema(data)
	assert.NoError(t, err)

	col, err := registry.LookupColumn("games", "played_at")
	assert.NoError(t, err)

	// Adapter declarations may omit the owning table and column.
	assert.Equal(t, "games.played_at", col.Adapter.Name())
	assert.Equal(t, "time.Time", col.Adapter.GoType)

	score, err := registry.LookupColumn("games", "score")
	assert.NoError(t, err)
	assert.Equal(t, "*Score", score.ResolvedType().GoType())
}

func TestParseSchemaUnknownType(t *testing.T) {
	data := []byte(`tables:
  - name: games
    columns:
      - name: id
        type: BIGSERIAL
`)

	_, err := ParseSchema(data)
	assert.IsError(t, err, ErrUnknownTypeKind)
}
