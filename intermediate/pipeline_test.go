package intermediate

import (
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/ast"
	"github.com/typedsql/typedsql/typeinference"
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
			},
		},
	})
	assert.NoError(t, err)

	return registry
}

func selectAllDoc(name string) QueryDoc {
	return QueryDoc{
		Name:   name,
		Source: name + ".yaml",
		Statement: ast.StatementDoc{
			Kind:  "select",
			Items: []ast.ItemDoc{{Star: true}},
			From:  &ast.TableDoc{Table: "players"},
		},
	}
}

func badColumnDoc(name string) QueryDoc {
	return QueryDoc{
		Name:   name,
		Source: name + ".yaml",
		Statement: ast.StatementDoc{
			Kind: "select",
			Items: []ast.ItemDoc{
				{Expr: &ast.ExprDoc{Kind: "column", Name: "missing"}},
			},
			From: &ast.TableDoc{Table: "players"},
		},
	}
}

func TestCompileQuery(t *testing.T) {
	stmt := &ast.SelectStatement{
		Items: []ast.SelectItem{{Star: true}},
		From:  &ast.TableRef{Table: "players"},
		Where: &ast.Binary{Op: "=", Left: &ast.ColumnRef{Name: "id"}, Right: &ast.BindRef{Name: "id"}},
	}

	query, err := CompileQuery("playerByID", "players.yaml", stmt, testRegistry(t))
	assert.NoError(t, err)

	assert.Equal(t, "playerByID", query.Name)
	assert.Equal(t, typeinference.ShapeRow, query.Shape.Kind)
	assert.True(t, query.HasParameters())
	assert.Equal(t, "SELECT * FROM players WHERE id = ?1", query.StaticSQL(typedsql.DialectSQLite))
}

func TestCompileQueryNamesFailures(t *testing.T) {
	stmt := &ast.SelectStatement{
		Items: []ast.SelectItem{{Expr: &ast.ColumnRef{Name: "missing"}}},
		From:  &ast.TableRef{Table: "players"},
	}

	_, err := CompileQuery("broken", "players.yaml", stmt, testRegistry(t))
	assert.IsError(t, err, typedsql.ErrColumnNotFound)
	assert.Contains(t, err.Error(), `query "broken"`)
}

func TestCompilePreservesInputOrder(t *testing.T) {
	docs := make([]QueryDoc, 20)
	for i := range docs {
		docs[i] = selectAllDoc(fmt.Sprintf("query%02d", i))
	}

	result := Compile(testRegistry(t), docs, WithWorkers(4))
	assert.Equal(t, 0, len(result.Errors))
	assert.Equal(t, len(docs), len(result.Queries))

	for i, q := range result.Queries {
		assert.Equal(t, docs[i].Name, q.Name)
	}
}

// A failing statement never blocks its siblings.
func TestCompileIsolatesFailures(t *testing.T) {
	docs := []QueryDoc{
		selectAllDoc("first"),
		badColumnDoc("broken"),
		selectAllDoc("last"),
	}

	result := Compile(testRegistry(t), docs)

	assert.Equal(t, 2, len(result.Queries))
	assert.Equal(t, "first", result.Queries[0].Name)
	assert.Equal(t, "last", result.Queries[1].Name)

	assert.Equal(t, 1, len(result.Errors))
	assert.Equal(t, "broken", result.Errors[0].Query)
	assert.Equal(t, "broken.yaml", result.Errors[0].Source)
	assert.IsError(t, result.Errors[0], typedsql.ErrColumnNotFound)
}

func TestCompileRejectsDuplicateNames(t *testing.T) {
	docs := []QueryDoc{
		selectAllDoc("players"),
		selectAllDoc("players"),
	}

	result := Compile(testRegistry(t), docs)

	assert.Equal(t, 1, len(result.Queries))
	assert.Equal(t, 1, len(result.Errors))
	assert.IsError(t, result.Errors[0], typedsql.ErrDuplicateQueryName)
}

func TestCompileEmptySet(t *testing.T) {
	result := Compile(testRegistry(t), nil)
	assert.Equal(t, 0, len(result.Queries))
	assert.Equal(t, 0, len(result.Errors))
}

func TestParseQueries(t *testing.T) {
	data := []byte(`queries:
  - name: allPlayers
    statement:
      kind: select
      items:
        - star: true
      from:
        table: players
`)

	docs, err := ParseQueries("queries.yaml", data)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(docs))
	assert.Equal(t, "allPlayers", docs[0].Name)
	assert.Equal(t, "queries.yaml", docs[0].Source)
}

func TestParseQueriesRejectsUnknownFields(t *testing.T) {
	data := []byte(`queries:
  - name: allPlayers
    sql: SELECT 1
`)

	_, err := ParseQueries("queries.yaml", data)
	assert.Error(t, err)
}
