package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	_ "github.com/mattn/go-sqlite3"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/binder"
	"github.com/typedsql/typedsql/intermediate"
)

var (
	// ErrQueryNotFound indicates the requested query name is not defined.
	ErrQueryNotFound = errors.New("query not found")
	// ErrParameterValueMissing indicates a required parameter got no value.
	ErrParameterValueMissing = errors.New("missing parameter value")
)

// QueryCmd represents the query command: ad hoc execution of one compiled
// query against a SQLite file. List parameters take comma-separated values.
type QueryCmd struct {
	Name   string            `arg:"" help:"Query name to run"`
	DB     string            `help:"SQLite database file" short:"d" required:""`
	Params map[string]string `help:"Parameter values (name=value)" short:"p"`
}

// Run executes the query command
func (cmd *QueryCmd) Run(ctx *Context) error {
	_, result, err := loadProject(ctx)
	if err != nil {
		return err
	}

	reportErrors(result)

	var query *intermediate.NamedQuery

	for _, q := range result.Queries {
		if q.Name == cmd.Name {
			query = q
			break
		}
	}

	if query == nil {
		return fmt.Errorf("%w: %q", ErrQueryNotFound, cmd.Name)
	}

	sqlText, args, err := renderInvocation(query, cmd.Params)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		color.Blue("SQL: %s", sqlText)
	}

	db, err := sql.Open("sqlite3", cmd.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return printRows(context.Background(), db, sqlText, args)
}

// renderInvocation renders the final SQL text and the positional argument
// vector for one invocation, expanding list parameters from their supplied
// collection sizes.
func renderInvocation(query *intermediate.NamedQuery, params map[string]string) (string, []any, error) {
	plan := query.Plan

	values := make([][]string, len(plan.Parameters))

	for i, p := range plan.Parameters {
		raw, ok := params[p.Name]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrParameterValueMissing, p.Name)
		}

		if p.Arity == binder.List {
			if raw == "" {
				values[i] = nil
			} else {
				values[i] = strings.Split(raw, ",")
			}
		} else {
			values[i] = []string{raw}
		}
	}

	sizes := make([]int, len(plan.Sites))
	for si, site := range plan.Sites {
		sizes[si] = len(values[site.Param])
	}

	ordinals := binder.Ordinals(plan.ListSites(), sizes)

	var (
		sb   strings.Builder
		args []any
		max  int
	)

	byOrdinal := map[int]any{}

	for _, seg := range plan.Segments {
		if seg.Site < 0 {
			sb.WriteString(seg.Text)
			continue
		}

		site := plan.Sites[seg.Site]
		param := plan.Parameters[site.Param]
		run := ordinals[seg.Site]

		if site.List {
			sb.WriteString("(")
		}

		for j, ordinal := range run {
			if j > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(typedsql.DialectSQLite.Placeholder(ordinal))

			value, err := parseValue(param.Type, values[site.Param][j])
			if err != nil {
				return "", nil, fmt.Errorf("parameter %q: %w", param.Name, err)
			}

			byOrdinal[ordinal] = value

			if ordinal > max {
				max = ordinal
			}
		}

		if site.List {
			sb.WriteString(")")
		}
	}

	args = make([]any, max)
	for ordinal, value := range byOrdinal {
		args[ordinal-1] = value
	}

	return sb.String(), args, nil
}

func parseValue(t typedsql.ResolvedType, raw string) (any, error) {
	switch t.Kind {
	case typedsql.TypeInteger:
		return strconv.ParseInt(raw, 10, 64)
	case typedsql.TypeReal:
		return strconv.ParseFloat(raw, 64)
	case typedsql.TypeBlob:
		return []byte(raw), nil
	default:
		return raw, nil
	}
}

func printRows(ctx context.Context, db *sql.DB, sqlText string, args []any) error {
	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	color.Cyan("%s", strings.Join(columns, " | "))

	count := 0

	for rows.Next() {
		cells := make([]any, len(columns))

		scan := make([]any, len(columns))
		for i := range scan {
			scan[i] = &cells[i]
		}

		if err := rows.Scan(scan...); err != nil {
			return err
		}

		rendered := make([]string, len(columns))
		for i, cell := range cells {
			if b, ok := cell.([]byte); ok {
				cell = string(b)
			}

			rendered[i] = fmt.Sprintf("%v", cell)
		}

		fmt.Println(strings.Join(rendered, " | "))

		count++
	}

	if err := rows.Err(); err != nil {
		return err
	}

	color.Green("%d rows", count)

	return nil
}
