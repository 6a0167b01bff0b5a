// Package typedsqlgo is the runtime support library generated accessors
// link against: the low-level driver abstraction, the generic query handle,
// and adapter plumbing. It contains no SQL analysis; everything here is
// driven by compiled code.
package typedsqlgo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoRows is returned by One when a query yields no row.
	ErrNoRows = errors.New("query returned no rows")
	// ErrTooManyRows is returned by One when a query yields more than one row.
	ErrTooManyRows = errors.New("query returned more than one row")
	// ErrUnexpectedNull is returned when a column declared non-nullable reads as NULL.
	ErrUnexpectedNull = errors.New("unexpected NULL in non-nullable column")
)

// Preparer prepares statements. Implemented by the database/sql bridge in
// this package or by any custom driver.
type Preparer interface {
	Prepare(ctx context.Context, sqlText string) (Statement, error)
}

// Statement is a prepared statement accepting typed binds by 1-based
// ordinal.
type Statement interface {
	BindInt64(ordinal int, v int64) error
	BindFloat64(ordinal int, v float64) error
	BindText(ordinal int, v string) error
	BindBytes(ordinal int, v []byte) error
	BindNull(ordinal int) error
	Query(ctx context.Context) (Cursor, error)
	Close() error
}

// Cursor reads result rows by positional column index. Getters return nil
// for SQL NULL.
type Cursor interface {
	Next() (bool, error)
	Int64(col int) (*int64, error)
	Float64(col int) (*float64, error)
	Text(col int) (*string, error)
	Bytes(col int) ([]byte, error)
	Close() error
}

// Query is the handle a generated accessor returns: the statement text (a
// function, because list expansion makes the text depend on runtime
// collection sizes), the bind procedure, the row decoder, and the bound
// arguments that identify this invocation.
type Query[T any] struct {
	name   string
	sql    func() string
	bind   func(Statement) error
	decode func(Cursor) (T, error)
	args   []any
}

// NewQuery builds a query handle. Generated code is the only intended
// caller. args carry the invocation's identity; a zero-parameter query
// passes none and stays a plain query value.
func NewQuery[T any](name string, sql func() string, bind func(Statement) error, decode func(Cursor) (T, error), args ...any) *Query[T] {
	return &Query[T]{name: name, sql: sql, bind: bind, decode: decode, args: args}
}

// Name returns the compiled query's function name.
func (q *Query[T]) Name() string { return q.name }

// SQL renders the statement text for this invocation.
func (q *Query[T]) SQL() string { return q.sql() }

// Args returns the bound argument values, in declaration order. Empty for
// zero-parameter queries.
func (q *Query[T]) Args() []any {
	out := make([]any, len(q.args))
	copy(out, q.args)

	return out
}

// Key is a stable identity for caching and invalidation: two invocations of
// the same query with equal arguments share a key.
func (q *Query[T]) Key() string {
	if len(q.args) == 0 {
		return q.name
	}

	var sb strings.Builder

	sb.WriteString(q.name)
	sb.WriteByte('(')

	for i, arg := range q.args {
		if i > 0 {
			sb.WriteByte(',')
		}

		fmt.Fprintf(&sb, "%v", arg)
	}

	sb.WriteByte(')')

	return sb.String()
}

// Execute runs the query and decodes every row.
func (q *Query[T]) Execute(ctx context.Context, db Preparer) ([]T, error) {
	start := time.Now()

	rows, err := q.execute(ctx, db)
	logQuery(ctx, q.name, q.sql(), q.args, time.Since(start), err)

	return rows, err
}

func (q *Query[T]) execute(ctx context.Context, db Preparer) ([]T, error) {
	stmt, err := db.Prepare(ctx, q.sql())
	if err != nil {
		return nil, fmt.Errorf("%s: prepare: %w", q.name, err)
	}
	defer stmt.Close()

	if err := q.bind(stmt); err != nil {
		return nil, fmt.Errorf("%s: bind: %w", q.name, err)
	}

	cursor, err := stmt.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", q.name, err)
	}
	defer cursor.Close()

	var out []T

	for {
		ok, err := cursor.Next()
		if err != nil {
			return nil, fmt.Errorf("%s: next: %w", q.name, err)
		}

		if !ok {
			return out, nil
		}

		row, err := q.decode(cursor)
		if err != nil {
			return nil, fmt.Errorf("%s: decode: %w", q.name, err)
		}

		out = append(out, row)
	}
}

// One runs the query and expects exactly one row.
func (q *Query[T]) One(ctx context.Context, db Preparer) (T, error) {
	var zero T

	rows, err := q.Execute(ctx, db)
	if err != nil {
		return zero, err
	}

	switch len(rows) {
	case 0:
		return zero, fmt.Errorf("%s: %w", q.name, ErrNoRows)
	case 1:
		return rows[0], nil
	default:
		return zero, fmt.Errorf("%s: %w", q.name, ErrTooManyRows)
	}
}

// PlaceholderGroup renders the parenthesized placeholder run of a list
// parameter: count fresh ordinals starting at start, prefixed with the
// dialect's marker ("(?3, ?4)" or "($3, $4)"). A zero-sized collection
// renders an empty group.
func PlaceholderGroup(marker string, start, count int) string {
	var sb strings.Builder

	sb.WriteByte('(')

	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(marker)
		sb.WriteString(strconv.Itoa(start + i))
	}

	sb.WriteByte(')')

	return sb.String()
}
