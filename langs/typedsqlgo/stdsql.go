package typedsqlgo

import (
	"context"
	"database/sql"
	"fmt"
)

// DBExecutor is the subset of database/sql handles the bridge accepts:
// *sql.DB, *sql.Conn, and *sql.Tx all satisfy it.
type DBExecutor interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// DB bridges the ordinal bind interfaces onto database/sql.
type DB struct {
	executor DBExecutor
}

// WrapDB wraps a database/sql handle as a Preparer.
func WrapDB(executor DBExecutor) *DB {
	return &DB{executor: executor}
}

func (d *DB) Prepare(ctx context.Context, sqlText string) (Statement, error) {
	stmt, err := d.executor.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}

	return &stdStatement{stmt: stmt, binds: map[int]any{}}, nil
}

// stdStatement collects ordinal binds and materializes them as positional
// arguments on execution. Ordinals a list expansion skipped stay nil, which
// is fine: numbered placeholders never reference them.
type stdStatement struct {
	stmt  *sql.Stmt
	binds map[int]any
	max   int
}

func (s *stdStatement) set(ordinal int, v any) error {
	s.binds[ordinal] = v
	if ordinal > s.max {
		s.max = ordinal
	}

	return nil
}

func (s *stdStatement) BindInt64(ordinal int, v int64) error     { return s.set(ordinal, v) }
func (s *stdStatement) BindFloat64(ordinal int, v float64) error { return s.set(ordinal, v) }
func (s *stdStatement) BindText(ordinal int, v string) error     { return s.set(ordinal, v) }
func (s *stdStatement) BindBytes(ordinal int, v []byte) error    { return s.set(ordinal, v) }
func (s *stdStatement) BindNull(ordinal int) error               { return s.set(ordinal, nil) }

func (s *stdStatement) Query(ctx context.Context) (Cursor, error) {
	args := make([]any, s.max)
	for ordinal, v := range s.binds {
		args[ordinal-1] = v
	}

	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}

	return &stdCursor{rows: rows}, nil
}

func (s *stdStatement) Close() error {
	return s.stmt.Close()
}

type stdCursor struct {
	rows    *sql.Rows
	current []any
	width   int
}

func (c *stdCursor) Next() (bool, error) {
	if !c.rows.Next() {
		return false, c.rows.Err()
	}

	if c.width == 0 {
		cols, err := c.rows.Columns()
		if err != nil {
			return false, err
		}

		c.width = len(cols)
	}

	c.current = make([]any, c.width)

	scan := make([]any, c.width)
	for i := range scan {
		scan[i] = &c.current[i]
	}

	if err := c.rows.Scan(scan...); err != nil {
		return false, err
	}

	return true, nil
}

func (c *stdCursor) Int64(col int) (*int64, error) {
	switch v := c.current[col].(type) {
	case nil:
		return nil, nil
	case int64:
		return &v, nil
	case float64:
		n := int64(v)
		return &n, nil
	default:
		return nil, fmt.Errorf("column %d: expected INTEGER, got %T", col, v)
	}
}

func (c *stdCursor) Float64(col int) (*float64, error) {
	switch v := c.current[col].(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case int64:
		f := float64(v)
		return &f, nil
	default:
		return nil, fmt.Errorf("column %d: expected REAL, got %T", col, v)
	}
}

func (c *stdCursor) Text(col int) (*string, error) {
	switch v := c.current[col].(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	case []byte:
		s := string(v)
		return &s, nil
	default:
		return nil, fmt.Errorf("column %d: expected TEXT, got %T", col, v)
	}
}

func (c *stdCursor) Bytes(col int) ([]byte, error) {
	switch v := c.current[col].(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("column %d: expected BLOB, got %T", col, v)
	}
}

func (c *stdCursor) Close() error {
	return c.rows.Close()
}
