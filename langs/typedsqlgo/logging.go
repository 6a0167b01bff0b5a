package typedsqlgo

import (
	"context"
	"time"
)

// LoggerFunc receives one QueryLogEntry per executed query.
type LoggerFunc func(context.Context, QueryLogEntry)

// QueryLogEntry describes a single query execution.
type QueryLogEntry struct {
	Name     string
	SQL      string
	Args     []any
	Duration time.Duration
	Err      error
}

type loggerKey struct{}

// WithLogger attaches a query logger to the context; every Execute on that
// context reports through it.
func WithLogger(ctx context.Context, logger LoggerFunc) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func logQuery(ctx context.Context, name, sqlText string, args []any, duration time.Duration, err error) {
	logger, ok := ctx.Value(loggerKey{}).(LoggerFunc)
	if !ok || logger == nil {
		return
	}

	entry := QueryLogEntry{
		Name:     name,
		SQL:      sqlText,
		Args:     append([]any(nil), args...),
		Duration: duration,
		Err:      err,
	}

	logger(ctx, entry)
}
