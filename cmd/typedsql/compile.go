package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/intermediate"
)

// loadProject loads config, schema, and query documents, then compiles the
// whole query set.
func loadProject(ctx *Context) (*typedsql.Config, intermediate.Result, error) {
	config, err := typedsql.LoadConfig(ctx.Config)
	if err != nil {
		return nil, intermediate.Result{}, fmt.Errorf("failed to load config: %w", err)
	}

	registry, err := typedsql.LoadSchema(config.SchemaFile)
	if err != nil {
		return nil, intermediate.Result{}, fmt.Errorf("failed to load schema: %w", err)
	}

	var docs []intermediate.QueryDoc

	for _, file := range config.QueryFiles {
		loaded, err := intermediate.LoadQueries(file)
		if err != nil {
			return nil, intermediate.Result{}, err
		}

		docs = append(docs, loaded...)
	}

	if ctx.Verbose {
		color.Blue("Loaded %d tables, %d queries", len(registry.TableNames()), len(docs))
	}

	result := intermediate.Compile(registry, docs, intermediate.WithWorkers(config.Generation.Workers))

	return config, result, nil
}

// reportErrors prints every statement failure. Failing statements never
// block their siblings, so the caller still has the compiled queries.
func reportErrors(result intermediate.Result) {
	for _, compileErr := range result.Errors {
		color.Red("error: %s: %v", compileErr.Query, compileErr)
	}
}
