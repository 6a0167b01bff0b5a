package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/typedsql/typedsql"
)

// CheckCmd represents the check command
type CheckCmd struct{}

// Run executes the check command
func (cmd *CheckCmd) Run(ctx *Context) error {
	config, result, err := loadProject(ctx)
	if err != nil {
		return err
	}

	dialect := typedsql.Dialect(config.Dialect)

	for _, q := range result.Queries {
		if q.Plan.HasList() {
			color.Green("ok: %s (%d parameters, %d columns, runtime-expanded SQL)", q.Name, len(q.Plan.Parameters), len(q.Shape.Columns))
		} else {
			color.Green("ok: %s (%d parameters, %d columns)", q.Name, len(q.Plan.Parameters), len(q.Shape.Columns))

			if ctx.Verbose {
				fmt.Println("   " + q.StaticSQL(dialect))
			}
		}
	}

	reportErrors(result)

	if len(result.Errors) > 0 {
		return fmt.Errorf("%w: %d of %d statements failed", ErrCompileFailed, len(result.Errors), len(result.Errors)+len(result.Queries))
	}

	return nil
}
