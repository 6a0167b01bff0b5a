package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/typedsql/typedsql"
	"github.com/typedsql/typedsql/langs/gogen"
)

// ErrCompileFailed indicates at least one statement failed to compile.
var ErrCompileFailed = errors.New("compilation finished with errors")

// GenerateCmd represents the generate command
type GenerateCmd struct {
	Package string            `help:"Override the generated package name"`
	Output  string            `help:"Override the output directory" short:"o"`
	Imports map[string]string `help:"Import paths for adapter types (selector=path)"`
}

// Run executes the generate command
func (cmd *GenerateCmd) Run(ctx *Context) error {
	config, result, err := loadProject(ctx)
	if err != nil {
		return err
	}

	reportErrors(result)

	pkg := config.Generation.Package
	if cmd.Package != "" {
		pkg = cmd.Package
	}

	output := config.Generation.Output
	if cmd.Output != "" {
		output = cmd.Output
	}

	if len(result.Queries) > 0 {
		generator := gogen.New(
			gogen.WithPackageName(pkg),
			gogen.WithDialect(typedsql.Dialect(config.Dialect)),
			gogen.WithImports(cmd.Imports),
		)

		var buf strings.Builder

		if err := generator.Generate(&buf, result.Queries); err != nil {
			return fmt.Errorf("failed to generate code: %w", err)
		}

		if err := os.MkdirAll(output, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		path := filepath.Join(output, "queries_gen.go")
		if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		color.Green("Generated %d queries into %s", len(result.Queries), path)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("%w: %d of %d statements failed", ErrCompileFailed, len(result.Errors), len(result.Errors)+len(result.Queries))
	}

	return nil
}
