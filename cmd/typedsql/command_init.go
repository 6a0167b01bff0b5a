package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
)

// ErrProjectExists indicates init would overwrite an existing project file.
var ErrProjectExists = errors.New("project file already exists")

// InitCmd represents the init command
type InitCmd struct {
	Dir   string `arg:"" optional:"" default:"." help:"Directory to scaffold into"`
	Force bool   `help:"Overwrite existing files"`
}

const initConfig = `dialect: sqlite
schema_file: schema.yaml
query_files:
  - queries.yaml
generation:
  package: db
  output: ./db
`

const initSchema = `tables:
  - name: users
    columns:
      - name: id
        type: INTEGER
        primary_key: true
      - name: name
        type: TEXT
      - name: email
        type: TEXT
        nullable: true
`

const initQueries = `queries:
  - name: userByID
    statement:
      kind: select
      items:
        - star: true
      from:
        table: users
      where:
        kind: binary
        op: "="
        left:
          kind: column
          name: id
        right:
          kind: bind
          name: id
`

// Run executes the init command
func (cmd *InitCmd) Run(ctx *Context) error {
	files := []struct {
		name    string
		content string
	}{
		{"typedsql.yaml", initConfig},
		{"schema.yaml", initSchema},
		{"queries.yaml", initQueries},
	}

	if err := os.MkdirAll(cmd.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for _, file := range files {
		path := filepath.Join(cmd.Dir, file.name)

		if !cmd.Force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%w: %s", ErrProjectExists, path)
			}
		}

		if err := os.WriteFile(path, []byte(file.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.name, err)
		}

		if ctx.Verbose {
			color.Blue("wrote %s", path)
		}
	}

	color.Green("Initialized typedsql project in %s", cmd.Dir)

	return nil
}
