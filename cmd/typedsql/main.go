package main

import (
	"github.com/alecthomas/kong"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
}

var cli struct {
	Config  string `help:"Configuration file path" default:"typedsql.yaml" short:"c"`
	Verbose bool   `help:"Verbose output" short:"v"`

	Generate GenerateCmd `cmd:"" help:"Compile queries and write Go accessor code"`
	Check    CheckCmd    `cmd:"" help:"Compile queries and report diagnostics without writing output"`
	Query    QueryCmd    `cmd:"" help:"Run one compiled query against a SQLite database"`
	Init     InitCmd     `cmd:"" help:"Scaffold a typedsql project"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("typedsql"),
		kong.Description("Compile declarative SQL statement definitions into statically typed Go data-access code"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&Context{Config: cli.Config, Verbose: cli.Verbose})
	ctx.FatalIfErrorf(err)
}
