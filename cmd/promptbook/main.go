package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

var CLI struct {
	Serve         ServeCmd         `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate       MigrateCmd       `cmd:"" help:"Create or update the database schema."`
	SeedPrompts   SeedPromptsCmd   `cmd:"" help:"Load the prompt catalog into the database."`
	SendReminders SendRemindersCmd `cmd:"" help:"Send this week's reminder emails once."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("promptbook"),
		kong.Description("Weekly writing prompts, one entry per week for a year."),
		kong.UsageOnError(),
	)

	app, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
