package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/teamcal-dev/teamcal/internal/cli"
	"github.com/teamcal-dev/teamcal/internal/config"
	"github.com/teamcal-dev/teamcal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"~/.config/teamcal/config.yaml"`
	Verbose bool   `help:"Enable debug logging." short:"v"`

	Expand      cli.ExpandCmd      `cmd:"" help:"Expand a recurrence rule over a date window."`
	Check       cli.CheckCmd       `cmd:"" help:"Check a proposed event for resource conflicts."`
	Materialize cli.MaterializeCmd `cmd:"" help:"Persist occurrences of stored recurring rules."`
	Import      cli.ImportCmd      `cmd:"" help:"Import events from CSV."`
	Export      cli.ExportCmd      `cmd:"" help:"Export a calendar window to CSV."`
	Ics         cli.IcsCmd         `cmd:"" help:"Export recurring templates as iCalendar."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("teamcal"),
		kong.Description("Team calendar recurrence and conflict tooling"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	conf, err := config.Load(CLI.Config)
	if err != nil {
		logger.Error("failed to load config", "path", CLI.Config, "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(conf.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "path", conf.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Config: conf,
		Store:  store,
		Logger: logger,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
