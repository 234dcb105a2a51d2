package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/riskboard/internal/board"
	"github.com/JonMunkholm/riskboard/internal/catalog"
	"github.com/JonMunkholm/riskboard/internal/config"
	"github.com/JonMunkholm/riskboard/internal/core"
	"github.com/JonMunkholm/riskboard/internal/logging"
)

// app is the state shared by subcommands once the root pre-run has loaded
// configuration.
type app struct {
	catalogFlag string
	logLevel    string
	envFile     string

	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "riskctl",
		Short:         "Browse and export the financial and non-financial risk catalogue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&a.catalogFlag, "catalog", "", "Catalogue source (overrides CATALOG_SOURCE): embedded:, file:PATH, csv:PATH, postgres://..., sqlite:PATH")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file to load when present")

	cmd.AddCommand(
		newExportCommand(a),
		newStatsCommand(a),
		newSearchCommand(a),
		newSortCommand(a),
		newSeedCommand(a),
		newTUICommand(a),
	)
	return cmd
}

// setup loads the env file, configuration and stderr logging.
func (a *app) setup(stderr io.Writer) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	overrides := map[string]string{}
	if a.catalogFlag != "" {
		overrides["CATALOG_SOURCE"] = a.catalogFlag
	}
	if a.logLevel != "" {
		overrides["LOG_LEVEL"] = a.logLevel
	}

	cfg, err := config.LoadFrom(config.WithOverrides(os.LookupEnv, overrides))
	if err != nil {
		return err
	}
	a.cfg = cfg
	logging.SetupWriter(stderr, cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

// open resolves the configured source and publishes its catalogue on a
// new board. The returned function releases the source.
func (a *app) open(ctx context.Context) (*board.Board, catalog.Source, func(), error) {
	src, closeSource, err := catalog.Open(ctx, board.SourceOptions(a.cfg))
	if err != nil {
		return nil, nil, nil, err
	}
	c, err := src.Load(ctx)
	if err != nil {
		closeSource()
		return nil, nil, nil, err
	}
	b := board.New(src.Name())
	if _, err := b.Set(c); err != nil {
		closeSource()
		return nil, nil, nil, err
	}
	return b, src, closeSource, nil
}

// view opens the catalogue and applies one query to it.
func (a *app) view(ctx context.Context, filter, search, sort string) (*board.Snapshot, *core.View, error) {
	q, err := board.ParseQuery(filter, search, sort, a.cfg.Search.MaxTermLength)
	if err != nil {
		return nil, nil, err
	}
	b, _, closeSource, err := a.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer closeSource()
	return b.Apply(q)
}

// userError adds the support code to errors shown on the command line.
func userError(err error) error {
	if err == nil {
		return nil
	}
	msg := core.MapError(err)
	return fmt.Errorf("%w [%s]", err, msg.Code)
}
