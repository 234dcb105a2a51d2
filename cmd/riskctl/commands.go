package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/riskboard/internal/catalog"
)

func newExportCommand(a *app) *cobra.Command {
	var output, sortCol string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the comparison table as CSV",
		Long:  "Writes every row of the comparison table, in the requested sort order, as CSV with every field quoted.",
		Args:  cobra.NoArgs,
		Example: `  # Export to the default file name
  riskctl export

  # Export sorted by the impact column to stdout
  riskctl export --sort 3 -o -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, v, err := a.view(cmd.Context(), "", "", sortCol)
			if err != nil {
				return userError(err)
			}

			if output == "-" {
				return userError(v.WriteCSV(cmd.OutOrStdout()))
			}
			if output == "" {
				output = a.cfg.Export.Filename
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := v.WriteCSV(f); err != nil {
				f.Close()
				return userError(err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows to %s\n", len(v.Rows), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (- for stdout, default EXPORT_FILENAME)")
	cmd.Flags().StringVar(&sortCol, "sort", "", "Zero-based column index to sort by")
	return cmd
}

func newStatsCommand(a *app) *cobra.Command {
	var filter, query string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show row counts overall and per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, v, err := a.view(cmd.Context(), filter, query, "")
			if err != nil {
				return userError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, v.Stats.ResultsLabel())
			for _, key := range snap.Catalog.CategoryKeys() {
				fmt.Fprintf(out, "  %-20s %d\n", snap.Catalog.Label(key), v.Stats.PerCategory[key])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Category to count (default all)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search term")
	return cmd
}

func newSearchCommand(a *app) *cobra.Command {
	var filter, sortCol string

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Print rows containing QUERY with matches highlighted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, v, err := a.view(cmd.Context(), filter, args[0], sortCol)
			if err != nil {
				return userError(err)
			}
			printView(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Restrict to one category")
	cmd.Flags().StringVar(&sortCol, "sort", "", "Zero-based column index to sort by")
	return cmd
}

func newSortCommand(a *app) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "sort COLUMN",
		Short: "Print the table sorted ascending by a zero-based column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("column must be a number: %q", args[0])
			}
			_, v, err := a.view(cmd.Context(), filter, "", args[0])
			if err != nil {
				return userError(err)
			}
			printView(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Restrict to one category")
	return cmd
}

func newSeedCommand(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy the configured catalogue into a SQLite database",
		Args:  cobra.NoArgs,
		Example: `  # Seed from the built-in catalogue, then serve from SQLite
  riskctl seed --sqlite risks.db
  CATALOG_SOURCE=sqlite:risks.db riskctl stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, _, closeSource, err := a.open(ctx)
			if err != nil {
				return userError(err)
			}
			defer closeSource()
			snap, err := b.Current()
			if err != nil {
				return userError(err)
			}

			dst, err := catalog.OpenSQLite(ctx, path, snap.Catalog)
			if err != nil {
				return userError(err)
			}
			defer dst.Close()
			if err := dst.Seed(ctx, snap.Catalog); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows into %s\n", snap.Store.Len(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "sqlite", "", "SQLite database file")
	cmd.MarkFlagRequired("sqlite")
	return cmd
}
