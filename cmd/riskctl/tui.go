package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/riskboard/internal/catalog"
	"github.com/JonMunkholm/riskboard/internal/logging"
	"github.com/JonMunkholm/riskboard/internal/tui"
)

func newTUICommand(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the risk catalogue in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// The UI owns the terminal, so logs go to a file.
			closeLog, err := logging.SetupFile(a.cfg.Logging.File, a.cfg.Logging.Level, a.cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer closeLog()

			b, src, closeSource, err := a.open(ctx)
			if err != nil {
				return userError(err)
			}
			defer closeSource()

			m, err := tui.New(tui.Options{
				Board:      b,
				Debounce:   a.cfg.Search.Debounce,
				MaxTerm:    a.cfg.Search.MaxTermLength,
				ExportPath: a.cfg.Export.Filename,
			})
			if err != nil {
				return userError(err)
			}
			p, run := tui.Run(m)

			if watch || a.cfg.Catalog.Watch {
				w, err := catalog.NewWatcher(src, a.cfg.Catalog.ReloadDebounce, func(c *catalog.Catalog) {
					if _, err := b.Set(c); err != nil {
						slog.Error("reloaded catalog rejected", "error", err)
						return
					}
					p.Send(tui.ReloadedMsg{})
				}, func(err error) {
					slog.Warn("catalog reload failed, keeping previous", "error", err)
				})
				if err != nil {
					return err
				}
				go func() {
					if err := w.Run(ctx); err != nil {
						slog.Error("catalog watcher stopped", "error", err)
					}
				}()
			}

			return run()
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload file catalogues when they change")
	return cmd
}
