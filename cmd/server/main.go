package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/riskboard/internal/board"
	"github.com/JonMunkholm/riskboard/internal/catalog"
	"github.com/JonMunkholm/riskboard/internal/config"
	"github.com/JonMunkholm/riskboard/internal/logging"
	"github.com/JonMunkholm/riskboard/internal/metrics"
	"github.com/JonMunkholm/riskboard/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	src, closeSource, err := catalog.Open(ctx, board.SourceOptions(cfg))
	if err != nil {
		return err
	}
	defer closeSource()

	m := metrics.New()
	server := web.NewServer(cfg, board.New(src.Name()), src, m)

	// The first load must succeed; later reloads keep the last good catalogue.
	if err := server.Reload(ctx); err != nil {
		return err
	}
	slog.Info("catalog loaded", "source", config.MaskSource(src.Name()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	if cfg.Catalog.Watch {
		w, err := catalog.NewWatcher(src, cfg.Catalog.ReloadDebounce,
			func(c *catalog.Catalog) {
				if err := server.Publish(c); err != nil {
					slog.Error("reloaded catalog rejected", "error", err)
				}
			},
			func(error) { m.CatalogFailed() },
		)
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
