package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vaxreg/internal/platform/config"
	"vaxreg/internal/platform/httpserver"
	"vaxreg/internal/platform/logger"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing vaxreg",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"min_registration_age", cfg.MinAge,
		"registration_timezone", cfg.Timezone,
	)

	app, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close(log)

	srv := httpserver.New(cfg.Addr, app.router)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		return httpserver.Run(gctx, srv, 10*time.Second)
	})
	if app.redis != nil {
		g.Go(func() error {
			return app.redis.RunPoolStats(gctx, 15*time.Second)
		})
	}

	return g.Wait()
}
