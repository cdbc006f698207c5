package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	router "github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-inkhub/pkg/config"
	"github.com/goliatone/go-inkhub/pkg/inkhub"
)

type cli struct {
	Config string `short:"c" type:"path" help:"Path to inkhub.yaml (defaults to ./inkhub.yaml when present)."`
	Listen string `help:"Override the listen address."`
}

func main() {
	var args cli
	ctx := kong.Parse(&args,
		kong.Description("INKHUB admin panel server."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(args.Run())
}

func (c *cli) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Listen != "" {
		cfg.Listen = c.Listen
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := inkhub.Bootstrap(ctx, cfg, inkhub.BootstrapOptions{Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close store", "error", err)
		}
	}()

	adapter := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		return fiber.New(fiber.Config{
			AppName:               "inkhub",
			DisableStartupMessage: true,
			ReadTimeout:           15 * time.Second,
			WriteTimeout:          30 * time.Second,
		})
	})
	server := adapter.WrappedRouter()
	server.Use(recover.New())
	if cfg.Metrics {
		server.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
	if resources := app.Service.Resources(); len(resources) > 0 {
		landing := fmt.Sprintf("%s/%s", cfg.BasePath, resources[0].Code)
		server.Get("/", func(c *fiber.Ctx) error {
			return c.Redirect(landing, fiber.StatusFound)
		})
	}

	routes := adapter.Router()
	routes.Get("/healthz", router.WrapHandler(func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))
	if err := inkhub.Mount(routes, app); err != nil {
		return fmt.Errorf("inkhub: register routes: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("inkhub listening", "addr", cfg.Listen, "base_path", cfg.BasePath, "store", cfg.Store.Driver)
		errCh <- adapter.Serve(cfg.Listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := adapter.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("inkhub: shutdown: %w", err)
	}
	logger.Info("inkhub stopped")
	return nil
}
