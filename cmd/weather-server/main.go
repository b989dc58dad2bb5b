package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-assistant/internal/api/http"
	"github.com/i474232898/weather-assistant/internal/app"
	"github.com/i474232898/weather-assistant/internal/config"
	"github.com/i474232898/weather-assistant/internal/logging"
	"github.com/i474232898/weather-assistant/internal/mcpserver"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "weather-server",
	Short: "Serve weather tools over MCP (stdio) or HTTP",
	Long: "weather-server answers weather questions backed by OpenWeatherMap.\n" +
		"By default it speaks MCP over stdin/stdout; with --http it serves a JSON API instead.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolP("verbose", "v", false, "enable debug logging on stderr")
	rootCmd.Flags().Duration("provider-timeout", 0, "bound for each provider call (default 10s)")
	rootCmd.Flags().String("http", "", "serve the HTTP API on this address instead of MCP over stdio, e.g. :8080")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	logging.Setup(cfg.Verbose, os.Stderr)

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	if cfg.HTTPAddr == "" {
		log.Debug().Str("version", version).Msg("serving MCP over stdio")
		return mcpserver.New(a.Gateway, version).ServeStdio()
	}
	return serveHTTP(a)
}

func serveHTTP(a *app.App) error {
	srv := fiber.New(fiber.Config{
		AppName:               "weather-assistant",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          a.Config.Timeout + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	srv.Use(logger.New(logger.Config{Output: os.Stderr}))
	srv.Use(recover.New())

	srv.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-assistant",
			"version": version,
		})
	})

	httpapi.RegisterRoutes(srv, a.Gateway, a.History)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return listenUntilDone(ctx, srv, a.Config.HTTPAddr, 10*time.Second)
}

// listenUntilDone serves until ctx is cancelled, then shuts down within
// grace. A listener that fails to start is returned as an error.
func listenUntilDone(ctx context.Context, srv *fiber.App, addr string, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()
	log.Info().Str("addr", addr).Msg("serving HTTP API")

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrapf(err, "listen on %s", addr)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	return srv.ShutdownWithContext(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("weather-server failed")
		os.Exit(1)
	}
}
