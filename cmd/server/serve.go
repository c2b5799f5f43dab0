package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/database"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dedupe"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/logging"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/messenger"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/routes"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/services"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Run AutoMigrate before serving")
	return cmd
}

func serve(migrate bool) error {
	cfg, err := bootstrap()
	if err != nil {
		slog.Error("database connection failed", "error", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("configuration invalid", "error", err)
		return err
	}

	if migrate {
		if err := database.Migrate(database.DB); err != nil {
			slog.Error("migration failed", "error", err)
			return err
		}
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.StdoutHandler(logging.ParseLevel(cfg.LogLevel)),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	guard, err := dedupe.Connect(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.DedupeTTL)
	if err != nil {
		slog.Error("redis unavailable, webhook de-duplication disabled", "addr", cfg.RedisAddr, "error", err)
		guard = nil
	} else if guard != nil {
		slog.Info("webhook de-duplication enabled", "ttl", cfg.DedupeTTL.String())
	}

	// Services
	store := services.NewGormStore(database.DB)
	gateway := messenger.NewClient(nil, cfg.GraphAPIURL, cfg.PageAccessToken)
	conversation := services.NewConversation(store, gateway, services.ConversationConfig{
		ServerURL:           cfg.ServerURL,
		DefaultPostImageURL: cfg.DefaultPostImageURL,
		LatestPostLimit:     cfg.LatestPostLimit,
	})
	dispatcher := services.NewDispatcher(conversation, cfg.QueueSize, cfg.TurnTimeout)
	dispatcher.Start()

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(dispatcher, guard, cfg.ValidationToken)
	healthHandler := handlers.NewHealthHandler(database.Ping, dispatcher)
	adminHandler := handlers.NewAdminHandler(store, conversation.Broadcaster())

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, store, webhookHandler, healthHandler, adminHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "server_url", cfg.ServerURL)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-quit:
	case err := <-listenErr:
		if err != nil {
			slog.Error("server failed to start", "error", err)
			return err
		}
	}
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := dispatcher.Stop(ctx); err != nil {
		slog.Error("dispatcher did not drain", "pending", dispatcher.Len(), "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := guard.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}
	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}
