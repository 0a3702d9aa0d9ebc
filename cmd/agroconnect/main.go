package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"

	"agroconnect/cart"
	"agroconnect/catalog"
	"agroconnect/checkout"
	"agroconnect/client"
	"agroconnect/contract"
	"agroconnect/internal"
	"agroconnect/moderation"
	"agroconnect/observability"
	"agroconnect/repositories"
	"agroconnect/runtime/workers"
	"agroconnect/session"
	"agroconnect/sink"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the client lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the function returns.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the background pollers.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, database.DefaultMapper)
	}

	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Repositories & Monitoring
	sessionRepository := repositories.NewSessionRepository(db, logger)
	cartRepository := repositories.NewCartRepository(db, logger)
	catalogRepository := repositories.NewCatalogRepository(db, blugeWriter, logger, 50)

	monitoring := observability.NewMonitoringManager(logger)
	sinks := []contract.EventSink{
		sink.NewLogSink(logger),
		sink.NewTelemetrySink(monitoring),
	}

	// 4. Backend & Session
	// The backend needs the store for tokens and the store needs the
	// backend for login, hence the late Bind calls.
	backend := client.NewBackend(config.APIBaseURL, config.HTTPTimeout, logger)
	store := session.NewStore(sessionRepository, logger)
	store.Bind(backend, sinks...)
	backend.BindSession(store.Token, store.HandleUnauthorized)
	store.Restore()

	alerter := NewTerminalAlerter()

	// 5. Domain services
	engine := cart.NewEngine(backend, cartRepository, alerter, logger, sinks...)
	engine.Initialize(ctx)

	catalogService := catalog.NewService(backend, catalogRepository, logger)
	checkoutService := checkout.NewService(backend, engine, alerter, logger)

	var moderator *moderation.Moderator
	if config.CensoredWordsPath != "" {
		moderator, err = moderation.FromFile(config.CensoredWordsPath, charReplacement)
		if err != nil {
			return exitConfig, fmt.Errorf("censored words loading failed: %w", err)
		}
	}

	// 6. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Background pollers under supervision
	notificationPoller := workers.NewNotificationPoller(
		backend, store.Token, alerter, config.NotificationPollInterval, logger, sinks...)
	heartbeat := workers.NewHeartbeatWorker(monitoring, config.HeartbeatInterval, logger)

	sup := workers.NewSupervisor(logger, config.RestartInterval).
		Add(notificationPoller, heartbeat)
	go sup.Run(ctx)
	defer sup.Stop()

	// 8. Interactive shell
	repl := NewRepl(replDeps{
		log:           logger,
		config:        config,
		store:         store,
		engine:        engine,
		catalog:       catalogService,
		checkout:      checkoutService,
		backend:       backend,
		alerter:       alerter,
		moderator:     moderator,
		monitoring:    monitoring,
		notifications: notificationPoller,
		sinks:         sinks,
	})
	if err := repl.Run(ctx); err != nil && ctx.Err() == nil {
		return exitRuntime, err
	}

	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
