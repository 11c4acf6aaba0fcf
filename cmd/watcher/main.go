package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gift_watcher/internal/catalog/telegram"
	"gift_watcher/internal/config"
	"gift_watcher/internal/events"
	"gift_watcher/internal/operator"
	"gift_watcher/internal/scheduler"
	"gift_watcher/internal/service"
	"gift_watcher/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Discovery events are optional: no RabbitMQ URL, no publisher.
	var publisher service.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := events.NewRabbitMQ(events.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		publisher = rabbitMQ
	}

	client := telegram.New(telegram.Config{
		BaseURL:  cfg.Telegram.BaseURL,
		BotToken: cfg.Telegram.BotToken,
		Timeout:  cfg.Telegram.Timeout,
	}, logger)

	giftStore := postgres.NewGiftStore(db)
	subscriberStore := postgres.NewSubscriberStore(db)
	txManager := postgres.NewTransactionManager(db)

	// Seed the admin account so balance overrides have a row to land on.
	if cfg.Watch.AdminUserID != 0 {
		if err := subscriberStore.Add(context.Background(), cfg.Watch.AdminUserID); err != nil {
			logger.Error("failed to seed admin subscriber", "error", err)
			os.Exit(1)
		}
	}

	broadcaster := service.NewBroadcaster(client, cfg.Watch.NotificationChannelID, logger)
	executor := service.NewExecutor(client, subscriberStore, cfg.Watch.PacingDelay, logger)

	engine := service.NewEngine(
		client,
		giftStore,
		subscriberStore,
		txManager,
		publisher,
		broadcaster,
		executor,
		logger,
	)

	sched := scheduler.New(engine, cfg.Watch.Interval, cfg.Watch.ErrorBackoff, logger)

	operatorServer := operator.NewServer(cfg.Operator.ListenAddr, subscriberStore, logger)
	go func() {
		if err := operatorServer.Start(); err != nil {
			logger.Error("operator server error", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("starting gift watcher",
		"interval", cfg.Watch.Interval,
		"operator_addr", cfg.Operator.ListenAddr,
		"channel_id", cfg.Watch.NotificationChannelID,
	)

	watcherDone := make(chan error, 1)
	go func() {
		watcherDone <- sched.Start(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		// Bounded wait: the loop gets a chance to reach a safe stopping point
		// before the client session and the pool are torn down.
		select {
		case <-watcherDone:
		case <-time.After(cfg.Operator.ShutdownTimeout):
			logger.Warn("watch loop did not stop within timeout")
		}
	case err := <-watcherDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("watch loop terminated", "error", err)
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Operator.ShutdownTimeout)
	defer shutdownCancel()
	if err := operatorServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("operator server shutdown failed", "error", err)
	}

	logger.Info("gift watcher stopped")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
