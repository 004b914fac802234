package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"retailorders/internal/config"
	"retailorders/internal/database"
	"retailorders/internal/events"
	"retailorders/internal/logger"
	"retailorders/internal/mailer"
	"retailorders/internal/scheduler"
	"retailorders/internal/server"
	"retailorders/pkg/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.AppEnv)

	// --- Database ---
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- Events ---
	backend, err := newEventBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.close()

	srv := server.New(cfg, db, backend.publisher, mailer.NewSMTPSender(cfg), server.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := backend.start(ctx, srv.Dispatcher.Handle); err != nil {
		return err
	}

	// --- Scheduler ---
	sched := scheduler.New(srv.Auth)
	if err := sched.Start(cfg.PurgeSchedule); err != nil {
		return err
	}

	// --- Start HTTP Server ---
	logger.Info("starting server", "port", cfg.AppPort, "env", cfg.AppEnv)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- srv.App.Listen(cfg.AppPort)
	}()

	select {
	case <-quit:
		logger.Info("shutting down server")
	case err := <-listenErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	}

	if err := srv.App.Shutdown(); err != nil {
		logger.Error("error during fiber shutdown", "error", err)
	}
	cancel()
	<-sched.Stop().Done()

	logger.Info("server gracefully stopped")
	return nil
}

// eventBackend carries events from the services to the dispatcher, either
// through RabbitMQ or, without a broker URL, in process.
type eventBackend struct {
	publisher events.Publisher
	start     func(ctx context.Context, handler events.Handler) error
	close     func()
}

func newEventBackend(cfg *config.Config) (*eventBackend, error) {
	if cfg.RabbitMQURL == "" {
		logger.Warn("RABBITMQ_URL is empty, dispatching events in process")
		bus := events.NewLocalBus(true)
		return &eventBackend{
			publisher: bus,
			start: func(ctx context.Context, handler events.Handler) error {
				bus.SetHandler(handler)
				return nil
			},
			close: bus.Wait,
		}, nil
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.QueueName})
	if err != nil {
		return nil, err
	}
	return &eventBackend{
		publisher: client,
		start:     client.ConsumeEvents,
		close: func() {
			if err := client.Close(); err != nil {
				logger.Error("failed to close rabbitmq client", "error", err)
			}
		},
	}, nil
}
