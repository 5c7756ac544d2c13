// Command worker consumes coding jobs from Kafka and publishes their results.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/TextCoder/internal/application/presets"
	"github.com/turtacn/TextCoder/internal/application/worker"
	"github.com/turtacn/TextCoder/internal/bootstrap"
	"github.com/turtacn/TextCoder/internal/config"
	"github.com/turtacn/TextCoder/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/internal/interfaces/http/handlers"
	httpserver "github.com/turtacn/TextCoder/internal/interfaces/http"
	"github.com/turtacn/TextCoder/pkg/errors"
)

// Build-time variables injected via ldflags.
var version = "dev"

const (
	startupTimeout     = 30 * time.Second
	topicSetupTimeout  = 15 * time.Second
	defaultReplication = 1
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	healthPort := flag.Int("health-port", 0, "health and metrics port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *healthPort); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, healthPort int) error {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}
	if healthPort > 0 {
		cfg.Worker.HealthPort = healthPort
	}
	if !cfg.Kafka.Enabled {
		return errors.New(errors.ErrCodeConfigInvalid, "worker requires kafka.enabled=true")
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger = logger.Named("worker")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	app, err := bootstrap.New(startCtx, cfg, logger,
		bootstrap.WithSource("worker"), bootstrap.WithMetricsSubsystem("worker"))
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("closing backends failed", logging.Err(err))
		}
	}()

	topics := bootstrap.Topics(cfg)
	ensureTopics(cfg.Kafka.Brokers, topics, logger)

	if cfg.Presets.Watch {
		w := presets.NewWatcher(app.Registry, logger)
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topics:  []string{topics.Requests},
		Retry: kafka.RetryConfig{
			MaxRetries:      cfg.Kafka.MaxRetries,
			DeadLetterTopic: topics.DLQ,
		},
	}, logger.Named("consumer"))
	if err != nil {
		return err
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("closing consumer failed", logging.Err(err))
		}
	}()

	consumer.Subscribe(topics.Requests, newJobHandler(cfg, app, logger).Handle)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if err := consumer.Start(ctx); err != nil {
		return err
	}

	health := httpserver.NewServer(httpserver.ServerConfig{
		Addr:            fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Worker.HealthPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, newHealthRouter(cfg, app, logger), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- health.Start() }()

	logger.Info("worker started",
		logging.String("topic", topics.Requests),
		logging.String("group", cfg.Kafka.GroupID),
		logging.Int("health_port", cfg.Worker.HealthPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	stop()
	if err := health.Stop(context.Background()); err != nil {
		logger.Error("health server shutdown error", logging.Err(err))
	}
	logger.Info("worker stopped")
	return nil
}

func newJobHandler(cfg *config.Config, app *bootstrap.App, logger logging.Logger) *worker.Handler {
	opts := []worker.Option{
		worker.WithLogger(logger.Named("jobs")),
		worker.WithTimeout(cfg.Worker.JobTimeout),
	}
	if app.Redis != nil {
		opts = append(opts, worker.WithLocker(
			worker.NewRedisLocker(app.Redis, cfg.Worker.ClaimTTL, logger.Named("locker"))))
	}
	if app.Metrics != nil {
		opts = append(opts, worker.WithMetrics(app.Metrics))
	}
	return worker.NewHandler(app.Service, app.Bus, opts...)
}

// ensureTopics creates missing topics. Brokers with auto-create enabled make
// a failure here harmless, so it only warns.
func ensureTopics(brokers []string, topics kafka.Topics, logger logging.Logger) {
	tm, err := kafka.NewTopicManager(brokers, logger.Named("topics"))
	if err != nil {
		logger.Warn("topic manager unavailable", logging.Err(err))
		return
	}
	defer tm.Close()

	ctx, cancel := context.WithTimeout(context.Background(), topicSetupTimeout)
	defer cancel()
	if err := tm.EnsureTopics(ctx, kafka.TopicConfigs(topics, defaultReplication)); err != nil {
		logger.Warn("ensuring topics failed", logging.Err(err))
	}
}

func newHealthRouter(cfg *config.Config, app *bootstrap.App, logger logging.Logger) http.Handler {
	checks := app.Checks()
	checkers := make([]handlers.HealthChecker, 0, len(checks))
	for _, c := range checks {
		checkers = append(checkers, handlers.CheckFunc{ComponentName: c.Name, Fn: c.Fn})
	}
	rc := httpserver.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version, app.Disabled(), checkers...),
		Logger:        logger.Named("http"),
		MetricsPath:   cfg.Metrics.Path,
	}
	if app.Metrics != nil {
		rc.MetricsCollector = app.Collector
	}
	return httpserver.NewRouter(rc)
}

//Personal.AI order the ending
