// Command apiserver serves the TextCoder HTTP API.
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
	"github.com/turtacn/TextCoder/internal/bootstrap"
	"github.com/turtacn/TextCoder/internal/config"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/TextCoder/internal/interfaces/http"
	"github.com/turtacn/TextCoder/internal/interfaces/http/handlers"
	"github.com/turtacn/TextCoder/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

const startupTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	migrate := flag.Bool("migrate", true, "apply pending database migrations on start")
	flag.Parse()

	if err := run(*configPath, *port, *migrate); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int, migrate bool) error {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger = logger.Named("apiserver")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()
	if cfg.Webhook.Secret == config.DefaultWebhookSecret {
		logger.Warn("webhook secret is the placeholder; set TEXTCODER_WEBHOOK_SECRET")
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	opts := []bootstrap.Option{bootstrap.WithSource("apiserver"), bootstrap.WithMetricsSubsystem("api")}
	if migrate {
		opts = append(opts, bootstrap.WithMigrations())
	}
	app, err := bootstrap.New(startCtx, cfg, logger, opts...)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("closing backends failed", logging.Err(err))
		}
	}()

	if cfg.Presets.Watch {
		w := presets.NewWatcher(app.Registry, logger)
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	server := httpserver.NewServer(httpserver.ServerConfig{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, newRouter(cfg, app, logger), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

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

	if err := server.Stop(context.Background()); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
	}
	logger.Info("apiserver stopped")
	return nil
}

func newRouter(cfg *config.Config, app *bootstrap.App, logger logging.Logger) http.Handler {
	rc := httpserver.RouterConfig{
		CodingHandler: handlers.NewCodingHandler(app.Service, logger.Named("coding")),
		PresetHandler: handlers.NewPresetHandler(app.Registry, app.Extender, logger.Named("presets")),
		HealthHandler: handlers.NewHealthHandler(version, app.Disabled(), healthCheckers(app)...),
		MaxBodySize:   cfg.Server.MaxBodySize,
		Logger:        logger.Named("http"),
		MetricsPath:   cfg.Metrics.Path,
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORS.AllowedOrigins
	rc.CORS = cors

	if app.Metrics != nil {
		rc.MetricsCollector = app.Collector
		rc.HTTPObserver = app.Metrics
		rc.WebhookHandler = handlers.NewWebhookHandler(cfg.Webhook.Secret, app.Registry, app.Metrics, logger.Named("webhook"))
	} else {
		rc.WebhookHandler = handlers.NewWebhookHandler(cfg.Webhook.Secret, app.Registry, nil, logger.Named("webhook"))
	}
	if app.Bus != nil {
		rc.JobHandler = handlers.NewJobHandler(app.Bus, logger.Named("jobs"))
	}
	return httpserver.NewRouter(rc)
}

//Personal.AI order the ending
