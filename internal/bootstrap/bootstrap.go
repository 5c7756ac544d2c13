// Package bootstrap assembles the long-running TextCoder processes from a
// loaded Config: lexicon, preset registry, coding service and whichever
// backends the config enables.
package bootstrap

import (
	"context"
	"sort"

	"github.com/turtacn/TextCoder/internal/application/coding"
	"github.com/turtacn/TextCoder/internal/application/presets"
	"github.com/turtacn/TextCoder/internal/config"
	"github.com/turtacn/TextCoder/internal/domain/lexicon"
	"github.com/turtacn/TextCoder/internal/infrastructure/database/postgres"
	"github.com/turtacn/TextCoder/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/TextCoder/internal/infrastructure/database/redis"
	"github.com/turtacn/TextCoder/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/TextCoder/internal/infrastructure/storage/minio"
)

// Check is a named readiness probe.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// App holds the assembled components. Optional backends are nil when
// disabled.
type App struct {
	Config   *config.Config
	Logger   logging.Logger
	Lexicon  lexicon.Config
	Spelling map[string]string
	Registry *presets.Registry
	Service  *coding.Service
	Extender *presets.Extender

	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	Redis    *redis.Client
	Postgres *postgres.Connection
	Producer *kafka.Producer
	Bus      *kafka.JobBus
	Storage  *minio.Client

	checks   []Check
	disabled []string
	closers  []func() error
}

// Option tunes New.
type Option func(*options)

type options struct {
	source           string
	metricsSubsystem string
	migrate          bool
}

// WithSource names the process in published envelopes.
func WithSource(name string) Option {
	return func(o *options) { o.source = name }
}

// WithMetricsSubsystem sets the Prometheus subsystem label prefix.
func WithMetricsSubsystem(s string) Option {
	return func(o *options) { o.metricsSubsystem = s }
}

// WithMigrations applies pending database migrations on start.
func WithMigrations() Option {
	return func(o *options) { o.migrate = true }
}

// New builds an App. On error every backend opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts ...Option) (app *App, err error) {
	o := options{source: "textcoder"}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	app = &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	if app.Lexicon, err = lexicon.Load(cfg.Engine.CategoriesPath, cfg.Engine.ExceptionsPath); err != nil {
		return app, err
	}
	if app.Spelling, err = lexicon.LoadSpellingMap(cfg.Engine.SpellingMapPath); err != nil {
		return app, err
	}
	app.Registry = presets.NewRegistry(cfg.Presets.Dir, logger.Named("presets"))
	if _, err = app.Registry.Refresh(ctx); err != nil {
		return app, err
	}
	app.Extender = presets.NewExtender(app.Registry, app.Spelling)

	svcOpts := []coding.Option{
		coding.WithEngineVersion(cfg.Engine.Version),
		coding.WithLogger(logger.Named("coding")),
	}

	if cfg.Metrics.Enabled {
		app.Collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            o.metricsSubsystem,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger.Named("metrics"))
		if err != nil {
			return app, err
		}
		app.Metrics = prometheus.NewAppMetrics(app.Collector)
		svcOpts = append(svcOpts, coding.WithMetrics(app.Metrics))
	} else {
		app.disabled = append(app.disabled, "metrics")
	}

	if cfg.Redis.Enabled {
		if err = app.openRedis(ctx); err != nil {
			return app, err
		}
		cache := redis.NewRedisCache(app.Redis, logger.Named("cache"),
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.ResultTTL))
		svcOpts = append(svcOpts, coding.WithResultCache(redis.NewResultCache(cache, cfg.Redis.ResultTTL), redis.ResultKey))
	} else {
		app.disabled = append(app.disabled, "redis")
	}

	if cfg.Database.Enabled {
		if err = app.openPostgres(ctx, o.migrate); err != nil {
			return app, err
		}
		svcOpts = append(svcOpts, coding.WithRunRepository(
			repositories.NewPostgresCodingRunRepo(app.Postgres, logger.Named("runs"))))
	} else {
		app.disabled = append(app.disabled, "postgres")
	}

	if cfg.Kafka.Enabled {
		if err = app.openKafka(o.source); err != nil {
			return app, err
		}
		svcOpts = append(svcOpts, coding.WithPublisher(app.Bus))
	} else {
		app.disabled = append(app.disabled, "kafka")
	}

	if cfg.MinIO.Enabled {
		if err = app.openStorage(ctx); err != nil {
			return app, err
		}
	} else {
		app.disabled = append(app.disabled, "minio")
	}

	app.Service = coding.NewService(app.Lexicon, app.Registry, svcOpts...)
	app.Registry.OnRefresh(func(int) { app.Service.InvalidatePresets() })

	logger.Info("application assembled",
		logging.String("engine_version", app.Service.EngineVersion()),
		logging.Int("presets", app.Registry.Len()),
		logging.Strings("disabled", app.disabled))
	return app, nil
}

func (a *App) openRedis(ctx context.Context) error {
	rc := a.Config.Redis
	cl, err := redis.NewClient(ctx, redis.Config{
		Addr:         rc.Addr,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	}, a.Logger.Named("redis"))
	if err != nil {
		return err
	}
	a.Redis = cl
	a.closers = append(a.closers, cl.Close)
	a.checks = append(a.checks, Check{Name: "redis", Fn: cl.Ping})
	return nil
}

func (a *App) openPostgres(ctx context.Context, migrate bool) error {
	dc := a.Config.Database
	conn, err := postgres.NewConnection(ctx, PostgresConfig(a.Config), a.Logger.Named("postgres"))
	if err != nil {
		return err
	}
	a.Postgres = conn
	a.closers = append(a.closers, conn.Close)
	a.checks = append(a.checks, Check{Name: "postgres", Fn: conn.HealthCheck})

	if !migrate {
		return nil
	}
	mg, err := postgres.NewMigrator(conn, dc.MigrationPath)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}

func (a *App) openKafka(source string) error {
	kc := a.Config.Kafka
	p, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    kc.Brokers,
		MaxRetries: kc.MaxRetries,
	}, a.Logger.Named("producer"))
	if err != nil {
		return err
	}
	a.Producer = p
	a.closers = append(a.closers, p.Close)
	a.Bus = kafka.NewJobBus(p, Topics(a.Config), source)
	return nil
}

func (a *App) openStorage(ctx context.Context) error {
	mc := a.Config.MinIO
	cl, err := minio.NewClient(ctx, minio.Config{
		Endpoint:      mc.Endpoint,
		AccessKey:     mc.AccessKey,
		SecretKey:     mc.SecretKey,
		UseSSL:        mc.UseSSL,
		Bucket:        mc.Bucket,
		PresignExpiry: mc.PresignExpiry,
	}, a.Logger.Named("minio"))
	if err != nil {
		return err
	}
	a.Storage = cl
	a.closers = append(a.closers, cl.Close)
	a.checks = append(a.checks, Check{Name: "minio", Fn: cl.HealthCheck})
	return nil
}

// PostgresConfig maps the database section onto the connection config.
func PostgresConfig(cfg *config.Config) postgres.Config {
	dc := cfg.Database
	return postgres.Config{
		Host:            dc.Host,
		Port:            dc.Port,
		Database:        dc.DBName,
		Username:        dc.User,
		Password:        dc.Password,
		SSLMode:         dc.SSLMode,
		MaxOpenConns:    dc.MaxOpenConns,
		MaxIdleConns:    dc.MaxIdleConns,
		ConnMaxLifetime: dc.ConnMaxLifetime,
	}
}

// Topics maps the kafka section onto topic names.
func Topics(cfg *config.Config) kafka.Topics {
	t := kafka.DefaultTopicNames()
	kc := cfg.Kafka
	if kc.RequestTopic != "" {
		t.Requests = kc.RequestTopic
	}
	if kc.ResultTopic != "" {
		t.Results = kc.ResultTopic
	}
	if kc.DLQTopic != "" {
		t.DLQ = kc.DLQTopic
	}
	return t
}

// Checks returns the readiness probes of the enabled backends.
func (a *App) Checks() []Check {
	return append([]Check(nil), a.checks...)
}

// Disabled lists the backends switched off in the config, sorted.
func (a *App) Disabled() []string {
	out := append([]string(nil), a.disabled...)
	sort.Strings(out)
	return out
}

// Close releases every backend in reverse opening order and returns the
// first error.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

//Personal.AI order the ending
