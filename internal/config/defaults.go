package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default values
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080

	DefaultEngineVersion = "0.3.0"
	DefaultPresetDir     = "configs/presets"

	// DefaultWebhookSecret is a placeholder; deployments must override it.
	DefaultWebhookSecret = "CHANGE_ME"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "textcoder:"
	DefaultResultTTL      = 24 * time.Hour

	DefaultDBHost = "localhost"
	DefaultDBPort = 5432
	DefaultDBName = "textcoder"

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaGroupID      = "textcoder-workers"
	DefaultKafkaRequestTopic = "textcoder.coding.requests"
	DefaultKafkaResultTopic  = "textcoder.coding.results"
	DefaultKafkaDLQTopic     = "textcoder.coding.dlq"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "exports"

	DefaultMetricsNamespace = "textcoder"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerHealthPort = 9091
	DefaultJobTimeout       = 5 * time.Minute
	DefaultClaimTTL         = 24 * time.Hour

	DefaultTextColumn = "text"
	DefaultOutputDir  = "data/processed"
)

// defaultValues is the flat key → value table registered with viper so that
// every key can be overridden from the environment.
func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"server.host":             "",
		"server.port":             DefaultServerPort,
		"server.read_timeout":     15 * time.Second,
		"server.write_timeout":    30 * time.Second,
		"server.shutdown_timeout": 10 * time.Second,
		"server.max_body_size":    int64(8 << 20),

		"log.level":  DefaultLogLevel,
		"log.format": DefaultLogFormat,

		"engine.categories_path":   "",
		"engine.exceptions_path":   "",
		"engine.spelling_map_path": "",
		"engine.version":           DefaultEngineVersion,

		"presets.dir":   DefaultPresetDir,
		"presets.watch": false,

		"webhook.secret": DefaultWebhookSecret,

		"cors.allowed_origins": []string{"*"},

		"redis.enabled":        false,
		"redis.addr":           DefaultRedisAddr,
		"redis.password":       "",
		"redis.db":             0,
		"redis.pool_size":      10,
		"redis.min_idle_conns": 2,
		"redis.dial_timeout":   5 * time.Second,
		"redis.read_timeout":   3 * time.Second,
		"redis.write_timeout":  3 * time.Second,
		"redis.result_ttl":     DefaultResultTTL,
		"redis.key_prefix":     DefaultRedisKeyPrefix,

		"database.enabled":           false,
		"database.host":              DefaultDBHost,
		"database.port":              DefaultDBPort,
		"database.user":              "textcoder",
		"database.password":          "",
		"database.db_name":           DefaultDBName,
		"database.ssl_mode":          "disable",
		"database.max_open_conns":    10,
		"database.max_idle_conns":    5,
		"database.conn_max_lifetime": 30 * time.Minute,
		"database.migration_path":    "migrations",

		"kafka.enabled":       false,
		"kafka.brokers":       []string{DefaultKafkaBroker},
		"kafka.group_id":      DefaultKafkaGroupID,
		"kafka.request_topic": DefaultKafkaRequestTopic,
		"kafka.result_topic":  DefaultKafkaResultTopic,
		"kafka.dlq_topic":     DefaultKafkaDLQTopic,
		"kafka.max_retries":   3,

		"minio.enabled":        false,
		"minio.endpoint":       DefaultMinIOEndpoint,
		"minio.access_key":     "",
		"minio.secret_key":     "",
		"minio.bucket":         DefaultMinIOBucket,
		"minio.use_ssl":        false,
		"minio.presign_expiry": time.Hour,

		"metrics.enabled":   true,
		"metrics.namespace": DefaultMetricsNamespace,
		"metrics.path":      DefaultMetricsPath,

		"batch.text_column": DefaultTextColumn,
		"batch.output_dir":  DefaultOutputDir,
		"batch.concurrency": 4,

		"worker.health_port": DefaultWorkerHealthPort,
		"worker.job_timeout": DefaultJobTimeout,
		"worker.claim_ttl":   DefaultClaimTTL,
	}
}

// ApplyDefaults fills zero-value fields of cfg. Explicit values always win.
// Booleans cannot be told apart from "unset" and are left alone.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 8 << 20
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Engine.Version == "" {
		cfg.Engine.Version = DefaultEngineVersion
	}
	if cfg.Presets.Dir == "" {
		cfg.Presets.Dir = DefaultPresetDir
	}
	if cfg.Webhook.Secret == "" {
		cfg.Webhook.Secret = DefaultWebhookSecret
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.ResultTTL == 0 {
		cfg.Redis.ResultTTL = DefaultResultTTL
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.RequestTopic == "" {
		cfg.Kafka.RequestTopic = DefaultKafkaRequestTopic
	}
	if cfg.Kafka.ResultTopic == "" {
		cfg.Kafka.ResultTopic = DefaultKafkaResultTopic
	}
	if cfg.Kafka.DLQTopic == "" {
		cfg.Kafka.DLQTopic = DefaultKafkaDLQTopic
	}

	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = time.Hour
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Batch.TextColumn == "" {
		cfg.Batch.TextColumn = DefaultTextColumn
	}
	if cfg.Batch.OutputDir == "" {
		cfg.Batch.OutputDir = DefaultOutputDir
	}
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = 4
	}

	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultWorkerHealthPort
	}
	if cfg.Worker.JobTimeout == 0 {
		cfg.Worker.JobTimeout = DefaultJobTimeout
	}
	if cfg.Worker.ClaimTTL == 0 {
		cfg.Worker.ClaimTTL = DefaultClaimTTL
	}
}

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Metrics.Enabled = true
	return cfg
}

//Personal.AI order the ending
