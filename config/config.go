package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
	BackendBadger   = "badger"
)

type (
	Config struct {
		HTTP        HTTP
		Log         Log
		Metadata    Metadata
		PG          PG
		Dynamo      Dynamo
		Badger      Badger
		S3          S3
		Images      Images
		Events      Events
		Kafka       Kafka
		OutboxRelay OutboxRelay
		Reconciler  Reconciler
		Metrics     Metrics
		Swagger     Swagger
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT,required"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		BodyLimit      int    `env:"HTTP_BODY_LIMIT" envDefault:"20971520"` // base64 inflates payloads by ~4/3
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	Metadata struct {
		Backend string `env:"METADATA_BACKEND" envDefault:"postgres"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX" envDefault:"2"`
		URL     string `env:"PG_URL"`
		Migrate bool   `env:"PG_MIGRATE" envDefault:"true"`
	}

	Dynamo struct {
		Endpoint    string `env:"DYNAMO_ENDPOINT"`
		Region      string `env:"DYNAMO_REGION" envDefault:"us-east-1"`
		AccessKey   string `env:"DYNAMO_ACCESS_KEY"`
		SecretKey   string `env:"DYNAMO_SECRET_KEY"`
		Table       string `env:"DYNAMO_TABLE" envDefault:"images"`
		OwnerIndex  string `env:"DYNAMO_OWNER_INDEX" envDefault:"owner-upload-timestamp-index"`
		CreateTable bool   `env:"DYNAMO_CREATE_TABLE" envDefault:"false"`
	}

	Badger struct {
		Path     string `env:"BADGER_PATH" envDefault:"./data/badger"`
		InMemory bool   `env:"BADGER_IN_MEMORY" envDefault:"false"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT"`
		AccessKey      string        `env:"S3_ACCESS_KEY"`
		SecretKey      string        `env:"S3_SECRET_KEY"`
		Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
		PathStyle      bool          `env:"S3_PATH_STYLE" envDefault:"true"`
		Bucket         string        `env:"S3_BUCKET,required,notEmpty"`
		KeyPrefix      string        `env:"S3_KEY_PREFIX" envDefault:"images"`
		CreateBucket   bool          `env:"S3_CREATE_BUCKET" envDefault:"false"`
		PresignTTL     time.Duration `env:"S3_PRESIGN_TTL" envDefault:"1h"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Images struct {
		StoreCallTimeout   time.Duration `env:"IMAGES_STORE_CALL_TIMEOUT" envDefault:"5s"`
		ListDefaultLimit   int           `env:"IMAGES_LIST_DEFAULT_LIMIT" envDefault:"50"`
		ListMaxLimit       int           `env:"IMAGES_LIST_MAX_LIMIT" envDefault:"1000"`
		ListDegradeOnError bool          `env:"IMAGES_LIST_DEGRADE_ON_ERROR" envDefault:"true"`
	}

	Events struct {
		Enabled bool `env:"EVENTS_ENABLED" envDefault:"false"`
	}

	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS"`
		GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"image-hosting-reconciler"`
		Topic   string   `env:"KAFKA_TOPIC" envDefault:"image-lifecycle"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	Reconciler struct {
		Enabled         bool          `env:"RECONCILER_ENABLED" envDefault:"false"`
		Workers         int           `env:"RECONCILER_WORKERS" envDefault:"2"`
		CommitTimeout   time.Duration `env:"RECONCILER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"RECONCILER_PROCESS_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout time.Duration `env:"RECONCILER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Metrics struct {
		Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Metadata.Backend {
	case BackendPostgres:
		if c.PG.URL == "" {
			return fmt.Errorf("PG_URL is required for %q metadata backend", BackendPostgres)
		}
	case BackendDynamoDB, BackendBadger:
	default:
		return fmt.Errorf("unknown METADATA_BACKEND %q", c.Metadata.Backend)
	}

	// the outbox lives next to the metadata rows, so events need postgres
	if c.Events.Enabled && c.Metadata.Backend != BackendPostgres {
		return fmt.Errorf("EVENTS_ENABLED requires %q metadata backend", BackendPostgres)
	}

	if (c.Events.Enabled || c.Reconciler.Enabled) && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when events or reconciler are enabled")
	}

	if c.Images.ListDefaultLimit <= 0 || c.Images.ListMaxLimit < c.Images.ListDefaultLimit {
		return fmt.Errorf("invalid list limits: default=%d max=%d", c.Images.ListDefaultLimit, c.Images.ListMaxLimit)
	}

	if c.Reconciler.Workers <= 0 {
		return fmt.Errorf("RECONCILER_WORKERS must be positive")
	}

	return nil
}
