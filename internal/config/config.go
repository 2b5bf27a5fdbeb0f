// Package config loads the patternmon command configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/hupe1980/patternmon"
	"github.com/hupe1980/patternmon/codec"
)

// EnvPrefix prefixes every environment variable, e.g. PATTERNMON_STORE_BACKEND.
const EnvPrefix = "PATTERNMON"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendLocal    = "local"
	BackendS3       = "s3"
	BackendMinIO    = "minio"
	BackendDynamoDB = "dynamodb"
	BackendSQLite   = "sqlite"
)

// Log formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete command configuration.
type Config struct {
	Bucket      string        `mapstructure:"bucket"`
	Codec       string        `mapstructure:"codec"`
	Concurrency int           `mapstructure:"concurrency"`
	Log         LogConfig     `mapstructure:"log"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
	Store       StoreConfig   `mapstructure:"store"`
	Kafka       KafkaConfig   `mapstructure:"kafka"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// StoreConfig selects and configures the key-value backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`

	// CreateBucket creates the bucket on start where the backend supports it
	// (memory, local, sqlite).
	CreateBucket bool `mapstructure:"create_bucket"`

	// CacheBytes bounds the read cache used by lookups. Zero disables it.
	CacheBytes int64 `mapstructure:"cache_bytes"`

	// RateLimit caps store operations per second. Zero disables limiting.
	RateLimit float64        `mapstructure:"rate_limit"`
	RateBurst int            `mapstructure:"rate_burst"`
	Local     LocalConfig    `mapstructure:"local"`
	S3        S3Config       `mapstructure:"s3"`
	MinIO     MinIOConfig    `mapstructure:"minio"`
	DynamoDB  DynamoDBConfig `mapstructure:"dynamodb"`
	SQLite    SQLiteConfig   `mapstructure:"sqlite"`
}

// LocalConfig configures the filesystem backend.
type LocalConfig struct {
	Dir string `mapstructure:"dir"`
}

// S3Config configures the S3 backend. Credentials come from the default AWS
// chain.
type S3Config struct {
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	Prefix       string `mapstructure:"prefix"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// MinIOConfig configures the MinIO backend.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
	Prefix    string `mapstructure:"prefix"`
}

// DynamoDBConfig configures the DynamoDB backend. The bucket name is the
// table name.
type DynamoDBConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// KafkaConfig configures the inbound message source.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  []string `mapstructure:"topics"`
	GroupID string   `mapstructure:"group_id"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Bucket:      patternmon.DefaultBucket,
		Codec:       codec.Default.Name(),
		Concurrency: 1,
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
		Store: StoreConfig{
			Backend:   BackendMemory,
			RateBurst: 1,
			Local:     LocalConfig{Dir: "./data"},
			S3:        S3Config{Region: "us-east-1"},
			MinIO:     MinIOConfig{Endpoint: "localhost:9000"},
			DynamoDB:  DynamoDBConfig{Region: "us-east-1"},
			SQLite:    SQLiteConfig{Path: "./patternmon.db"},
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			GroupID: "pattern-monitor",
		},
	}
}

// InitViper creates a viper instance holding the defaults, the optional
// config file and the environment.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound with BindPFlag)
//  2. Environment variables (PATTERNMON_BUCKET, PATTERNMON_STORE_BACKEND, ...)
//  3. Config file values (yaml, toml or json)
//  4. Defaults from Default()
func InitViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("bucket", d.Bucket)
	v.SetDefault("codec", d.Codec)
	v.SetDefault("concurrency", d.Concurrency)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.addr", d.Metrics.Addr)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.create_bucket", d.Store.CreateBucket)
	v.SetDefault("store.cache_bytes", d.Store.CacheBytes)
	v.SetDefault("store.rate_limit", d.Store.RateLimit)
	v.SetDefault("store.rate_burst", d.Store.RateBurst)
	v.SetDefault("store.local.dir", d.Store.Local.Dir)
	v.SetDefault("store.s3.region", d.Store.S3.Region)
	v.SetDefault("store.s3.endpoint", d.Store.S3.Endpoint)
	v.SetDefault("store.s3.prefix", d.Store.S3.Prefix)
	v.SetDefault("store.s3.use_path_style", d.Store.S3.UsePathStyle)
	v.SetDefault("store.minio.endpoint", d.Store.MinIO.Endpoint)
	v.SetDefault("store.minio.access_key", d.Store.MinIO.AccessKey)
	v.SetDefault("store.minio.secret_key", d.Store.MinIO.SecretKey)
	v.SetDefault("store.minio.secure", d.Store.MinIO.Secure)
	v.SetDefault("store.minio.prefix", d.Store.MinIO.Prefix)
	v.SetDefault("store.dynamodb.region", d.Store.DynamoDB.Region)
	v.SetDefault("store.dynamodb.endpoint", d.Store.DynamoDB.Endpoint)
	v.SetDefault("store.sqlite.path", d.Store.SQLite.Path)

	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.topics", d.Kafka.Topics)
	v.SetDefault("kafka.group_id", d.Kafka.GroupID)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: bucket must not be empty", ErrInvalid)
	}
	if _, ok := codec.ByName(c.Codec); !ok {
		return fmt.Errorf("%w: unknown codec %q (want one of %s)", ErrInvalid, c.Codec, strings.Join(codec.Names(), ", "))
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalid, c.Concurrency)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if !slices.Contains([]string{FormatText, FormatJSON, FormatPretty}, c.Log.Format) {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	if c.Store.CacheBytes < 0 {
		return fmt.Errorf("%w: store.cache_bytes must not be negative", ErrInvalid)
	}
	if c.Store.RateLimit < 0 {
		return fmt.Errorf("%w: store.rate_limit must not be negative", ErrInvalid)
	}
	if c.Store.RateLimit > 0 && c.Store.RateBurst < 1 {
		return fmt.Errorf("%w: store.rate_burst must be at least 1", ErrInvalid)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendLocal:
		if c.Store.Local.Dir == "" {
			return fmt.Errorf("%w: store.local.dir must not be empty", ErrInvalid)
		}
	case BackendS3:
		if c.Store.S3.Region == "" {
			return fmt.Errorf("%w: store.s3.region must not be empty", ErrInvalid)
		}
	case BackendMinIO:
		if c.Store.MinIO.Endpoint == "" {
			return fmt.Errorf("%w: store.minio.endpoint must not be empty", ErrInvalid)
		}
	case BackendDynamoDB:
		if c.Store.DynamoDB.Region == "" {
			return fmt.Errorf("%w: store.dynamodb.region must not be empty", ErrInvalid)
		}
	case BackendSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("%w: store.sqlite.path must not be empty", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalid, c.Store.Backend)
	}
	return nil
}

// ValidateKafka checks the settings needed to consume messages.
func (c *Config) ValidateKafka() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("%w: kafka.brokers must not be empty", ErrInvalid)
	}
	if len(c.Kafka.Topics) == 0 {
		return fmt.Errorf("%w: kafka.topics must not be empty", ErrInvalid)
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("%w: kafka.group_id must not be empty", ErrInvalid)
	}
	return nil
}

// LogLevel parses Log.Level ("debug", "info", "warn", "error").
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return level, nil
}
