package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongoDB  = "mongodb"
	StoreDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	App            AppConfig         `mapstructure:"app"`
	Server         ServerConfig      `mapstructure:"server"`
	Store          StoreConfig       `mapstructure:"store"`
	LedgerDatabase DatabaseConfig    `mapstructure:"ledger_database"`
	MongoDB        MongoDBConfig     `mapstructure:"mongodb"`
	Redis          RedisConfig       `mapstructure:"redis"`
	Kafka          KafkaConfig       `mapstructure:"kafka"`
	OTel           OTelConfig        `mapstructure:"otel"`
	Ledger         LedgerConfig      `mapstructure:"ledger"`
	Leaderboard    LeaderboardConfig `mapstructure:"leaderboard"`
	Idempotency    IdempotencyConfig `mapstructure:"idempotency"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StoreConfig selects the participant store implementation
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // postgres, mongodb, memory
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// MongoDBConfig holds MongoDB connection settings
type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka/Redpanda connection settings
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client_id"`

	// ConsumerGroup is the group of the leaderboard worker
	ConsumerGroup string `mapstructure:"consumer_group"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// LedgerConfig holds the per-participant mutation lock settings
type LedgerConfig struct {
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
	LockWait time.Duration `mapstructure:"lock_wait"`
}

// LeaderboardConfig holds ranking settings
type LeaderboardConfig struct {
	Season string `mapstructure:"season"`
	TopN   int    `mapstructure:"top_n"`
}

// IdempotencyConfig holds idempotency middleware settings
type IdempotencyConfig struct {
	RequireKey bool          `mapstructure:"require_key"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// A missing .env is fine, environment variables still apply
	_ = v.ReadInConfig()

	return load(v)
}

// LoadWithPath loads configuration from a specific path
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "ledger-service")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)

	// Ledger database (postgres store)
	v.SetDefault("LEDGER_DATABASE_HOST", "localhost")
	v.SetDefault("LEDGER_DATABASE_PORT", 5432)
	v.SetDefault("LEDGER_DATABASE_USER", "postgres")
	v.SetDefault("LEDGER_DATABASE_PASSWORD", "postgres")
	v.SetDefault("LEDGER_DATABASE_DBNAME", "ledger_db")
	v.SetDefault("LEDGER_DATABASE_SSLMODE", "disable")
	v.SetDefault("LEDGER_DATABASE_MAX_OPEN_CONNS", 50)
	v.SetDefault("LEDGER_DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("LEDGER_DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("LEDGER_DATABASE_CONN_MAX_IDLE_TIME", "30m")

	// MongoDB defaults (mongodb store)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "top_challenges")

	// Redis defaults
	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 50)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 5)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// Kafka defaults
	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "ledger-events")
	v.SetDefault("KAFKA_CLIENT_ID", "ledger-service")
	v.SetDefault("KAFKA_CONSUMER_GROUP", "ledger-leaderboard-worker")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "ledger-service")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	v.SetDefault("LEDGER_LOCK_TTL", "5s")
	v.SetDefault("LEDGER_LOCK_WAIT", "3s")

	v.SetDefault("LEADERBOARD_SEASON", "current")
	v.SetDefault("LEADERBOARD_TOP_N", 10)

	v.SetDefault("IDEMPOTENCY_REQUIRE_KEY", false)
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
}

func bindConfig(v *viper.Viper, cfg *Config) error {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER")))

	// Ledger database
	cfg.LedgerDatabase.Host = v.GetString("LEDGER_DATABASE_HOST")
	cfg.LedgerDatabase.Port = v.GetInt("LEDGER_DATABASE_PORT")
	cfg.LedgerDatabase.User = v.GetString("LEDGER_DATABASE_USER")
	cfg.LedgerDatabase.Password = v.GetString("LEDGER_DATABASE_PASSWORD")
	cfg.LedgerDatabase.DBName = v.GetString("LEDGER_DATABASE_DBNAME")
	cfg.LedgerDatabase.SSLMode = v.GetString("LEDGER_DATABASE_SSLMODE")
	cfg.LedgerDatabase.MaxOpenConns = v.GetInt("LEDGER_DATABASE_MAX_OPEN_CONNS")
	cfg.LedgerDatabase.MaxIdleConns = v.GetInt("LEDGER_DATABASE_MAX_IDLE_CONNS")
	cfg.LedgerDatabase.ConnMaxLifetime = v.GetDuration("LEDGER_DATABASE_CONN_MAX_LIFETIME")
	cfg.LedgerDatabase.ConnMaxIdleTime = v.GetDuration("LEDGER_DATABASE_CONN_MAX_IDLE_TIME")

	// MongoDB
	cfg.MongoDB.URI = v.GetString("MONGODB_URI")
	cfg.MongoDB.Database = v.GetString("MONGODB_DATABASE")

	// Redis
	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// Kafka
	cfg.Kafka.Enabled = v.GetBool("KAFKA_ENABLED")
	cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.Kafka.Topic = v.GetString("KAFKA_TOPIC")
	cfg.Kafka.ClientID = v.GetString("KAFKA_CLIENT_ID")
	cfg.Kafka.ConsumerGroup = v.GetString("KAFKA_CONSUMER_GROUP")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	// Ledger
	cfg.Ledger.LockTTL = v.GetDuration("LEDGER_LOCK_TTL")
	cfg.Ledger.LockWait = v.GetDuration("LEDGER_LOCK_WAIT")

	// Leaderboard
	cfg.Leaderboard.Season = v.GetString("LEADERBOARD_SEASON")
	cfg.Leaderboard.TopN = v.GetInt("LEADERBOARD_TOP_N")

	// Idempotency
	cfg.Idempotency.RequireKey = v.GetBool("IDEMPOTENCY_REQUIRE_KEY")
	cfg.Idempotency.TTL = v.GetDuration("IDEMPOTENCY_TTL")

	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if err := c.ValidateLedgerDatabase(); err != nil {
			return err
		}
	case StoreDriverMongoDB:
		if c.MongoDB.URI == "" || c.MongoDB.Database == "" {
			return fmt.Errorf("MONGODB_URI and MONGODB_DATABASE are required for the mongodb store")
		}
	case StoreDriverMemory:
		if c.IsProduction() {
			return fmt.Errorf("memory store is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER: %q", c.Store.Driver)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when kafka is enabled")
	}

	if c.Ledger.LockTTL <= 0 {
		return fmt.Errorf("LEDGER_LOCK_TTL must be positive")
	}

	if c.Leaderboard.TopN <= 0 {
		return fmt.Errorf("LEADERBOARD_TOP_N must be positive")
	}

	return nil
}

// ValidateLedgerDatabase validates ledger database configuration
func (c *Config) ValidateLedgerDatabase() error {
	if c.LedgerDatabase.Host == "" {
		return fmt.Errorf("LEDGER_DATABASE_HOST is required")
	}
	if c.LedgerDatabase.DBName == "" {
		return fmt.Errorf("LEDGER_DATABASE_DBNAME is required")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
