package config

import (
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvLocal       = "local"
	EnvTest        = "test"
)

const defaultJWTSecret = "your-secret-key"

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Events    EventsConfig    `json:"events"`
	Worker    WorkerConfig    `json:"worker"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `json:"host" env:"HOST" env-default:"localhost"`
	Port            string        `json:"port" env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `json:"read_timeout" env:"READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `json:"write_timeout" env:"WRITE_TIMEOUT" env-default:"0s"`
	IdleTimeout     time.Duration `json:"idle_timeout" env:"IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	Environment     string        `json:"environment" env:"ENVIRONMENT" env-default:"development"`
	CORSOrigins     []string      `json:"cors_origins" env:"CORS_ORIGINS" env-default:"*" env-separator:","`
}

type DatabaseConfig struct {
	Host            string        `json:"host" env:"DB_HOST" env-default:"localhost"`
	Port            string        `json:"port" env:"DB_PORT" env-default:"5432"`
	User            string        `json:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `json:"password" env:"DB_PASSWORD"`
	Name            string        `json:"name" env:"DB_NAME" env-default:"task_tracker"`
	SSLMode         string        `json:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxOpenConns    int           `json:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
	MaxIdleConns    int           `json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME" env-default:"30s"`
	AcquireTimeout  time.Duration `json:"acquire_timeout" env:"DB_ACQUIRE_TIMEOUT" env-default:"5s"`
	LogLevel        string        `json:"log_level" env:"DB_LOG_LEVEL" env-default:"warn"`
}

type RedisConfig struct {
	Enabled      bool          `json:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host         string        `json:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port         string        `json:"port" env:"REDIS_PORT" env-default:"6379"`
	Password     string        `json:"password" env:"REDIS_PASSWORD"`
	DB           int           `json:"db" env:"REDIS_DB" env-default:"0"`
	PoolSize     int           `json:"pool_size" env:"REDIS_POOL_SIZE" env-default:"10"`
	MinIdleConns int           `json:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS" env-default:"2"`
	DialTimeout  time.Duration `json:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `json:"read_timeout" env:"REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `json:"write_timeout" env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
	Channel      string        `json:"channel" env:"REDIS_CHANNEL" env-default:"task-tracker:events"`
}

type EventsConfig struct {
	BufferSize int           `json:"buffer_size" env:"EVENT_BUFFER_SIZE" env-default:"16"`
	Heartbeat  time.Duration `json:"heartbeat" env:"EVENT_HEARTBEAT" env-default:"25s"`
}

type WorkerConfig struct {
	Enabled         bool          `json:"enabled" env:"WORKER_ENABLED" env-default:"true"`
	CleanupInterval time.Duration `json:"cleanup_interval" env:"CLEANUP_INTERVAL" env-default:"1h"`
	RetentionPeriod time.Duration `json:"retention_period" env:"RETENTION_PERIOD" env-default:"168h"`
	CleanupOnStart  bool          `json:"cleanup_on_start" env:"CLEANUP_ON_START" env-default:"true"`
}

type AuthConfig struct {
	JWTSecret      string        `json:"-" env:"JWT_SECRET" env-default:"your-secret-key"`
	AccessTokenTTL time.Duration `json:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"1h"`
	Issuer         string        `json:"issuer" env:"JWT_ISSUER" env-default:"task-tracker"`
	BCryptCost     int           `json:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

type RateLimitConfig struct {
	Enabled         bool          `json:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RequestsPerMin  int           `json:"requests_per_minute" env:"RATE_LIMIT_RPM" env-default:"100"`
	BurstSize       int           `json:"burst_size" env:"RATE_LIMIT_BURST" env-default:"10"`
	CleanupInterval time.Duration `json:"cleanup_interval" env:"RATE_LIMIT_CLEANUP" env-default:"10m"`
}

func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if config.Database.Password == "" && config.IsProduction() {
		return nil, fmt.Errorf("database password is required in production")
	}

	if config.Auth.JWTSecret == defaultJWTSecret && config.IsProduction() {
		return nil, fmt.Errorf("JWT secret must be set in production")
	}

	if config.Worker.RetentionPeriod <= 0 {
		return nil, fmt.Errorf("retention period must be positive, got %s", config.Worker.RetentionPeriod)
	}

	return config, nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, c.Redis.Port)
}

func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}
