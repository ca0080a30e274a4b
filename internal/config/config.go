package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultServiceName  = "cro-engine"
	defaultServicePort  = 8096
	defaultVersion      = "0.1.0"
	defaultLoggingLevel = "info"
	defaultLoggingFmt   = "json"

	defaultDBHost    = "localhost"
	defaultDBPort    = 5432
	defaultDBName    = "cro_engine"
	defaultDBUser    = "postgres"
	defaultDBSSLMode = "disable"

	defaultRedisAddress = "localhost:6379"

	defaultSessionTTLH      = 720 // 30 days
	defaultMaxConversionLog = 50

	defaultExperimentsPath = "experiments.yml"

	defaultArchiveBufferSize  = 1000
	defaultArchiveFlushThresh = 500
	defaultArchiveFlushIntS   = 1

	defaultMaxRequestsPerMinute = 60
	defaultWindowSeconds        = 60

	defaultSinkTimeout = 5 * time.Second
)

// Config holds the application configuration.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Session     SessionConfig     `yaml:"session"`
	Redis       RedisConfig       `yaml:"redis"`
	Database    DatabaseConfig    `yaml:"database"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Experiments ExperimentsConfig `yaml:"experiments"`
	Sinks       []SinkConfig      `yaml:"sinks"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"CRO_ENGINE_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"       yaml:"debug"`
}

// SessionConfig holds visitor session configuration.
type SessionConfig struct {
	// TTL is the idle lifetime of a session record in the session store.
	TTL time.Duration `env:"CRO_SESSION_TTL" yaml:"ttl"`
	// MaxConversionLog caps the per-session conversion log; oldest entries
	// are dropped first once the cap is reached.
	MaxConversionLog int `yaml:"max_conversion_log"`
}

// RedisConfig holds session store connection configuration.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

// DatabaseConfig holds PostgreSQL conversion archive configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_CRO_ENGINE_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_CRO_ENGINE_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_CRO_ENGINE_USER"     yaml:"user"`
	Password string `env:"POSTGRES_CRO_ENGINE_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_CRO_ENGINE_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_CRO_ENGINE_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// ArchiveConfig holds conversion event archive buffering configuration.
type ArchiveConfig struct {
	BufferSize     int           `yaml:"buffer_size"`
	FlushInterval  time.Duration `yaml:"flush_interval"`
	FlushThreshold int           `yaml:"flush_threshold"`
}

// ExperimentsConfig points at the experiment definition file.
type ExperimentsConfig struct {
	Path string `env:"CRO_EXPERIMENTS_PATH" yaml:"path"`
}

// SinkConfig describes one analytics sink.
type SinkConfig struct {
	Name    string        `yaml:"name"`
	Type    string        `yaml:"type"` // "http" or "log"
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	MaxRequestsPerMinute int `yaml:"max_requests_per_minute"`
	WindowSeconds        int `yaml:"window_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setSessionDefaults(&cfg.Session)
	setRedisDefaults(&cfg.Redis)
	setDatabaseDefaults(&cfg.Database)
	setArchiveDefaults(&cfg.Archive)
	setExperimentsDefaults(&cfg.Experiments)
	setSinkDefaults(cfg.Sinks)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
}

func setSessionDefaults(s *SessionConfig) {
	if s.TTL == 0 {
		s.TTL = defaultSessionTTLH * time.Hour
	}
	if s.MaxConversionLog == 0 {
		s.MaxConversionLog = defaultMaxConversionLog
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

func setArchiveDefaults(a *ArchiveConfig) {
	if a.BufferSize == 0 {
		a.BufferSize = defaultArchiveBufferSize
	}
	if a.FlushInterval == 0 {
		a.FlushInterval = defaultArchiveFlushIntS * time.Second
	}
	if a.FlushThreshold == 0 {
		a.FlushThreshold = defaultArchiveFlushThresh
	}
}

func setExperimentsDefaults(e *ExperimentsConfig) {
	if e.Path == "" {
		e.Path = defaultExperimentsPath
	}
}

func setSinkDefaults(sinks []SinkConfig) {
	for i := range sinks {
		if sinks[i].Timeout == 0 {
			sinks[i].Timeout = defaultSinkTimeout
		}
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.MaxRequestsPerMinute == 0 {
		rl.MaxRequestsPerMinute = defaultMaxRequestsPerMinute
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultWindowSeconds
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFmt
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if c.Redis.Address == "" {
		return &ValidationError{Field: "redis.address", Message: "is required"}
	}
	if c.Session.TTL < 0 {
		return &ValidationError{Field: "session.ttl", Message: "must not be negative"}
	}
	for i := range c.Sinks {
		if err := validateSink(i, c.Sinks[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateSink(i int, sink SinkConfig) error {
	field := fmt.Sprintf("sinks[%d]", i)
	if sink.Name == "" {
		return &ValidationError{Field: field + ".name", Message: "is required"}
	}
	switch sink.Type {
	case "http":
		if sink.URL == "" {
			return &ValidationError{Field: field + ".url", Message: "is required for http sinks"}
		}
	case "log":
	default:
		return &ValidationError{Field: field + ".type", Message: `must be one of: "http", "log"`}
	}
	return nil
}
