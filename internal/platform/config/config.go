package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"academy/pkg/platform/middleware/metadata"
	pstrings "academy/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server    Server
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Log       LogConfig
	Codes     CodeConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr               string
	AdminAPIToken      string
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	TrustedProxies     []netip.Prefix
}

// DatabaseConfig selects Postgres; an empty URL runs on in-memory stores.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	TxTimeout    time.Duration
}

// RedisConfig selects Redis for the verify limiter; an empty URL keeps it in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	Partitions int32
}

type LogConfig struct {
	Level  string
	Format string
}

// CodeConfig tunes certificate code generation.
type CodeConfig struct {
	Length      int
	MaxAttempts int
}

// RateLimitConfig bounds public verification per client IP.
type RateLimitConfig struct {
	VerifyPerMinute int
	Window          time.Duration
	Disabled        bool
}

// AuditConfig tunes the audit publisher. Compliance and security events
// are never sampled.
type AuditConfig struct {
	BufferSize         int
	VerifiedSampleRate float64
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	// A missing .env is the normal production case.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	p := parser{}
	cfg := Config{
		Server: Server{
			Addr:               p.str("ACADEMY_ADDR", ":8080"),
			AdminAPIToken:      os.Getenv("ADMIN_API_TOKEN"),
			CORSAllowedOrigins: pstrings.SplitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
			RequestTimeout:     p.duration("REQUEST_TIMEOUT", 30*time.Second),
			TrustedProxies:     p.proxies("TRUSTED_PROXIES"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: p.integer("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: p.integer("DB_MAX_IDLE_CONNS", 5),
			TxTimeout:    p.duration("DB_TX_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    pstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: p.str("AUDIT_TOPIC", "academy.audit"),
			Partitions: int32(p.integer("AUDIT_TOPIC_PARTITIONS", 3)),
		},
		Log: LogConfig{
			Level:  p.str("LOG_LEVEL", "info"),
			Format: p.str("LOG_FORMAT", "json"),
		},
		Codes: CodeConfig{
			Length:      p.integer("CODE_LENGTH", 10),
			MaxAttempts: p.integer("CODE_MAX_ATTEMPTS", 5),
		},
		RateLimit: RateLimitConfig{
			VerifyPerMinute: p.integer("VERIFY_RATE_LIMIT", 30),
			Window:          time.Minute,
			Disabled:        p.boolean("RATE_LIMIT_DISABLED", false),
		},
		Audit: AuditConfig{
			BufferSize:         p.integer("AUDIT_BUFFER_SIZE", 256),
			VerifiedSampleRate: p.float("AUDIT_VERIFIED_SAMPLE_RATE", 1),
		},
	}
	if p.err != nil {
		return Config{}, p.err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Codes.Length < 6 || c.Codes.Length > 32:
		return fmt.Errorf("CODE_LENGTH must be between 6 and 32, got %d", c.Codes.Length)
	case c.Codes.MaxAttempts < 1:
		return fmt.Errorf("CODE_MAX_ATTEMPTS must be positive, got %d", c.Codes.MaxAttempts)
	case c.RateLimit.VerifyPerMinute < 1:
		return fmt.Errorf("VERIFY_RATE_LIMIT must be positive, got %d", c.RateLimit.VerifyPerMinute)
	case c.Audit.VerifiedSampleRate < 0 || c.Audit.VerifiedSampleRate > 1:
		return fmt.Errorf("AUDIT_VERIFIED_SAMPLE_RATE must be between 0 and 1, got %g", c.Audit.VerifiedSampleRate)
	}
	return nil
}

// parser collects the first malformed value instead of failing per call.
type parser struct {
	err error
}

func (p *parser) str(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (p *parser) integer(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func (p *parser) boolean(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (p *parser) proxies(key string) []netip.Prefix {
	prefixes, err := metadata.ParseTrustedProxies(pstrings.SplitList(os.Getenv(key)))
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return nil
	}
	return prefixes
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
