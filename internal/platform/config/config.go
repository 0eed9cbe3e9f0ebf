package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"vaxreg/pkg/domain"
)

// Server captures process-level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	RequestTimeout time.Duration
	AdminAPIToken  string
	MinAge         int
	// Timezone is the IANA zone whose calendar date counts as "today" for the age rule.
	Timezone string
	// SeedDemoData loads demo registrations at startup. Ignored outside dev.
	SeedDemoData bool

	Database Database
	Redis    Redis
	Cache    Cache
	Kafka    Kafka
	Tracing  Tracing
}

// Database configures the Postgres registration store. An empty URL selects the in-memory store.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// Redis configures the shared registration cache. An empty URL disables it.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Cache struct {
	TTL   time.Duration
	Local bool
}

// Kafka configures the audit event sink. Empty brokers keep audit events in memory.
type Kafka struct {
	Brokers    string
	AuditTopic string
	Acks       string
}

type Tracing struct {
	Exporter     string
	OTLPEndpoint string
	SampleRate   float64
}

// DefaultRegistrationCacheTTL bounds how long a cached record may outlive a delete on another replica.
var DefaultRegistrationCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           envString("VAXREG_ADDR", ":8080"),
		Environment:    envString("ENVIRONMENT", "dev"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
		AdminAPIToken:  os.Getenv("ADMIN_API_TOKEN"),
		MinAge:         envInt("MIN_REGISTRATION_AGE", domain.MinimumRegistrationAge),
		SeedDemoData:   envBool("SEED_DEMO_DATA", false),
		Timezone:       envString("REGISTRATION_TIMEZONE", "UTC"),
		Database: Database{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     envBool("DB_AUTO_MIGRATE", true),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Cache: Cache{
			TTL:   envDuration("REGISTRATION_CACHE_TTL", DefaultRegistrationCacheTTL),
			Local: envBool("REGISTRATION_LOCAL_CACHE", false),
		},
		Kafka: Kafka{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: envString("KAFKA_AUDIT_TOPIC", "registration-events"),
			Acks:       envString("KAFKA_ACKS", "all"),
		},
		Tracing: Tracing{
			Exporter:     strings.ToLower(envString("TRACING_EXPORTER", "none")),
			OTLPEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   envFloat("TRACING_SAMPLE_RATE", 1.0),
		},
	}
}

// IsDev reports whether the server runs outside production.
func (s Server) IsDev() bool {
	return s.Environment == "" || s.Environment == "dev" || s.Environment == "local"
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			return f
		}
	}
	return fallback
}
