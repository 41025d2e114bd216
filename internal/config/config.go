package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DuplicatePolicy decides which earlier reservations block a new one for the same participant.
type DuplicatePolicy string

const (
	// DuplicatePolicyActive only counts reservations that are not CANCELED.
	DuplicatePolicyActive DuplicatePolicy = "active"
	// DuplicatePolicyAny counts every reservation regardless of status.
	DuplicatePolicyAny DuplicatePolicy = "any"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App         AppConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Logger      LoggerConfig
	Auth        AuthConfig
	Reservation ReservationConfig
	Broker      BrokerConfig
	Metrics     MetricsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// TicketFontPath is an optional UTF-8 TrueType font for ticket PDFs.
	TicketFontPath        string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	AdminEmail            string
	AdminPassword         string
}

// ReservationConfig holds the reservation engine policies.
type ReservationConfig struct {
	DuplicatePolicy   DuplicatePolicy
	StrictTransitions bool
	AdmissionLock     bool
	LockTTLMillis     int
}

// BrokerConfig configures the AMQP broker used for confirmation messages.
type BrokerConfig struct {
	URL                  string
	ConfirmedQueue       string
	ConsumeAuditLog      bool
	// bounds connect and handshake for each confirmation publish
	PublishTimeoutMillis int
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	policy, err := parseDuplicatePolicy(getEnv("RESERVATION_DUPLICATE_POLICY", string(DuplicatePolicyActive)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "evently"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			TicketFontPath:        os.Getenv("TICKET_FONT_PATH"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AdminEmail:            os.Getenv("ADMIN_EMAIL"),
			AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		},
		Reservation: ReservationConfig{
			DuplicatePolicy:   policy,
			StrictTransitions: getEnvAsBool("RESERVATION_STRICT_TRANSITIONS", false),
			AdmissionLock:     getEnvAsBool("RESERVATION_ADMISSION_LOCK", false),
			LockTTLMillis:     getEnvAsInt("RESERVATION_LOCK_TTL_MS", 5000),
		},
		Broker: BrokerConfig{
			URL:                  os.Getenv("AMQP_URL"),
			ConfirmedQueue:       getEnv("AMQP_CONFIRMED_QUEUE", "reservation.confirmed"),
			ConsumeAuditLog:      getEnvAsBool("AMQP_CONSUME_AUDIT_LOG", false),
			PublishTimeoutMillis: getEnvAsInt("AMQP_PUBLISH_TIMEOUT_MS", 3000),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// LockTTL returns the admission lock expiry.
func (r ReservationConfig) LockTTL() time.Duration {
	if r.LockTTLMillis <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.LockTTLMillis) * time.Millisecond
}

func parseDuplicatePolicy(val string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(val))) {
	case DuplicatePolicyActive:
		return DuplicatePolicyActive, nil
	case DuplicatePolicyAny:
		return DuplicatePolicyAny, nil
	default:
		return "", fmt.Errorf("invalid RESERVATION_DUPLICATE_POLICY %q: want %q or %q", val, DuplicatePolicyActive, DuplicatePolicyAny)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
