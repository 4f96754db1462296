package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Attendance AttendanceConfig
	Leave      LeaveConfig
	Storage    string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
}

// RedisConfig enables Idempotency-Key handling when Addr is set.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

// KafkaConfig enables the audit relay when Brokers is not empty.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	RelayInterval time.Duration
}

type AttendanceConfig struct {
	ExpectedCheckIn  workday.Clock
	ExpectedCheckOut workday.Clock
	RatePerMinute    int
}

type LeaveConfig struct {
	Allocations          leave.Allocations
	OverdrawRequiresFlag bool
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_leave_ledger"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       logLevel,
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	accessExpiration, err := getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", time.Hour)
	if err != nil {
		return nil, err
	}
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	idempotencyTTL, err := getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	config.Redis = RedisConfig{
		Addr:           getEnv("REDIS_ADDR", ""),
		Password:       getEnv("REDIS_PASSWORD", ""),
		DB:             redisDB,
		IdempotencyTTL: idempotencyTTL,
	}

	relayInterval, err := getEnvDuration("AUDIT_RELAY_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, err
	}
	config.Kafka = KafkaConfig{
		Brokers:       getEnvSlice("KAFKA_BROKERS", nil),
		AuditTopic:    getEnv("KAFKA_AUDIT_TOPIC", "hris.audit-logs"),
		RelayInterval: relayInterval,
	}

	checkIn, err := getEnvClock("ATTENDANCE_EXPECTED_CHECK_IN", workday.DefaultExpectedCheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := getEnvClock("ATTENDANCE_EXPECTED_CHECK_OUT", workday.DefaultExpectedCheckOut)
	if err != nil {
		return nil, err
	}
	ratePerMinute, err := getEnvInt("ATTENDANCE_RATE_PER_MINUTE", 30)
	if err != nil {
		return nil, err
	}
	config.Attendance = AttendanceConfig{
		ExpectedCheckIn:  checkIn,
		ExpectedCheckOut: checkOut,
		RatePerMinute:    ratePerMinute,
	}

	allocations, err := leave.ParseAllocations(leave.DefaultAllocations(), getEnv("LEAVE_DEFAULT_ALLOCATIONS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_DEFAULT_ALLOCATIONS: %w", err)
	}
	overdrawRequiresFlag, err := getEnvBool("LEAVE_OVERDRAW_REQUIRES_FLAG", false)
	if err != nil {
		return nil, err
	}
	config.Leave = LeaveConfig{
		Allocations:          allocations,
		OverdrawRequiresFlag: overdrawRequiresFlag,
	}

	config.Storage = strings.ToLower(getEnv("STORAGE", StoragePostgres))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch c.Storage {
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	}
	if c.Attendance.ExpectedCheckOut <= c.Attendance.ExpectedCheckIn {
		return fmt.Errorf("ATTENDANCE_EXPECTED_CHECK_OUT must be after ATTENDANCE_EXPECTED_CHECK_IN")
	}
	if c.Attendance.RatePerMinute < 0 {
		return fmt.Errorf("ATTENDANCE_RATE_PER_MINUTE must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvClock(key string, fallback workday.Clock) (workday.Clock, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	c, err := workday.ParseClock(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return c, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
