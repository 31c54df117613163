package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerHost     string
	ServerPort     string
	AuditPort      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	RateLimitRPS   int
	RateLimitBurst int

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers          []string
	KafkaGroupID          string
	AssessmentEventsTopic string
	EventsEnabled         bool
	PublishTimeout        time.Duration

	// Upload staging
	StagingBackend string
	StagingTTL     time.Duration

	// Engine
	PreviewRows      int
	TextProfilesPath string
	RandomSeed       uint64

	// Audit
	DLPRulesPath string
}

func Load() *Config {
	return &Config{
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:     getEnv("SERVER_PORT", "7860"),
		AuditPort:      getEnv("AUDIT_PORT", "7861"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxUploadBytes: int64(getIntEnv("MAX_UPLOAD_BYTES", 16*1024*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "healthlab"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "healthlab"),
		PostgresDB:       getEnv("POSTGRES_DB", "healthlab"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:          getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:          getEnv("KAFKA_GROUP_ID", "healthlab-audit"),
		AssessmentEventsTopic: getEnv("ASSESSMENT_EVENTS_TOPIC", "assessment-events"),
		EventsEnabled:         getBoolEnv("EVENTS_ENABLED", false),
		PublishTimeout:        getDuration("EVENTS_PUBLISH_TIMEOUT", 2*time.Second),

		StagingBackend: getEnv("STAGING_BACKEND", "memory"),
		StagingTTL:     getDuration("STAGING_TTL", 30*time.Minute),

		PreviewRows:      getIntEnv("PREVIEW_ROWS", 10),
		TextProfilesPath: getEnv("TEXT_PROFILES_PATH", ""),
		RandomSeed:       uint64(getIntEnv("RANDOM_SEED", 0)),

		DLPRulesPath: getEnv("DLP_RULES_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
