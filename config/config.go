package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting of the application.
type Config struct {
	DatabaseURL      string
	DBConnectTimeout time.Duration
	JWTSecretKey     string
	TokenTTL         time.Duration
	ServerPort       int
	MetricsPort      int

	CORSAllowedOrigins []string

	// Empty RedisAddr keeps revoked tokens in process memory.
	RedisAddr string

	// Empty KafkaBrokers disables event publishing.
	KafkaBrokers      []string
	KafkaTopicMatches string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads the configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := portFromEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	metricsPort, err := portFromEnv("METRICS_PORT", 9095)
	if err != nil {
		return nil, err
	}
	if metricsPort == port {
		return nil, fmt.Errorf("METRICS_PORT must differ from SERVER_PORT (%d)", port)
	}

	tokenTTL, err := durationFromEnv("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	connectTimeout, err := durationFromEnv("DB_CONNECT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	origins := listFromEnv("CORS_ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	topic := os.Getenv("KAFKA_TOPIC_MATCHES")
	if topic == "" {
		topic = "badminton.matches"
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		DBConnectTimeout:   connectTimeout,
		JWTSecretKey:       jwtKey,
		TokenTTL:           tokenTTL,
		ServerPort:         port,
		MetricsPort:        metricsPort,
		CORSAllowedOrigins: origins,
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		KafkaBrokers:       listFromEnv("KAFKA_BROKERS"),
		KafkaTopicMatches:  topic,
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

func portFromEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%s must be between 1 and 65535, got %d", key, port)
	}
	return port, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

// listFromEnv splits a comma separated variable, dropping blanks.
func listFromEnv(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
