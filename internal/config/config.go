package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	RedisAddress   string
	RedisPassword  string
	BackendBaseURL string
	RabbitMQURL    string
	QueueName      string
	SessionTTL     time.Duration
	PollInterval   time.Duration
	AllowedOrigins []string
}

func Load() *Config {
	backendURL := os.Getenv("BACKEND_BASE_URL")
	if backendURL == "" {
		panic("BACKEND_BASE_URL environment variable is required")
	}

	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		panic("REDIS_ADDRESS environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	queueName := os.Getenv("NOTIFICATION_QUEUE_NAME")
	if queueName == "" {
		queueName = "notifications"
	}

	origins := []string{"*"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	return &Config{
		Port:           port,
		RedisAddress:   redisAddr,
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		BackendBaseURL: strings.TrimRight(backendURL, "/"),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		QueueName:      queueName,
		SessionTTL:     durationEnv("SESSION_TTL", 24*time.Hour),
		PollInterval:   durationEnv("NOTIFICATION_POLL_INTERVAL", 30*time.Second),
		AllowedOrigins: origins,
	}
}

func durationEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// Bare numbers are read as seconds.
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
