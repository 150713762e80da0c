package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server configuration
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Event lifecycle configuration
	ReconcileInterval   time.Duration
	HorizonScanInterval time.Duration
	ReminderLeads       []time.Duration

	// Inventory configuration
	LowStockInterval time.Duration

	// Rate limiting
	RateLimitPerMinute int

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Event lifecycle
		ReconcileInterval:   getEnvAsDuration("RECONCILE_INTERVAL", "5m"),
		HorizonScanInterval: getEnvAsDuration("HORIZON_SCAN_INTERVAL", "1h"),
		ReminderLeads:       getEnvAsDurationList("REMINDER_LEADS", "24h,1h"),

		// Inventory
		LowStockInterval: getEnvAsDuration("LOW_STOCK_INTERVAL", "1h"),

		// Rate limiting
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsDurationList(key string, defaultValue string) []time.Duration {
	valueStr := getEnv(key, defaultValue)

	parse := func(s string) []time.Duration {
		var out []time.Duration
		for _, part := range strings.Split(s, ",") {
			d, err := time.ParseDuration(strings.TrimSpace(part))
			if err != nil || d <= 0 {
				return nil
			}
			out = append(out, d)
		}
		return out
	}

	if leads := parse(valueStr); leads != nil {
		return leads
	}
	return parse(defaultValue)
}
