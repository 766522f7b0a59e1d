package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                 string
	DatabaseURL          string
	SessionSecret        string
	SessionStoreSecret   string
	SessionTTL           time.Duration
	SessionCookieName    string
	SessionCookieSecure  bool
	SessionPurgeInterval time.Duration
	BcryptCost           int
	AssetsBucket         string
	AssetsPrefix         string
	S3Region             string
	S3Endpoint           string
	S3AccessKey          string
	S3SecretKey          string
	MetricsEnabled       bool
	OTLPEndpoint         string
	OTLPInsecure         bool
	TraceSampleRatio     float64
	LogLevel             string
	LogFormat            string
}

func Load() Config {
	return Config{
		Port:                 readString("WEB_PORT", "3000"),
		DatabaseURL:          os.Getenv("DB_DSN"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		SessionStoreSecret:   os.Getenv("SESSION_STORE_SECRET"),
		SessionTTL:           readDuration("SESSION_TTL", time.Hour),
		SessionCookieName:    readString("SESSION_COOKIE_NAME", "sid"),
		SessionCookieSecure:  readBool("SESSION_COOKIE_SECURE", false),
		SessionPurgeInterval: readDuration("SESSION_PURGE_INTERVAL", 10*time.Minute),
		BcryptCost:           readInt("BCRYPT_COST", 12),
		AssetsBucket:         os.Getenv("ASSETS_BUCKET"),
		AssetsPrefix:         readString("ASSETS_PREFIX", "members/"),
		S3Region:             readString("S3_REGION", "us-east-1"),
		S3Endpoint:           os.Getenv("S3_ENDPOINT"),
		S3AccessKey:          os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:          os.Getenv("S3_SECRET_KEY"),
		MetricsEnabled:       readBool("METRICS_ENABLED", true),
		OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:         readBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSampleRatio:     readFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		LogLevel:             readString("LOG_LEVEL", "info"),
		LogFormat:            readString("LOG_FORMAT", "json"),
	}
}

func readString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// readDuration accepts Go duration strings ("90m") or bare seconds.
func readDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if value, err := time.ParseDuration(raw); err == nil && value > 0 {
		return value
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func readFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
