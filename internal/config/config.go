package config

import (
	"os"
	"strconv"
	"time"
)

// BackendConfig points the gateway at the remote candidate service. BaseURL
// is the only place the backend address is configured.
type BackendConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// UploadConfig tunes the upload sessions.
type UploadConfig struct {
	MaxUploadMB      int
	ProgressStep     int
	ProgressInterval time.Duration
	SettleDelay      time.Duration
}

// MaxBytes returns the upload limit in bytes, zero meaning unlimited.
func (u UploadConfig) MaxBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 0
	}
	return int64(u.MaxUploadMB) * 1024 * 1024
}

// DatabaseConfig holds PostgreSQL settings for the document registry. When
// Host is empty the registry is kept in memory.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a database was configured.
func (d DatabaseConfig) Enabled() bool { return d.Host != "" }

// MinIOConfig holds object storage settings for the archive of submitted
// originals. When Endpoint is empty archiving is disabled.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLExpiry time.Duration
}

// Enabled reports whether object storage was configured.
func (m MinIOConfig) Enabled() bool { return m.Endpoint != "" }

// RateLimitConfig limits console requests per client IP.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	LogLevel  string
	TimeZone  string
	Backend   BackendConfig
	Upload    UploadConfig
	Database  DatabaseConfig
	MinIO     MinIOConfig
	RateLimit RateLimitConfig
}

// Location resolves TimeZone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		TimeZone: getEnv("TZ", "UTC"),
		Backend: BackendConfig{
			BaseURL:           getEnv("BACKEND_BASE_URL", "http://localhost:5000"),
			Timeout:           getEnvDuration("BACKEND_TIMEOUT", 30*time.Second),
			RequestsPerSecond: getEnvFloat("BACKEND_REQUESTS_PER_SECOND", 0),
			Burst:             getEnvInt("BACKEND_BURST", 1),
		},
		Upload: UploadConfig{
			MaxUploadMB:      getEnvInt("MAX_UPLOAD_MB", 10),
			ProgressStep:     getEnvInt("UPLOAD_PROGRESS_STEP", 10),
			ProgressInterval: getEnvDuration("UPLOAD_PROGRESS_INTERVAL", 200*time.Millisecond),
			SettleDelay:      getEnvDuration("UPLOAD_SETTLE_DELAY", 500*time.Millisecond),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			URLExpiry: getEnvDuration("MINIO_URL_EXPIRY", 15*time.Minute),
		},
		RateLimit: RateLimitConfig{
			PerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 5),
			Burst:     getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getEnvDuration accepts Go duration syntax ("750ms", "30s").
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
