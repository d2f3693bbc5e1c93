package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://backend.internal")
	t.Setenv("BACKEND_TIMEOUT", "5s")
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("UPLOAD_SETTLE_DELAY", "0s")

	cfg := Load()

	assert.Equal(t, "https://backend.internal", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.False(t, cfg.MinIO.Enabled())
	assert.Equal(t, time.Duration(0), cfg.Upload.SettleDelay)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"TZ", "BACKEND_BASE_URL", "BACKEND_TIMEOUT", "MAX_UPLOAD_MB",
		"UPLOAD_PROGRESS_STEP", "UPLOAD_PROGRESS_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 10, cfg.Upload.ProgressStep)
	assert.Equal(t, 200*time.Millisecond, cfg.Upload.ProgressInterval)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxBytes())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestUploadConfig_MaxBytes(t *testing.T) {
	assert.Zero(t, UploadConfig{}.MaxBytes())
	assert.Equal(t, int64(2*1024*1024), UploadConfig{MaxUploadMB: 2}.MaxBytes())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"
	t.Setenv(key, "750ms")
	assert.Equal(t, 750*time.Millisecond, getEnvDuration(key, time.Second))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_FLOAT_VAR"
	t.Setenv(key, "2.5")
	assert.Equal(t, 2.5, getEnvFloat(key, 1))

	t.Setenv(key, "x")
	assert.Equal(t, 1.0, getEnvFloat(key, 1))
}
