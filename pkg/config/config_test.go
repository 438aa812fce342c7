package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DatabaseConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("DB_HOST", "test-db")
	os.Setenv("DB_NAME", "orflow_test")
	defer func() {
		os.Unsetenv("DB_HOST")
		os.Unsetenv("DB_NAME")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify database config
	assert.Equal(t, "test-db", cfg.Database.Host)
	assert.Equal(t, "orflow_test", cfg.Database.Database)
	assert.Equal(t, "host=test-db port=5432 user=postgres password= dbname=orflow_test sslmode=disable", cfg.Database.DatabaseDSN())
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("DB_HOST")
	os.Unsetenv("DB_NAME")
	os.Unsetenv("RULE_CACHE_TTL_SECONDS")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "orflow", cfg.Database.Database)
	assert.Equal(t, 60, cfg.Engine.RuleCacheTTLSeconds)
	assert.False(t, cfg.OTEL.Enabled)
}

func TestLoad_RedisAddr(t *testing.T) {
	os.Setenv("REDIS_HOST", "cache-host")
	os.Setenv("REDIS_PORT", "6380")
	defer func() {
		os.Unsetenv("REDIS_HOST")
		os.Unsetenv("REDIS_PORT")
	}()

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "cache-host:6380", cfg.Redis.RedisAddr())
}
