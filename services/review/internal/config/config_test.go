package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8002, cfg.HTTPPort)
	assert.Equal(t, "review_db", cfg.PostgresDB)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://localhost:8001", cfg.StallServiceURL)
	assert.Equal(t, 5*time.Second, cfg.StallClientTimeout())
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("REVIEW_HTTP_PORT", "99999")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidClientTimeout(t *testing.T) {
	t.Setenv("STALL_CLIENT_TIMEOUT_SECONDS", "0")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "STALL_CLIENT_TIMEOUT_SECONDS")
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("REVIEW_HTTP_PORT", "9102")
	t.Setenv("REVIEW_DB_NAME", "review_test")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("STALL_SERVICE_URL", "http://stall.internal:8001")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9102, cfg.HTTPPort)
	assert.Equal(t, "review_test", cfg.PostgresDB)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://stall.internal:8001", cfg.StallServiceURL)
}

func TestPostgresConfig(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.Postgres()
	assert.Equal(t, "review_db", pg.DBName)
	assert.Equal(t, int32(25), pg.MaxConns)
	assert.Equal(t, time.Hour, pg.MaxConnLifetime)
}
