package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: scoring-manager
  version: 1.4.0
camunda:
  broker_address: zeebe:26500
database:
  postgres:
    host: localhost
    database: psytest
    user: psytest
    password: ${SCORING_TEST_DB_PASSWORD}
  redis:
    address: localhost:6379
workers:
  assign-test-result:
    enabled: true
    max_jobs_active: 20
  validate-scoring-pattern:
    enabled: false
scoring:
  pattern_cache_ttl: 600000
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("SCORING_TEST_DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 3, cfg.Scoring.UsageRetryAttempts)
	assert.Equal(t, 100, cfg.Scoring.UsageRetryInitialInterval)
	assert.Equal(t, "NO_MATCH", cfg.Scoring.NoMatchResultCode)
	assert.Equal(t, "user-test-results", cfg.Scoring.ResultsIndex)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Minute, GetDuration(cfg.Scoring.PatternCacheTTL))

	assign := GetWorkerConfig(cfg, "assign-test-result")
	assert.Equal(t, 20, assign.MaxJobsActive)
	assert.Equal(t, 30000, assign.Timeout)
	assert.Equal(t, 3, assign.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "validate-scoring-pattern"))
	assert.True(t, IsWorkerEnabled(cfg, "record-result-access"))
}

func TestLoadFromFile_EnvironmentOverride(t *testing.T) {
	t.Setenv("DATABASE_POSTGRES_HOST", "db.internal")
	t.Setenv("SCORING_NO_MATCH_RESULT_CODE", "UNCLASSIFIED")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "UNCLASSIFIED", cfg.Scoring.NoMatchResultCode)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "database:\n  postgres:\n    host: h\n    database: d\n    user: u\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "cache without redis",
			body:    "camunda:\n  broker_address: z:1\ndatabase:\n  postgres:\n    host: h\n    database: d\n    user: u\nscoring:\n  pattern_cache_ttl: 1000\n",
			wantErr: "database.redis.address is required",
		},
		{
			name:    "elasticsearch enabled without address",
			body:    "camunda:\n  broker_address: z:1\ndatabase:\n  postgres:\n    host: h\n    database: d\n    user: u\n  elasticsearch:\n    enabled: true\n",
			wantErr: "database.elasticsearch.addresses or url is required",
		},
		{
			name:    "negative usage retries",
			body:    "camunda:\n  broker_address: z:1\ndatabase:\n  postgres:\n    host: h\n    database: d\n    user: u\nscoring:\n  usage_retry_attempts: -1\n",
			wantErr: "scoring.usage_retry_attempts must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig_URLs(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, Database: "psytest", User: "app", Password: "p@ss", SSLMode: "require"}

	assert.Equal(t, "host=db port=5433 user=app password=p@ss dbname=psytest sslmode=require", p.GetDSN())
	assert.Equal(t, "postgres://app:p%40ss@db:5433/psytest?sslmode=require", p.GetURL())
}
