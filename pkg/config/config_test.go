package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, StoreDriverFile, cfg.Store.Driver)
	assert.Equal(t, "./data", cfg.Store.DataDir)
	assert.Equal(t, "ipk_semesters", cfg.Store.TranscriptKey)
	assert.Equal(t, "ipk_achievements", cfg.Store.AchievementKey)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.TextfilePath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", " PostgreSQL ")
	t.Setenv("DB_NAME", "transcripts")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("EXPORT_DIR", "/tmp/out")
	t.Setenv("METRICS_TEXTFILE", "/var/lib/node_exporter/ipk.prom")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "transcripts", cfg.Database.Name)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "/tmp/out", cfg.Export.Dir)
	assert.Equal(t, "/var/lib/node_exporter/ipk.prom", cfg.Metrics.TextfilePath)
}

func TestNormalizeDriver(t *testing.T) {
	assert.Equal(t, StoreDriverRedis, normalizeDriver("redis"))
	assert.Equal(t, StoreDriverPostgres, normalizeDriver("pg"))
	assert.Equal(t, StoreDriverFile, normalizeDriver("sqlite"))
	assert.Equal(t, StoreDriverFile, normalizeDriver(""))
}
