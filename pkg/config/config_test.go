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

	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "beaesthetic", cfg.Mongo.Database)
	assert.Equal(t, 512, cfg.Cache.MaxEntries)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTLClosed)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTLOpen)
	assert.Equal(t, 3, cfg.Insights.InactiveMonths)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoad_CacheSettings(t *testing.T) {
	t.Setenv("ANALYTICS_CACHE_MAXSIZE", "64")
	t.Setenv("ANALYTICS_CACHE_TTL_CLOSED", "3600")
	t.Setenv("ANALYTICS_CACHE_TTL_OPEN", "90s")
	t.Setenv("ANALYTICS_INSIGHT_INACTIVE_MONTHS", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Cache.MaxEntries)
	assert.Equal(t, time.Hour, cfg.Cache.TTLClosed)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTLOpen)
	assert.Equal(t, 6, cfg.Insights.InactiveMonths)
}

func TestLoad_MongoSettings(t *testing.T) {
	t.Setenv("ANALYTICS_MONGODB_URI", "mongodb://mongo:27017/?replicaSet=rs0")
	t.Setenv("ANALYTICS_MONGODB_DATABASE", "agenda_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://mongo:27017/?replicaSet=rs0", cfg.Mongo.URI)
	assert.Equal(t, "agenda_test", cfg.Mongo.Database)
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	t.Run("unknown store driver", func(t *testing.T) {
		t.Setenv("ANALYTICS_STORE_DRIVER", "cassandra")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("zero cache size", func(t *testing.T) {
		t.Setenv("ANALYTICS_CACHE_MAXSIZE", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, getEnvAsList("ALLOWED_ORIGINS", nil))
}
