package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneralConfigLoad(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ADMIN_API_KEY", "k")

	conf := &GeneralConfig{}
	require.NoError(t, conf.Load())

	assert.Equal(t, "9090", conf.HTTPPort)
	assert.Equal(t, "k", conf.AdminAPIKey)
	assert.Equal(t, 10, conf.RateLimit)
	assert.Equal(t, 20, conf.RateBurst)
	assert.Equal(t, GENERAL_CONFIG_KEY, conf.Key())
}

func TestGeneralConfigRejectsBurstBelowRate(t *testing.T) {
	t.Setenv("HTTP_RATE_LIMIT", "50")
	t.Setenv("HTTP_RATE_BURST", "5")
	assert.Error(t, (&GeneralConfig{}).Load())
}

func TestRouterConfig(t *testing.T) {
	conf := &RouterConfig{}
	require.NoError(t, conf.Load())
	assert.Equal(t, 3, conf.DefaultMaxHops)
	assert.Equal(t, 50, conf.DefaultSlippageBps)

	cases := map[string]map[string]string{
		"hops above limit": {"ROUTER_DEFAULT_MAX_HOPS": "7"},
		"zero hops":        {"ROUTER_DEFAULT_MAX_HOPS": "0"},
		"no parallelism":   {"ROUTER_PARALLELISM": "0"},
		"negative cache":   {"ROUTER_QUOTE_CACHE_SIZE": "-1"},
		"full slippage":    {"ROUTER_DEFAULT_SLIPPAGE_BPS": "10000"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			assert.Error(t, (&RouterConfig{}).Load())
		})
	}
}

func TestStorageConfig(t *testing.T) {
	t.Setenv("STORAGE_PERSIST_INTERVAL", "0")
	assert.Error(t, (&StorageConfig{}).Load())

	t.Setenv("STORAGE_PERSISTENCE_ENABLED", "false")
	assert.NoError(t, (&StorageConfig{}).Load())
}
