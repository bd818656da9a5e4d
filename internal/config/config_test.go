package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "LOG_LEVEL",
	"SOLANA_RPC_1", "SOLANA_RPC_2", "EVM_RPC_1", "EVM_RPC_2",
	"JUPITER_BASE_URL", "ONEINCH_BASE_URL", "ONEINCH_API_KEY",
	"ZEROEX_BASE_URL", "MIDGARD_BASE_URL",
	"FEE_SOL_WALLET", "FEE_EVM_WALLET", "FEE_BTC_WALLET",
	"RATE_WINDOW", "QUOTE_RATE_LIMIT", "EXECUTE_RATE_LIMIT",
	"QUOTE_CACHE_TTL", "BTC_QUOTE_CACHE_TTL",
	"UPSTREAM_TIMEOUT", "MAX_PRICE_IMPACT",
	"POSTGRES_DSN", "CLICKHOUSE_DSN",
	"READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"https://api.mainnet-beta.solana.com"}, cfg.SolanaRPCs)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
	assert.Equal(t, 30, cfg.QuoteRateLimit)
	assert.Equal(t, 10, cfg.ExecuteRateLimit)
	assert.Equal(t, 2*time.Second, cfg.QuoteCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.BTCQuoteCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 0.20, cfg.MaxPriceImpact)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Empty(t, cfg.ClickhouseDSN)
	assert.NotEmpty(t, cfg.JupiterBaseURL)
	assert.NotEmpty(t, cfg.MidgardBaseURL)
}

func TestLoadCustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SOLANA_RPC_1", "http://localhost:8899")
	t.Setenv("SOLANA_RPC_2", "http://localhost:8900")
	t.Setenv("RATE_WINDOW", "10s")
	t.Setenv("QUOTE_RATE_LIMIT", "5")
	t.Setenv("MAX_PRICE_IMPACT", "0.05")
	t.Setenv("ONEINCH_API_KEY", "secret")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost:5432/audit")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:8899", "http://localhost:8900"}, cfg.SolanaRPCs)
	assert.Equal(t, 10*time.Second, cfg.RateWindow)
	assert.Equal(t, 5, cfg.QuoteRateLimit)
	assert.Equal(t, 0.05, cfg.MaxPriceImpact)
	assert.Equal(t, "secret", cfg.OneInchAPIKey)
	assert.Equal(t, "postgres://u:p@localhost:5432/audit", cfg.PostgresDSN)
}

func TestLoadInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad port", key: "PORT", value: "not-a-port"},
		{name: "bad log level", key: "LOG_LEVEL", value: "verbose"},
		{name: "bad window", key: "RATE_WINDOW", value: "30"},
		{name: "bad ttl", key: "QUOTE_CACHE_TTL", value: "fast"},
		{name: "impact not a number", key: "MAX_PRICE_IMPACT", value: "one fifth"},
		{name: "impact too large", key: "MAX_PRICE_IMPACT", value: "1.5"},
		{name: "impact zero", key: "MAX_PRICE_IMPACT", value: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
