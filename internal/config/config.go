// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"swapgate/internal/upstream"
)

// Config holds all runtime configuration for the swap gateway.
type Config struct {
	Port     int
	LogLevel string

	// RPC endpoints, first entry preferred, later entries are failover.
	SolanaRPCs []string
	EVMRPCs    []string

	// Upstream aggregator endpoints.
	JupiterBaseURL string
	OneInchBaseURL string
	OneInchAPIKey  string
	ZeroExBaseURL  string
	MidgardBaseURL string

	// Protocol fee destinations per network.
	FeeSolWallet string
	FeeEVMWallet string
	FeeBTCWallet string

	// Rate limiting.
	RateWindow       time.Duration
	QuoteRateLimit   int
	ExecuteRateLimit int

	// Quote cache.
	QuoteCacheTTL    time.Duration
	BTCQuoteCacheTTL time.Duration

	// Upstream and execution guards.
	UpstreamTimeout time.Duration
	MaxPriceImpact  float64

	// Optional audit store backends. Empty means in-memory.
	PostgresDSN   string
	ClickhouseDSN string

	// HTTP server.
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	rateWindow, err := getDuration("RATE_WINDOW", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_WINDOW: %w", err)
	}

	quoteRateLimit, err := getInt("QUOTE_RATE_LIMIT", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_RATE_LIMIT: %w", err)
	}

	executeRateLimit, err := getInt("EXECUTE_RATE_LIMIT", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid EXECUTE_RATE_LIMIT: %w", err)
	}

	quoteCacheTTL, err := getDuration("QUOTE_CACHE_TTL", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_CACHE_TTL: %w", err)
	}

	btcQuoteCacheTTL, err := getDuration("BTC_QUOTE_CACHE_TTL", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid BTC_QUOTE_CACHE_TTL: %w", err)
	}

	upstreamTimeout, err := getDuration("UPSTREAM_TIMEOUT", upstream.DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}

	maxPriceImpact, err := getFloat("MAX_PRICE_IMPACT", 0.20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_PRICE_IMPACT: %w", err)
	}
	if maxPriceImpact <= 0 || maxPriceImpact >= 1 {
		return nil, fmt.Errorf("invalid MAX_PRICE_IMPACT: %v, must be a fraction in (0, 1)", maxPriceImpact)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:     port,
		LogLevel: logLevel,

		SolanaRPCs: endpoints(
			getStr("SOLANA_RPC_1", "https://api.mainnet-beta.solana.com"),
			getStr("SOLANA_RPC_2", ""),
		),
		EVMRPCs: endpoints(
			getStr("EVM_RPC_1", "https://eth.llamarpc.com"),
			getStr("EVM_RPC_2", ""),
		),

		JupiterBaseURL: getStr("JUPITER_BASE_URL", upstream.DefaultJupiterBaseURL),
		OneInchBaseURL: getStr("ONEINCH_BASE_URL", upstream.DefaultOneInchBaseURL),
		OneInchAPIKey:  getStr("ONEINCH_API_KEY", ""),
		ZeroExBaseURL:  getStr("ZEROEX_BASE_URL", upstream.DefaultZeroExBaseURL),
		MidgardBaseURL: getStr("MIDGARD_BASE_URL", upstream.DefaultMidgardBaseURL),

		FeeSolWallet: getStr("FEE_SOL_WALLET", ""),
		FeeEVMWallet: getStr("FEE_EVM_WALLET", ""),
		FeeBTCWallet: getStr("FEE_BTC_WALLET", ""),

		RateWindow:       rateWindow,
		QuoteRateLimit:   quoteRateLimit,
		ExecuteRateLimit: executeRateLimit,

		QuoteCacheTTL:    quoteCacheTTL,
		BTCQuoteCacheTTL: btcQuoteCacheTTL,

		UpstreamTimeout: upstreamTimeout,
		MaxPriceImpact:  maxPriceImpact,

		PostgresDSN:   getStr("POSTGRES_DSN", ""),
		ClickhouseDSN: getStr("CLICKHOUSE_DSN", ""),

		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// endpoints collects the non-empty values in order.
func endpoints(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
