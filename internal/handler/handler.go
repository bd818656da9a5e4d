// Package handler exposes the HTTP surface of the gateway: quote lookups,
// execution building, health, and metrics.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"swapgate/internal/execution"
	"swapgate/internal/observability"
	"swapgate/internal/quotecache"
	"swapgate/internal/ratelimit"
	"swapgate/internal/router"
	"swapgate/internal/storage"
	"swapgate/internal/storage/memory"
)

// Handler owns the request-scoped components. Everything is constructed
// once at process start and shared across requests; the limiter and cache
// guard their own state.
type Handler struct {
	router  *router.Router
	builder *execution.Builder
	limiter *ratelimit.Limiter
	cache   *quotecache.Cache

	quoteTTL    time.Duration
	btcQuoteTTL time.Duration

	events  storage.SwapEventStore
	metrics storage.QuoteMetricStore

	logger  *slog.Logger
	started time.Time
	now     func() time.Time
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithQuoteTTLs overrides the cache lifetimes. BTC quotes live longer
// since Thorchain inbound addresses rotate slowly.
func WithQuoteTTLs(standard, btc time.Duration) Option {
	return func(h *Handler) {
		if standard > 0 {
			h.quoteTTL = standard
		}
		if btc > 0 {
			h.btcQuoteTTL = btc
		}
	}
}

// WithAuditStores overrides the best-effort audit backends.
func WithAuditStores(events storage.SwapEventStore, metrics storage.QuoteMetricStore) Option {
	return func(h *Handler) {
		if events != nil {
			h.events = events
		}
		if metrics != nil {
			h.metrics = metrics
		}
	}
}

func New(rt *router.Router, builder *execution.Builder, limiter *ratelimit.Limiter, cache *quotecache.Cache, opts ...Option) *Handler {
	h := &Handler{
		router:      rt,
		builder:     builder,
		limiter:     limiter,
		cache:       cache,
		quoteTTL:    2 * time.Second,
		btcQuoteTTL: 5 * time.Second,
		events:      memory.NewSwapEventStore(),
		metrics:     memory.NewQuoteMetricStore(),
		logger:      slog.Default(),
		started:     time.Now(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes assembles the chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.requestID)
	r.Use(h.requestLogger)
	r.Use(securityHeaders)

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", observability.Handler())

	r.Route("/quote", func(r chi.Router) {
		r.Use(h.rateLimit(ratelimit.ClassQuote))
		r.Get("/solana", h.handleQuoteSolana)
		r.Get("/evm", h.handleQuoteEVM)
		r.Get("/btc", h.handleQuoteBitcoin)
		r.Get("/universal", h.handleQuoteUniversal)
	})

	r.Route("/execute", func(r chi.Router) {
		r.Use(h.rateLimit(ratelimit.ClassExecute))
		r.Post("/solana", h.handleExecuteSolana)
		r.Post("/evm", h.handleExecuteEVM)
		r.Post("/btc", h.handleExecuteBitcoin)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"uptimeSeconds": int64(h.now().Sub(h.started).Seconds()),
	})
}
