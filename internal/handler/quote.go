package handler

import (
	"net/http"
	"time"

	"swapgate/internal/domain"
	"swapgate/internal/observability"
	"swapgate/internal/quotecache"
	"swapgate/internal/router"
	"swapgate/internal/validate"
)

// lookupRoute serves a quote through the cache. The fingerprint is scoped
// by network class so the universal endpoint shares entries with the
// network-specific ones.
func (h *Handler) lookupRoute(r *http.Request, network domain.NetworkClass, from, to string, amount uint64, address string) (*domain.Route, bool, error) {
	fingerprint := quotecache.Fingerprint(string(network), from, to, amount, address)

	if v, ok := h.cache.Get(fingerprint); ok {
		if route, ok := v.(*domain.Route); ok {
			observability.RecordCacheHit()
			return route, true, nil
		}
	}
	observability.RecordCacheMiss()

	var (
		route *domain.Route
		err   error
		ttl   = h.quoteTTL
	)
	switch network {
	case domain.NetworkSolana:
		route, err = h.router.QuoteSolana(r.Context(), from, to, amount)
	case domain.NetworkEVM:
		route, err = h.router.QuoteEVM(r.Context(), from, to, amount)
	default:
		route, err = h.router.QuoteBitcoin(r.Context(), to, amount)
		ttl = h.btcQuoteTTL
	}
	if err != nil {
		// No negative caching: the next attempt gets a fresh upstream look.
		return nil, false, err
	}

	h.cache.Put(fingerprint, route, ttl)
	return route, false, nil
}

// finishQuote records the outcome in metrics and the audit stores.
func (h *Handler) finishQuote(r *http.Request, network domain.NetworkClass, amount uint64, route *domain.Route, cacheHit bool, start time.Time, err error) {
	latency := time.Since(start).Milliseconds()
	event := &domain.SwapEventRecord{
		EventType: domain.EventTypeQuote,
		Network:   string(network),
		Caller:    callerIdentity(r),
		AmountIn:  amount,
		LatencyMs: latency,
	}

	if err != nil {
		event.Outcome = domain.OutcomeFailed
		event.ErrorReason = reasonFor(err)
		observability.RecordQuote(string(network), domain.OutcomeFailed)
		h.recordEvent(r.Context(), event)
		return
	}

	event.Outcome = domain.OutcomeSuccess
	event.Source = route.Source
	event.AmountOut = route.AmountOut
	observability.RecordQuote(string(network), domain.OutcomeSuccess)
	h.recordEvent(r.Context(), event)

	h.recordQuoteMetric(r.Context(), &domain.QuoteMetric{
		Network:     string(network),
		Source:      route.Source,
		AmountIn:    amount,
		AmountOut:   route.AmountOut,
		PriceImpact: route.PriceImpact,
		CacheHit:    cacheHit,
		LatencyMs:   latency,
	})
}

func (h *Handler) handleQuoteSolana(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	from, to, address := q.Get("from"), q.Get("to"), q.Get("address")

	amount, err := validate.Quote(from, to, q.Get("amount"), address, true)
	if err != nil {
		h.finishQuote(r, domain.NetworkSolana, amount, nil, false, start, err)
		h.fail(w, r, err)
		return
	}

	route, hit, err := h.lookupRoute(r, domain.NetworkSolana, from, to, amount, address)
	h.finishQuote(r, domain.NetworkSolana, amount, route, hit, start, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"route":          route.Payload,
		"bestAmountOut":  route.AmountOut,
		"priceImpactPct": route.PriceImpact,
	})
}

func (h *Handler) handleQuoteEVM(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	from, to, address := q.Get("from"), q.Get("to"), q.Get("address")

	amount, err := validate.Quote(from, to, q.Get("amount"), address, true)
	if err != nil {
		h.finishQuote(r, domain.NetworkEVM, amount, nil, false, start, err)
		h.fail(w, r, err)
		return
	}

	route, hit, err := h.lookupRoute(r, domain.NetworkEVM, from, to, amount, address)
	h.finishQuote(r, domain.NetworkEVM, amount, route, hit, start, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"bestSource": route.Source,
		"bestQuote":  route.Payload,
		"amountOut":  route.AmountOut,
	})
}

func (h *Handler) handleQuoteBitcoin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	to, address := q.Get("to"), q.Get("address")

	amount, err := validate.Quote("", to, q.Get("amount"), address, false)
	if err != nil {
		h.finishQuote(r, domain.NetworkBitcoin, amount, nil, false, start, err)
		h.fail(w, r, err)
		return
	}

	route, hit, err := h.lookupRoute(r, domain.NetworkBitcoin, "BTC", to, amount, address)
	h.finishQuote(r, domain.NetworkBitcoin, amount, route, hit, start, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"expectedAmountOut": route.AmountOut,
		"inboundAddress":    route.InboundAddress,
		"memo":              route.Memo,
		"fees":              route.Fees,
	})
}

func (h *Handler) handleQuoteUniversal(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	from, to, address := q.Get("from"), q.Get("to"), q.Get("address")

	amount, err := validate.Quote(from, to, q.Get("amount"), address, true)
	if err != nil {
		h.finishQuote(r, "", amount, nil, false, start, err)
		h.fail(w, r, err)
		return
	}

	network, err := router.Classify(from)
	if err != nil {
		h.finishQuote(r, "", amount, nil, false, start, err)
		h.fail(w, r, err, "from", from)
		return
	}

	route, hit, err := h.lookupRoute(r, network, from, to, amount, address)
	h.finishQuote(r, network, amount, route, hit, start, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := map[string]any{
		"success":   true,
		"chain":     network.String(),
		"source":    route.Source,
		"route":     route.Payload,
		"amountOut": route.AmountOut,
	}
	if route.InboundAddress != "" {
		resp["inboundAddress"] = route.InboundAddress
	}
	if route.Memo != "" {
		resp["memo"] = route.Memo
	}
	if q.Get("debug") == "true" {
		resp["debug"] = map[string]any{
			"rawPayload":  route.Payload,
			"priceImpact": route.PriceImpact,
			"cacheHit":    hit,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
