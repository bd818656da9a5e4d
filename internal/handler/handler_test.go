package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapgate/internal/domain"
	"swapgate/internal/execution"
	"swapgate/internal/quotecache"
	"swapgate/internal/ratelimit"
	"swapgate/internal/router"
	"swapgate/internal/storage/memory"
)

const (
	testOnCurveKey = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testEVMAddr    = "0x1111111111111111111111111111111111111111"
	testBTCAddr    = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
)

type stubSolanaSource struct {
	route *domain.Route
	calls int
}

func (s *stubSolanaSource) GetQuote(context.Context, string, string, uint64) *domain.Route {
	s.calls++
	return s.route
}

type stubEVMSource struct {
	route *domain.Route
}

func (s *stubEVMSource) GetQuote(context.Context, string, string, uint64) *domain.Route {
	return s.route
}

type stubBitcoinSource struct {
	route *domain.Route
}

func (s *stubBitcoinSource) GetQuote(context.Context, string, string, uint64) *domain.Route {
	return s.route
}

type stubJupiterBuilder struct{ tx string }

func (s *stubJupiterBuilder) BuildTransaction(context.Context, json.RawMessage, string) (string, error) {
	return s.tx, nil
}

type stubOneInchBuilder struct{ tx *domain.EVMTransaction }

func (s *stubOneInchBuilder) BuildSwap(context.Context, string, string, uint64, string) (*domain.EVMTransaction, error) {
	return s.tx, nil
}

type stubZeroExBuilder struct {
	tx     *domain.EVMTransaction
	impact float64
}

func (s *stubZeroExBuilder) BuildSwap(context.Context, string, string, uint64) (*domain.EVMTransaction, float64, error) {
	return s.tx, s.impact, nil
}

type stubThorchainBuilder struct {
	address string
	memo    string
}

func (s *stubThorchainBuilder) BuildSwap(_ context.Context, toAsset, userAddress string) (string, string, error) {
	return s.address, "SWAP:" + toAsset + ":" + userAddress, nil
}

type fixture struct {
	handler *Handler
	server  http.Handler
	solana  *stubSolanaSource
	events  *memory.SwapEventStore
	metrics *memory.QuoteMetricStore
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	solana := &stubSolanaSource{route: &domain.Route{
		Network:     domain.NetworkSolana,
		Source:      domain.SourceJupiter,
		AmountOut:   "985000",
		PriceImpact: 0.005,
		Payload:     json.RawMessage(`{"inAmount":"1000000","outAmount":"985000","priceImpactPct":"0.5"}`),
	}}
	oneInch := &stubEVMSource{route: &domain.Route{
		Network: domain.NetworkEVM, Source: domain.SourceOneInch, AmountOut: "100",
		Payload: json.RawMessage(`{"toAmount":"100"}`),
	}}
	zeroEx := &stubEVMSource{route: &domain.Route{
		Network: domain.NetworkEVM, Source: domain.SourceZeroEx, AmountOut: "250",
		Payload: json.RawMessage(`{"buyAmount":"250"}`),
	}}
	bitcoin := &stubBitcoinSource{route: &domain.Route{
		Network:        domain.NetworkBitcoin,
		Source:         domain.SourceThorchain,
		AmountOut:      "98000",
		InboundAddress: "bc1qvaultaddress",
		Memo:           "SWAP:ETH.ETH:" + testEVMAddr,
		Fees:           json.RawMessage(`{"outbound":"1500"}`),
	}}

	rt := router.New(solana, []router.EVMSource{oneInch, zeroEx}, bitcoin)

	builder := execution.New(
		&stubJupiterBuilder{tx: "c2VyaWFsaXplZA=="},
		&stubOneInchBuilder{tx: &domain.EVMTransaction{To: "0xrouter", Data: "0xcalldata", Value: "0"}},
		&stubZeroExBuilder{tx: &domain.EVMTransaction{To: "0xzrx", Data: "0xfill", Value: "0"}},
		&stubThorchainBuilder{address: "bc1qvaultaddress"},
		execution.FeeWallets{
			Solana:  "FeeWa11etSo1anaDest1nat1onAddressXXXXXXXXXX",
			EVM:     "0x2222222222222222222222222222222222222222",
			Bitcoin: "bc1qfeewallet",
		},
	)

	events := memory.NewSwapEventStore()
	metrics := memory.NewQuoteMetricStore()

	opts = append([]Option{WithAuditStores(events, metrics)}, opts...)
	h := New(rt, builder, ratelimit.New(30*time.Second, 30, 10), quotecache.New(), opts...)

	return &fixture{
		handler: h,
		server:  h.Routes(),
		solana:  solana,
		events:  events,
		metrics: metrics,
	}
}

func (f *fixture) get(t *testing.T, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "203.0.113.9:51234"
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func (f *fixture) post(t *testing.T, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:51234"
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestQuoteSolana(t *testing.T) {
	f := newFixture(t)

	rec, body := f.get(t, "/quote/solana?from=SOL&to="+testOnCurveKey+"&amount=1000000&address="+testOnCurveKey)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, "985000", body["bestAmountOut"])
	assert.InDelta(t, 0.005, body["priceImpactPct"], 1e-9)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestQuoteSolanaValidation(t *testing.T) {
	f := newFixture(t)

	rec, body := f.get(t, "/quote/solana?amount=abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	msg, _ := body["error"].(string)
	for _, field := range []string{"from", "to", "address", "amount"} {
		assert.Contains(t, msg, field)
	}
	assert.Zero(t, f.solana.calls, "validation failures must not reach upstream")
}

func TestQuoteEVMPicksBest(t *testing.T) {
	f := newFixture(t)

	rec, body := f.get(t, "/quote/evm?from="+testEVMAddr+"&to=0x3333333333333333333333333333333333333333&amount=500&address="+testEVMAddr)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SourceZeroEx, body["bestSource"])
	assert.Equal(t, "250", body["amountOut"])
}

func TestQuoteBitcoin(t *testing.T) {
	f := newFixture(t)

	rec, body := f.get(t, "/quote/btc?to=ETH.ETH&amount=100000&address="+testBTCAddr)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "98000", body["expectedAmountOut"])
	assert.Equal(t, "bc1qvaultaddress", body["inboundAddress"])
	assert.NotEmpty(t, body["memo"])
	assert.NotNil(t, body["fees"])
}

func TestQuoteUniversalBitcoinEndToEnd(t *testing.T) {
	f := newFixture(t)

	rec, body := f.get(t, "/quote/universal?from=BTC&to=ETH.ETH&amount=100000&address="+testBTCAddr)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, "BTC", body["chain"])
	assert.NotEmpty(t, body["inboundAddress"])
	assert.NotEmpty(t, body["memo"])

	amountOut, err := strconv.ParseUint(body["amountOut"].(string), 10, 64)
	require.NoError(t, err)
	assert.Positive(t, amountOut)
}

func TestQuoteUniversalUnsupportedAsset(t *testing.T) {
	f := newFixture(t)

	rec, body := f.get(t, "/quote/universal?from=DOGE&to=ETH&amount=100&address="+testEVMAddr)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestQuoteUniversalDebugEcho(t *testing.T) {
	f := newFixture(t)

	_, body := f.get(t, "/quote/universal?from=SOL&to="+testOnCurveKey+"&amount=1000000&address="+testOnCurveKey+"&debug=true")
	debug, ok := body["debug"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, debug, "rawPayload")

	_, body = f.get(t, "/quote/universal?from=SOL&to="+testOnCurveKey+"&amount=1000000&address="+testOnCurveKey)
	assert.NotContains(t, body, "debug")
}

func TestQuoteCacheServesRepeat(t *testing.T) {
	f := newFixture(t)
	path := "/quote/solana?from=SOL&to=" + testOnCurveKey + "&amount=1000000&address=" + testOnCurveKey

	f.get(t, path)
	f.get(t, path)
	assert.Equal(t, 1, f.solana.calls, "second identical request must come from the cache")

	metrics := f.metrics.All()
	require.Len(t, metrics, 2)
	assert.False(t, metrics[0].CacheHit)
	assert.True(t, metrics[1].CacheHit)
}

func TestQuoteNoRouteIs500(t *testing.T) {
	f := newFixture(t)
	f.solana.route = nil

	rec, body := f.get(t, "/quote/solana?from=SOL&to="+testOnCurveKey+"&amount=1000000&address="+testOnCurveKey)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestRateLimitRejectsWith400(t *testing.T) {
	f := newFixture(t)
	f.handler.limiter = ratelimit.New(30*time.Second, 2, 10)
	f.server = f.handler.Routes()

	path := "/quote/solana?from=SOL&to=" + testOnCurveKey + "&amount=1000000&address=" + testOnCurveKey
	for i := 0; i < 2; i++ {
		rec, _ := f.get(t, path)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body := f.get(t, path)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "rate limit")

	events := f.events.All()
	last := events[len(events)-1]
	assert.Equal(t, domain.OutcomeRejected, last.Outcome)
	assert.Equal(t, "203.0.113.9", last.Caller)
}

func TestRateLimitIdentityFromForwardedFor(t *testing.T) {
	f := newFixture(t)
	f.handler.limiter = ratelimit.New(30*time.Second, 1, 10)
	f.server = f.handler.Routes()

	path := "/quote/solana?from=SOL&to=" + testOnCurveKey + "&amount=1000000&address=" + testOnCurveKey
	for i, ip := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.9:51234"
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d from distinct identity", i)
	}
}

func TestExecuteSolana(t *testing.T) {
	f := newFixture(t)

	rec, body := f.post(t, "/execute/solana",
		`{"route":{"inAmount":"1000000","outAmount":"985000"},"userPublicKey":"`+testOnCurveKey+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(100), body["fee"])
	assert.Equal(t, float64(999_900), body["amountAfterFee"])
	assert.Equal(t, "c2VyaWFsaXplZA==", body["serializedTx"])
}

func TestExecuteSolanaBadBody(t *testing.T) {
	f := newFixture(t)

	rec, body := f.post(t, "/execute/solana", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestExecuteEVM(t *testing.T) {
	f := newFixture(t)

	rec, body := f.post(t, "/execute/evm",
		`{"bestSource":"1inch","fromToken":"`+testEVMAddr+`","toToken":"0x3333333333333333333333333333333333333333","amount":20000,"userAddress":"`+testEVMAddr+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, float64(2), body["fee"])
	txObject, ok := body["txObject"].(map[string]any)
	require.True(t, ok)
	swapTx := txObject["swapTx"].(map[string]any)
	assert.Equal(t, "0xcalldata", swapTx["data"])
	feeTransfer := txObject["feeTransfer"].(map[string]any)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", feeTransfer["to"])
}

func TestExecuteBitcoin(t *testing.T) {
	f := newFixture(t)

	rec, body := f.post(t, "/execute/btc",
		`{"toAsset":"ETH.ETH","amount":"100000","userAddress":"`+testBTCAddr+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	swapInfo, ok := body["swapInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bc1qvaultaddress", swapInfo["depositAddress"])
	assert.Equal(t, "SWAP:ETH.ETH:"+testBTCAddr, swapInfo["memo"])
	assert.Equal(t, float64(99_990), swapInfo["amount"])
	assert.Equal(t, "bc1qfeewallet", swapInfo["feeDestination"])

	events := f.events.All()
	last := events[len(events)-1]
	assert.Equal(t, domain.EventTypeExecute, last.EventType)
	assert.Equal(t, domain.OutcomeSuccess, last.Outcome)
	assert.Equal(t, uint64(10), last.Fee)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec, body := f.get(t, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}
