package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/dgnsrekt/option-pricer/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: "8080", RatePerSecond: 100, RateBurst: 200},
		Limits:  config.LimitsConfig{MaxPaths: 200000, MaxPathSteps: 1000, MaxLatticeSteps: 1000, MaxStreamBatches: 50},
		Pricing: config.PricingConfig{Workers: 1, DefaultPayoff: "max(S - K, 0)"},
		Logging: config.LoggingConfig{Level: "info"},
	}
}

func testRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(cfg, logger)
	stream := NewStreamHandler(cfg, logger)
	return NewRouter(srv, stream, logger)
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodePrice(t *testing.T, rec *httptest.ResponseRecorder) PriceResponse {
	t.Helper()
	var resp PriceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v (body: %s)", err, rec.Body.String())
	}
	return resp
}

func TestBinomialHandler(t *testing.T) {
	router := testRouter(t, testConfig())

	rec := postJSON(t, router, "/api/v1/price/binomial", map[string]any{
		"spot":       100,
		"strike":     100,
		"maturity":   1,
		"rate":       0.05,
		"volatility": 0.2,
		"steps":      3,
		"kind":       "call",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodePrice(t, rec)
	if math.Abs(resp.Price-11.043871091951113) > 1e-6 {
		t.Errorf("unexpected price: %v", resp.Price)
	}
	if resp.Delta == nil || *resp.Delta <= 0 || *resp.Delta >= 1 {
		t.Errorf("expected call delta in (0,1), got %v", resp.Delta)
	}
	if resp.RequestID == "" {
		t.Error("expected a request id")
	}
}

func TestBinomialHandler_InvalidInput(t *testing.T) {
	router := testRouter(t, testConfig())

	rec := postJSON(t, router, "/api/v1/price/binomial", map[string]any{
		"spot":       0,
		"strike":     100,
		"maturity":   1,
		"rate":       0.05,
		"volatility": 0.2,
		"steps":      3,
		"kind":       "call",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestBinomialHandler_StepLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Limits.MaxLatticeSteps = 10
	router := testRouter(t, cfg)

	rec := postJSON(t, router, "/api/v1/price/binomial", map[string]any{
		"spot":       100,
		"strike":     100,
		"maturity":   1,
		"rate":       0.05,
		"volatility": 0.2,
		"steps":      11,
		"kind":       "call",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for steps over limit, got %d", rec.Code)
	}
}

func TestMonteCarloHandler_SeededReproducible(t *testing.T) {
	router := testRouter(t, testConfig())

	body := map[string]any{
		"spot":       100,
		"strike":     100,
		"maturity":   1,
		"rate":       0.05,
		"volatility": 0.2,
		"paths":      20000,
		"steps":      1,
		"seed":       42,
	}

	first := decodePrice(t, postJSON(t, router, "/api/v1/price/montecarlo", body))
	second := decodePrice(t, postJSON(t, router, "/api/v1/price/montecarlo", body))

	if first.Price != second.Price {
		t.Errorf("seeded prices differ: %v vs %v", first.Price, second.Price)
	}
	if first.StandardError == nil || *first.StandardError <= 0 {
		t.Errorf("expected positive standard error, got %v", first.StandardError)
	}
	if *first.StandardError != *second.StandardError {
		t.Error("seeded standard errors differ")
	}
}

func TestMonteCarloHandler_CustomPayoff(t *testing.T) {
	router := testRouter(t, testConfig())

	rec := postJSON(t, router, "/api/v1/price/montecarlo", map[string]any{
		"spot":       100,
		"strike":     100,
		"maturity":   1,
		"rate":       0.05,
		"volatility": 0.2,
		"paths":      5000,
		"steps":      1,
		"seed":       7,
		"payoff":     "abs(S - K)",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodePrice(t, rec)
	if resp.Price <= 0 {
		t.Errorf("straddle price should be positive, got %v", resp.Price)
	}
}

func TestMonteCarloHandler_BadPayoffExpression(t *testing.T) {
	router := testRouter(t, testConfig())

	rec := postJSON(t, router, "/api/v1/price/montecarlo", map[string]any{
		"spot":       100,
		"strike":     100,
		"maturity":   1,
		"rate":       0.05,
		"volatility": 0.2,
		"paths":      100,
		"steps":      1,
		"payoff":     "os.Exit(1)",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad payoff, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMonteCarloHandler_PathLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Limits.MaxPaths = 1000
	router := testRouter(t, cfg)

	rec := postJSON(t, router, "/api/v1/price/montecarlo", map[string]any{
		"spot":       100,
		"strike":     100,
		"maturity":   1,
		"rate":       0.05,
		"volatility": 0.2,
		"paths":      1001,
		"steps":      1,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for paths over limit, got %d", rec.Code)
	}
}

func TestBlackScholesHandler(t *testing.T) {
	router := testRouter(t, testConfig())

	rec := postJSON(t, router, "/api/v1/price/blackscholes", map[string]any{
		"spot":       100,
		"strike":     100,
		"maturity":   1,
		"rate":       0.05,
		"volatility": 0.2,
		"kind":       "call",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodePrice(t, rec)
	if math.Abs(resp.Price-10.450583572185565) > 1e-9 {
		t.Errorf("unexpected price: %v", resp.Price)
	}
}

func TestHealthHandler(t *testing.T) {
	router := testRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("unexpected status: %v", resp["status"])
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RatePerSecond = 1
	cfg.Server.RateBurst = 1
	router := testRouter(t, cfg)

	body := map[string]any{
		"spot":       100,
		"strike":     100,
		"maturity":   1,
		"rate":       0.05,
		"volatility": 0.2,
		"kind":       "call",
	}

	first := postJSON(t, router, "/api/v1/price/blackscholes", body)
	if first.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", first.Code)
	}

	second := postJSON(t, router, "/api/v1/price/blackscholes", body)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", second.Code)
	}
}
