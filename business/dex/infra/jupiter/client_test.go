package jupiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solarb/arbitrage-detector/business/dex/app"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

func testConfig(baseURL string) Config {
	cfg := DefaultConfig(baseURL, "test-key")
	cfg.MaxRetries = 2
	cfg.RPS = 1000
	cfg.Concurrency = 4
	cfg.LogThrottle = time.Millisecond
	return cfg
}

func TestQuote_SuccessParsesAmounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(quoteResponse{
			InputMint:      "in",
			OutputMint:     "out",
			InAmount:       "1000000",
			OutAmount:      "998000",
			PriceImpactPct: "0.001",
			ContextSlot:    42,
			TimeTaken:      0.123,
		})
	}))
	defer server.Close()

	c, err := New(testConfig(server.URL), &mockLogger{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	q, err := c.Quote(context.Background(), "in", "out", decimal.NewFromInt(1000000))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q == nil {
		t.Fatal("expected quote, got nil")
	}
	if !q.OutAmountRaw.Equal(decimal.NewFromInt(998000)) {
		t.Errorf("expected out amount 998000, got %s", q.OutAmountRaw)
	}
}

func TestQuote_TokenNotTradable_BlocksMintAndEmitsSkip(t *testing.T) {
	badMint := "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorBody{
			ErrorCode: "TOKEN_NOT_TRADABLE",
			Error:     "mint " + badMint + " is not tradable",
		})
	}))
	defer server.Close()

	var gotSkip app.SkipEvent
	sinkCalls := 0
	sink := func(e app.SkipEvent) {
		sinkCalls++
		gotSkip = e
	}

	c, err := New(testConfig(server.URL), &mockLogger{}, sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	q, err := c.Quote(context.Background(), "in", "out", decimal.NewFromInt(1))
	if err != nil || q != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", q, err)
	}
	if sinkCalls != 1 {
		t.Fatalf("expected exactly one skip event, got %d", sinkCalls)
	}
	if gotSkip.Code != app.SkipTokenNotTradable || gotSkip.BadMint != badMint {
		t.Errorf("unexpected skip event: %+v", gotSkip)
	}
	if !c.neg.MintBlocked(badMint) {
		t.Error("expected bad mint to be negative-cached")
	}

	// Second call for the same pair must be short-circuited by the cache,
	// never reaching the server.
	hits := 0
	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	})
	if _, err := c.Quote(context.Background(), "in", "out", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("cached Quote: %v", err)
	}
	if hits != 0 {
		t.Errorf("expected negative cache to short-circuit the request, server was hit %d times", hits)
	}
}

func TestQuote_RetriesOn429ThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(quoteResponse{InAmount: "1", OutAmount: "1"})
	}))
	defer server.Close()

	c, err := New(testConfig(server.URL), &mockLogger{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	q, err := c.Quote(context.Background(), "in", "out", decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q == nil {
		t.Fatal("expected eventual success after retry")
	}
	if attempts != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", attempts)
	}
}

func TestQuote_AmountTooBig_NoSkipEventButPairCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorBody{ErrorCode: "ROUTE_PLAN_DOES_NOT_CONSUME_ALL_THE_AMOUNT"})
	}))
	defer server.Close()

	sinkCalls := 0
	c, err := New(testConfig(server.URL), &mockLogger{}, func(app.SkipEvent) { sinkCalls++ })
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.Quote(context.Background(), "in", "out", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if sinkCalls != 0 {
		t.Errorf("amount-too-big must not emit a skip event, got %d", sinkCalls)
	}
	if !c.neg.PairBlocked("in", "out") {
		t.Error("expected pair to be negative-cached")
	}
}
