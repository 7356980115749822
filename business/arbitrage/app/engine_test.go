package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	arbdomain "github.com/solarb/arbitrage-detector/business/arbitrage/domain"
	dexdomain "github.com/solarb/arbitrage-detector/business/dex/domain"
	mddomain "github.com/solarb/arbitrage-detector/business/marketdata/domain"
)

const (
	stableMint = "STABLEMINT"
	tokenMint  = "TOKENMINT"
)

type fakeQuoter struct {
	mu    sync.Mutex
	quote *dexdomain.Quote
	err   error
	calls int
}

func (f *fakeQuoter) Quote(_ context.Context, inputMint, outputMint string, amountRaw decimal.Decimal) (*dexdomain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.quote == nil {
		return nil, nil
	}
	q := *f.quote
	q.InputMint = inputMint
	q.OutputMint = outputMint
	q.InAmountRaw = amountRaw
	return &q, nil
}

func baseThresholds() Thresholds {
	return Thresholds{
		BybitTakerFeeBps:  dec("10"),
		SolanaTxFeeUSD:    dec("0.05"),
		LatencyBufferBps:  dec("3"),
		UsdtUsdcBufferBps: dec("0"),
		MinProfitUSD:      dec("1"),
	}
}

func baseCfg() EngineConfig {
	return EngineConfig{
		StableMint:        stableMint,
		StableDecimals:    6,
		Notional:          dec("1000"),
		Thresholds:        baseThresholds(),
		MaxDexImpactPct:   dec("1"),
		MaxCexSlipBps:     dec("50"),
		MinCoveragePct:    dec("90"),
		MaxPriceRatio:     dec("1.05"),
		MaxGrossProfitPct: dec("50"),
		MaxObAgeMs:         5000,
		MaxBuyQuoteAge:     5 * time.Second,
		MaxSellQuoteAge:    5 * time.Second,
		TickInterval:       50 * time.Millisecond,
		PersistenceHits:    1,
		DedupCooldown:      time.Minute,
		DedupMinDeltaUSD:   dec("0.01"),
	}
}

func tokenInfo() TokenInfo {
	return TokenInfo{Symbol: mddomain.Symbol("FOOUSDT"), Mint: tokenMint, Decimals: 6}
}

func seedBook(state *mddomain.MarketState, symbol mddomain.Symbol, bidPrice, askPrice, qty string) {
	book := state.BookFor(symbol)
	book.ApplySnapshot(context.Background(),
		[]mddomain.RawLevel{{bidPrice, qty}},
		[]mddomain.RawLevel{{askPrice, qty}},
		time.Now().UnixMilli(), time.Now().UnixMilli())
}

func TestEngine_BranchA_EmitsSignalOnProfitableBuyQuote(t *testing.T) {
	state := mddomain.NewMarketState(nil)
	tok := tokenInfo()
	// CEX bid (1.02) trades well above the DEX fill price (1.00), leaving
	// headroom for a profitable round trip net of fees.
	seedBook(state, tok.Symbol, "1.02", "1.021", "2000")

	pair := state.PairFor(tok.key())
	pair.SetBuyQuote(&dexdomain.Quote{
		InputMint:      stableMint,
		OutputMint:     tokenMint,
		InAmountRaw:    dec("1000000000"),
		OutAmountRaw:   dec("1000000000"),
		PriceImpactPct: dec("0.1"),
		FetchedAt:      time.Now(),
	})

	var mu sync.Mutex
	var got []arbdomain.Signal
	sink := func(_ context.Context, sig arbdomain.Signal) {
		mu.Lock()
		got = append(got, sig)
		mu.Unlock()
	}

	denylist := arbdomain.BuildDenylist(nil, nil)
	quoter := &fakeQuoter{}
	cfg := baseCfg()
	e := NewEngine(state, quoter, denylist, []TokenInfo{tok}, cfg, sink, nil, nil, nil)

	e.runOneToken(context.Background(), tok, cfg)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected exactly one emitted signal, got %d", len(got))
	}
	if got[0].Direction != arbdomain.DirectionDexToCex {
		t.Errorf("direction = %s, want %s", got[0].Direction, arbdomain.DirectionDexToCex)
	}
	if !got[0].ProfitUSD.IsPositive() {
		t.Errorf("expected positive profit, got %s", got[0].ProfitUSD)
	}
}

func TestEngine_BranchB_RequotesWhenSellQuoteAmountMismatched(t *testing.T) {
	state := mddomain.NewMarketState(nil)
	tok := tokenInfo()
	seedBook(state, tok.Symbol, "1.00", "1.001", "100000")

	pair := state.PairFor(tok.key())
	// A stale/mismatched sell quote sized for a far smaller base amount must
	// trigger a re-quote rather than being used as-is.
	pair.SetSellQuote(&dexdomain.Quote{
		InputMint:      tokenMint,
		OutputMint:     stableMint,
		OutAmountRaw:   dec("500000000"),
		PriceImpactPct: dec("0.1"),
		FetchedAt:      time.Now(),
	}, dec("1"))

	quoter := &fakeQuoter{
		quote: &dexdomain.Quote{
			OutAmountRaw:   dec("1005000000"),
			PriceImpactPct: dec("0.1"),
			FetchedAt:      time.Now(),
		},
	}

	var mu sync.Mutex
	var got []arbdomain.Signal
	sink := func(_ context.Context, sig arbdomain.Signal) {
		mu.Lock()
		got = append(got, sig)
		mu.Unlock()
	}

	denylist := arbdomain.BuildDenylist(nil, nil)
	cfg := baseCfg()
	e := NewEngine(state, quoter, denylist, []TokenInfo{tok}, cfg, sink, nil, nil, nil)

	e.runOneToken(context.Background(), tok, cfg)

	quoter.mu.Lock()
	calls := quoter.calls
	quoter.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected exactly one re-quote call, got %d", calls)
	}

	mu.Lock()
	defer mu.Unlock()
	var sawB bool
	for _, s := range got {
		if s.Direction == arbdomain.DirectionCexToDex {
			sawB = true
		}
	}
	if !sawB {
		t.Fatal("expected a branch-B signal after the re-quote")
	}
}

func TestEngine_BranchB_RequotesOnSellQuoteMintMismatch(t *testing.T) {
	state := mddomain.NewMarketState(nil)
	tok := tokenInfo()
	seedBook(state, tok.Symbol, "1.00", "1.001", "100000")

	book, _ := state.Book(tok.Symbol)
	simBuy, ok := mddomain.SimulateBuyWithNotional(book.Snapshot(time.Now()).Asks, dec("1000"))
	if !ok {
		t.Fatal("expected a valid buy simulation")
	}
	baseAmountRaw := ToRaw(simBuy.BaseOut, tok.Decimals)

	pair := state.PairFor(tok.key())
	// Sized correctly for the current fill, but quoted for the wrong input
	// mint: the amount check alone would accept this, so mint identity must
	// be checked independently to force a re-quote.
	pair.SetSellQuote(&dexdomain.Quote{
		InputMint:      stableMint,
		OutputMint:     tokenMint,
		OutAmountRaw:   dec("1000000000"),
		PriceImpactPct: dec("0.1"),
		FetchedAt:      time.Now(),
	}, baseAmountRaw)

	quoter := &fakeQuoter{
		quote: &dexdomain.Quote{
			OutAmountRaw:   dec("1005000000"),
			PriceImpactPct: dec("0.1"),
			FetchedAt:      time.Now(),
		},
	}

	var mu sync.Mutex
	var got []arbdomain.Signal
	sink := func(_ context.Context, sig arbdomain.Signal) {
		mu.Lock()
		got = append(got, sig)
		mu.Unlock()
	}

	denylist := arbdomain.BuildDenylist(nil, nil)
	cfg := baseCfg()
	e := NewEngine(state, quoter, denylist, []TokenInfo{tok}, cfg, sink, nil, nil, nil)

	e.runOneToken(context.Background(), tok, cfg)

	quoter.mu.Lock()
	calls := quoter.calls
	quoter.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected a re-quote triggered by the mint mismatch, got %d calls", calls)
	}

	mu.Lock()
	defer mu.Unlock()
	var sawB bool
	for _, s := range got {
		if s.Direction == arbdomain.DirectionCexToDex {
			sawB = true
		}
	}
	if !sawB {
		t.Fatal("expected a branch-B signal after the re-quote")
	}
}

func TestEngine_BranchB_RequotesOnSellQuoteImpactOverCap(t *testing.T) {
	state := mddomain.NewMarketState(nil)
	tok := tokenInfo()
	seedBook(state, tok.Symbol, "1.00", "1.001", "100000")

	book, _ := state.Book(tok.Symbol)
	simBuy, ok := mddomain.SimulateBuyWithNotional(book.Snapshot(time.Now()).Asks, dec("1000"))
	if !ok {
		t.Fatal("expected a valid buy simulation")
	}
	baseAmountRaw := ToRaw(simBuy.BaseOut, tok.Decimals)

	pair := state.PairFor(tok.key())
	cfg := baseCfg()
	// Correctly sized and mint-matched, but priced with an impact above the
	// configured cap: the amount check alone would accept this too, so
	// impact must be checked independently to force a re-quote.
	pair.SetSellQuote(&dexdomain.Quote{
		InputMint:      tokenMint,
		OutputMint:     stableMint,
		OutAmountRaw:   dec("1000000000"),
		PriceImpactPct: cfg.MaxDexImpactPct.Add(dec("1")),
		FetchedAt:      time.Now(),
	}, baseAmountRaw)

	quoter := &fakeQuoter{
		quote: &dexdomain.Quote{
			OutAmountRaw:   dec("1005000000"),
			PriceImpactPct: dec("0.1"),
			FetchedAt:      time.Now(),
		},
	}

	var mu sync.Mutex
	var got []arbdomain.Signal
	sink := func(_ context.Context, sig arbdomain.Signal) {
		mu.Lock()
		got = append(got, sig)
		mu.Unlock()
	}

	denylist := arbdomain.BuildDenylist(nil, nil)
	e := NewEngine(state, quoter, denylist, []TokenInfo{tok}, cfg, sink, nil, nil, nil)

	e.runOneToken(context.Background(), tok, cfg)

	quoter.mu.Lock()
	calls := quoter.calls
	quoter.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected a re-quote triggered by the impact cap, got %d calls", calls)
	}

	mu.Lock()
	defer mu.Unlock()
	var sawB bool
	for _, s := range got {
		if s.Direction == arbdomain.DirectionCexToDex {
			sawB = true
		}
	}
	if !sawB {
		t.Fatal("expected a branch-B signal after the re-quote")
	}
}

func TestEngine_SkipsDeniedToken(t *testing.T) {
	state := mddomain.NewMarketState(nil)
	tok := TokenInfo{Symbol: mddomain.Symbol("XAUTUSDT"), Mint: tokenMint, Decimals: 6}
	seedBook(state, tok.Symbol, "1.00", "1.001", "100000")

	denylist := arbdomain.BuildDenylist(nil, nil)
	quoter := &fakeQuoter{}
	var called bool
	sink := func(context.Context, arbdomain.Signal) { called = true }

	cfg := baseCfg()
	e := NewEngine(state, quoter, denylist, []TokenInfo{tok}, cfg, sink, nil, nil, nil)
	e.runOneToken(context.Background(), tok, cfg)

	if called {
		t.Fatal("expected a denylisted token to never emit a signal")
	}
}
