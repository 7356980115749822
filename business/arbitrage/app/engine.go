package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	arbdomain "github.com/solarb/arbitrage-detector/business/arbitrage/domain"
	dexapp "github.com/solarb/arbitrage-detector/business/dex/app"
	dexdomain "github.com/solarb/arbitrage-detector/business/dex/domain"
	mddomain "github.com/solarb/arbitrage-detector/business/marketdata/domain"
	"github.com/solarb/arbitrage-detector/internal/logger"
)

var (
	errRequoteCooldown = errors.New("arbitrage: requote on cooldown")
	errRequoteNone     = errors.New("arbitrage: requote returned no quote")
	errRequoteImpact   = errors.New("arbitrage: requote exceeded max price impact")
)

const (
	engineConcurrency    = 64
	engineBatchMult      = 4
	bRequoteCooldown     = 2 * time.Second
	amountMismatchTolPct = "0.3" // percent tolerance before a stale sell-quote amount forces a re-quote
)

// EngineConfig holds the tunables the engine evaluates every token against.
// It is swapped atomically by Reconfigure, so a config reload never blocks a
// tick in flight.
type EngineConfig struct {
	StableMint         string
	StableDecimals     uint8
	Notional           decimal.Decimal
	Thresholds         Thresholds
	MaxDexImpactPct    decimal.Decimal
	MaxCexSlipBps      decimal.Decimal
	MinCoveragePct     decimal.Decimal
	MaxPriceRatio      decimal.Decimal
	MaxGrossProfitPct  decimal.Decimal
	MaxObAgeMs         int
	MaxBuyQuoteAge     time.Duration
	MaxSellQuoteAge    time.Duration
	TickInterval       time.Duration
	PersistenceHits    int
	DedupCooldown      time.Duration
	DedupMinDeltaUSD   decimal.Decimal
}

// Engine evaluates both trade directions for every watched token on each
// tick and emits a Signal for whichever direction clears persistence and
// dedup gating.
type Engine struct {
	state    *mddomain.MarketState
	quoter   dexapp.QuoteClient
	denylist *arbdomain.Denylist
	sink     SignalSink
	log      logger.LoggerInterface
	stats    *SkipStats
	enabled  func() bool

	persistA *Persistence
	persistB *Persistence
	dedup    *Dedup

	cfg atomic.Pointer[EngineConfig]

	tokensMu sync.RWMutex
	tokens   []TokenInfo

	requoteMu   sync.Mutex
	requoteNext map[mddomain.Symbol]time.Time
}

// NewEngine builds an Engine over the given tokens and initial config.
func NewEngine(state *mddomain.MarketState, quoter dexapp.QuoteClient, denylist *arbdomain.Denylist, tokens []TokenInfo, cfg EngineConfig, sink SignalSink, log logger.LoggerInterface, stats *SkipStats, enabled func() bool) *Engine {
	if cfg.PersistenceHits < 1 {
		cfg.PersistenceHits = 1
	}
	if sink == nil {
		sink = func(context.Context, arbdomain.Signal) {}
	}
	e := &Engine{
		state:       state,
		quoter:      quoter,
		denylist:    denylist,
		sink:        sink,
		log:         log,
		stats:       stats,
		enabled:     enabled,
		persistA:    NewPersistence(cfg.PersistenceHits),
		persistB:    NewPersistence(cfg.PersistenceHits),
		dedup:       NewDedup(cfg.DedupCooldown, cfg.DedupMinDeltaUSD),
		tokens:      tokens,
		requoteNext: make(map[mddomain.Symbol]time.Time),
	}
	e.cfg.Store(&cfg)
	return e
}

// SetTokens atomically replaces the watchlist the engine evaluates.
func (e *Engine) SetTokens(tokens []TokenInfo) {
	e.tokensMu.Lock()
	e.tokens = tokens
	e.tokensMu.Unlock()
}

// Reconfigure atomically swaps the engine's tunables and fans the new
// persistence streak length and dedup cooldown/delta into the existing
// gating state, without resetting in-flight counters.
func (e *Engine) Reconfigure(cfg EngineConfig) {
	if cfg.PersistenceHits < 1 {
		cfg.PersistenceHits = 1
	}
	e.persistA.SetHits(cfg.PersistenceHits)
	e.persistB.SetHits(cfg.PersistenceHits)
	e.dedup.SetCooldown(cfg.DedupCooldown)
	e.dedup.SetMinDeltaProfit(cfg.DedupMinDeltaUSD)
	e.cfg.Store(&cfg)
}

func (e *Engine) snapshotTokens() []TokenInfo {
	e.tokensMu.RLock()
	defer e.tokensMu.RUnlock()
	out := make([]TokenInfo, len(e.tokens))
	copy(out, e.tokens)
	return out
}

func (e *Engine) dbg(key string) {
	if e.stats != nil {
		e.stats.Inc(key, 1)
	}
}

// Run ticks over the watchlist on cfg.TickInterval until ctx is done,
// fanning each token's two-direction evaluation out to a bounded pool.
func (e *Engine) Run(ctx context.Context) {
	sem := semaphore.NewWeighted(engineConcurrency)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if e.enabled != nil && !e.enabled() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		tokens := e.snapshotTokens()
		cfg := *e.cfg.Load()
		started := time.Now()
		batchSize := engineConcurrency * engineBatchMult

		for i := 0; i < len(tokens); i += batchSize {
			end := i + batchSize
			if end > len(tokens) {
				end = len(tokens)
			}
			var wg sync.WaitGroup
			for _, tok := range tokens[i:end] {
				tok := tok
				if err := sem.Acquire(ctx, 1); err != nil {
					return
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer sem.Release(1)
					e.runOneToken(ctx, tok, cfg)
				}()
			}
			wg.Wait()
		}

		elapsed := time.Since(started)
		sleepFor := cfg.TickInterval - elapsed
		if sleepFor < 0 {
			sleepFor = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleepFor):
		}
	}
}

// runOneToken evaluates both directions for tok and emits a signal for
// whichever one clears persistence and dedup gating.
func (e *Engine) runOneToken(ctx context.Context, tok TokenInfo, cfg EngineConfig) {
	defer func() {
		if r := recover(); r != nil {
			e.dbg("engine_error")
			if e.log != nil {
				e.log.Error(ctx, "engine panic evaluating token", "symbol", tok.Symbol, "panic", r)
			}
		}
	}()

	if isPumpMint(tok.Mint) {
		e.dbg("skip_pump_mint")
		return
	}
	if e.denylist.IsDenied(string(tok.Symbol), string(tok.Symbol)) {
		e.dbg("skip_denied")
		return
	}
	if tok.Decimals == 0 || tok.Decimals > 18 {
		e.dbg("skip_bad_decimals")
		return
	}

	book, ok := e.state.Book(tok.Symbol)
	if !ok {
		e.dbg("skip_no_ob")
		return
	}
	now := time.Now()
	if book.AgeMS(now) > int64(cfg.MaxObAgeMs) {
		e.dbg("skip_ob_stale")
		return
	}
	snap := book.Snapshot(now)
	mid, ok := snap.Mid()
	if !ok {
		e.dbg("skip_no_mid")
		return
	}

	pair := e.state.PairFor(tok.key())
	if pair.ClearStaleBuyQuote(now, cfg.MaxBuyQuoteAge) {
		e.dbg("skip_stale_buy_quote")
	}
	if pair.ClearStaleSellQuote(now, cfg.MaxSellQuoteAge) {
		e.dbg("skip_stale_sell_quote")
	}

	profitA, validA := e.evaluateBranchA(tok, cfg, pair, snap, mid)
	if !validA {
		e.persistA.Hit(string(tok.Symbol), false)
	}

	profitB, validB := e.evaluateBranchB(ctx, tok, cfg, pair, snap, mid)
	if !validB {
		e.persistB.Hit(string(tok.Symbol), false)
	}

	e.maybeEmit(ctx, tok, cfg, arbdomain.DirectionDexToCex, profitA, validA, e.persistA)
	e.maybeEmit(ctx, tok, cfg, arbdomain.DirectionCexToDex, profitB, validB, e.persistB)
}

// maybeEmit applies persistence and dedup gating to one branch's result and
// sends a signal if both pass.
func (e *Engine) maybeEmit(ctx context.Context, tok TokenInfo, cfg EngineConfig, dir arbdomain.Direction, profit decimal.Decimal, valid bool, persist *Persistence) {
	if !valid {
		return
	}
	ready := persist.Hit(string(tok.Symbol), true)
	if !ready {
		e.dbg(skipKey(dir, "persistence"))
		return
	}

	key := arbdomain.SignalKey(string(tok.Symbol), dir, cfg.Notional)
	if !e.dedup.CanSend(key, profit) {
		e.dbg(skipKey(dir, "dedup"))
		return
	}
	e.dedup.MarkSent(key, profit)

	sig := arbdomain.Signal{
		Key:         key,
		Token:       string(tok.Symbol),
		Direction:   dir,
		ProfitUSD:   profit,
		NotionalUSD: cfg.Notional,
		Text:        renderSignalText(tok, dir, profit, cfg.Notional),
	}
	e.sink(ctx, sig)
}

func skipKey(dir arbdomain.Direction, suffix string) string {
	if dir == arbdomain.DirectionDexToCex {
		return "A_skip_" + suffix
	}
	return "B_skip_" + suffix
}

func renderSignalText(tok TokenInfo, dir arbdomain.Direction, profit, notional decimal.Decimal) string {
	var b strings.Builder
	b.WriteString(string(tok.Symbol))
	b.WriteString(" ")
	b.WriteString(dir.String())
	b.WriteString(" profit=")
	b.WriteString(profit.StringFixed(4))
	b.WriteString(" notional=")
	b.WriteString(notional.StringFixed(2))
	return b.String()
}

// evaluateBranchA evaluates buying tok on the DEX aggregator and selling the
// proceeds into the CEX bid side. Returns (profit, true) as soon as profit is
// positive, independent of whatever persistence/dedup gating decides
// downstream; the caller is responsible for resetting persistence on a false
// return.
func (e *Engine) evaluateBranchA(tok TokenInfo, cfg EngineConfig, pair *mddomain.QuotePair, snap mddomain.Snapshot, mid decimal.Decimal) (decimal.Decimal, bool) {
	buy := pair.Snapshot().BuyQuote
	if buy == nil {
		e.dbg("A_no_jup_buy_quote")
		return decimal.Zero, false
	}
	if !buy.MintsMatch(cfg.StableMint, tok.Mint) {
		e.dbg("A_skip_mint_mismatch")
		return decimal.Zero, false
	}
	if buy.PriceImpactPct.GreaterThan(cfg.MaxDexImpactPct) {
		e.dbg("A_skip_dex_impact")
		return decimal.Zero, false
	}

	tokenOut := FromRaw(buy.OutAmountRaw, tok.Decimals)
	if !tokenOut.IsPositive() {
		e.dbg("A_skip_token_out_le0")
		return decimal.Zero, false
	}

	simSell, ok := mddomain.SimulateSellBase(snap.Bids, tokenOut)
	if !ok {
		e.dbg("A_skip_sim_sell_none")
		return decimal.Zero, false
	}
	if simSell.CoveragePct.LessThan(cfg.MinCoveragePct) {
		e.dbg("A_skip_depth")
		return decimal.Zero, false
	}
	if simSell.SlippageBps.GreaterThan(cfg.MaxCexSlipBps) {
		e.dbg("A_skip_cex_slip")
		return decimal.Zero, false
	}

	stableOut := simSell.QuoteOut
	if !stableOut.IsPositive() {
		e.dbg("A_skip_stable_out_le0")
		return decimal.Zero, false
	}

	implied := cfg.Notional.Div(tokenOut)
	if !PriceRatioOK(implied, mid, cfg.MaxPriceRatio) {
		e.dbg("A_skip_price_ratio")
		return decimal.Zero, false
	}
	if !GrossCapOK(stableOut, cfg.Notional, cfg.MaxGrossProfitPct) {
		e.dbg("A_skip_gross_cap")
		return decimal.Zero, false
	}

	required := cfg.Thresholds.RequiredProfitUSD(cfg.Notional)
	profit := NetProfit(stableOut, cfg.Notional, required)
	if !profit.IsPositive() {
		e.dbg("A_skip_profit_le0")
		return decimal.Zero, false
	}
	return profit, true
}

// evaluateBranchB evaluates buying tok on the CEX ask side and selling the
// proceeds into the DEX aggregator, re-quoting the DEX sell leg when the
// warmed quote is missing, stale, mismatched on mint identity, over the
// impact cap, or sized for a different base amount.
func (e *Engine) evaluateBranchB(ctx context.Context, tok TokenInfo, cfg EngineConfig, pair *mddomain.QuotePair, snap mddomain.Snapshot, mid decimal.Decimal) (decimal.Decimal, bool) {
	simBuy, ok := mddomain.SimulateBuyWithNotional(snap.Asks, cfg.Notional)
	if !ok {
		e.dbg("B_skip_no_buy_sim")
		return decimal.Zero, false
	}
	if simBuy.CoveragePct.LessThan(cfg.MinCoveragePct) {
		e.dbg("B_skip_depth")
		return decimal.Zero, false
	}
	if simBuy.SlippageBps.GreaterThan(cfg.MaxCexSlipBps) {
		e.dbg("B_skip_cex_slip")
		return decimal.Zero, false
	}

	baseAmount := simBuy.BaseOut
	baseAmountRaw := ToRaw(baseAmount, tok.Decimals)

	sell, needRequote, reason := e.sellQuoteFor(pair, tok, cfg, baseAmountRaw)
	if needRequote {
		e.dbg(reason)
		var err error
		sell, err = e.requoteSell(ctx, tok, cfg, pair, baseAmountRaw)
		if err != nil {
			e.dbg("B_requote_none")
			return decimal.Zero, false
		}
	}
	if sell == nil {
		e.dbg("B_skip_no_sell_quote_after_requote")
		return decimal.Zero, false
	}

	stableOut := FromRaw(sell.OutAmountRaw, cfg.StableDecimals)
	if !stableOut.IsPositive() {
		e.dbg("B_skip_stable_out_le0")
		return decimal.Zero, false
	}

	implied := stableOut.Div(baseAmount)
	if !PriceRatioOK(implied, mid, cfg.MaxPriceRatio) {
		e.dbg("B_skip_price_ratio")
		return decimal.Zero, false
	}
	if !GrossCapOK(stableOut, cfg.Notional, cfg.MaxGrossProfitPct) {
		e.dbg("B_skip_gross_cap")
		return decimal.Zero, false
	}

	required := cfg.Thresholds.RequiredProfitUSD(cfg.Notional)
	profit := NetProfit(stableOut, cfg.Notional, required)
	if !profit.IsPositive() {
		e.dbg("B_skip_profit_le0")
		return decimal.Zero, false
	}
	return profit, true
}

// sellQuoteFor decides whether the warmed sell quote for pair can serve
// baseAmountRaw as-is. Returns the usable quote (possibly nil) and whether a
// re-quote is required, with the skip-stat key naming why. Mirrors the
// original's need_requote chain: absent, mint mismatch, impact over cap,
// amount-raw missing, then amount-ratio mismatch (staleness is folded into
// "absent" since the caller already clears a stale sell quote beforehand).
func (e *Engine) sellQuoteFor(pair *mddomain.QuotePair, tok TokenInfo, cfg EngineConfig, baseAmountRaw decimal.Decimal) (quoteOrNil *dexdomain.Quote, needRequote bool, reason string) {
	snap := pair.Snapshot()
	if snap.SellQuote == nil {
		return nil, true, "B_sell_missing_requote"
	}
	if !snap.SellQuote.MintsMatch(tok.Mint, cfg.StableMint) {
		return nil, true, "B_skip_mint_mismatch"
	}
	if snap.SellQuote.PriceImpactPct.GreaterThan(cfg.MaxDexImpactPct) {
		return nil, true, "B_skip_dex_impact"
	}
	if !snap.SellAmountRaw.IsPositive() {
		return nil, true, "B_sell_amount_raw_missing_requote"
	}

	tol := snap.SellAmountRaw.Mul(decimal.RequireFromString(amountMismatchTolPct)).Div(hundred)
	diff := snap.SellAmountRaw.Sub(baseAmountRaw).Abs()
	if diff.GreaterThan(tol) {
		return nil, true, "B_amount_mismatch_requote"
	}
	return snap.SellQuote, false, ""
}

// requoteSell fetches a fresh DEX sell quote for baseAmountRaw, subject to a
// per-symbol cooldown so a thrashing book can't drive unbounded quote calls.
func (e *Engine) requoteSell(ctx context.Context, tok TokenInfo, cfg EngineConfig, pair *mddomain.QuotePair, baseAmountRaw decimal.Decimal) (*dexdomain.Quote, error) {
	e.requoteMu.Lock()
	next, ok := e.requoteNext[tok.Symbol]
	now := time.Now()
	if ok && now.Before(next) {
		e.requoteMu.Unlock()
		e.dbg("B_skip_requote_cooldown")
		return nil, errRequoteCooldown
	}
	e.requoteNext[tok.Symbol] = now.Add(bRequoteCooldown)
	e.requoteMu.Unlock()

	quote, err := e.quoter.Quote(ctx, tok.Mint, cfg.StableMint, baseAmountRaw)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, errRequoteNone
	}
	if quote.PriceImpactPct.GreaterThan(cfg.MaxDexImpactPct) {
		e.dbg("B_requote_skip_dex_impact")
		return nil, errRequoteImpact
	}

	pair.SetSellQuote(quote, baseAmountRaw)
	return quote, nil
}
