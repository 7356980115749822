package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	arbdomain "github.com/solarb/arbitrage-detector/business/arbitrage/domain"
	dexapp "github.com/solarb/arbitrage-detector/business/dex/app"
	mddomain "github.com/solarb/arbitrage-detector/business/marketdata/domain"
	"github.com/solarb/arbitrage-detector/internal/logger"
)

const (
	pollerConcurrency  = 24
	pollerBatchMult    = 4
	pollerJitterRatio  = 0.15
	pollerBackoffNone  = 5 * time.Second
	pollerBackoffError = 10 * time.Second
)

// PollerConfig controls the quote poller's cadence and staleness gates.
type PollerConfig struct {
	StableMint     string
	StableDecimals uint8
	Notional       decimal.Decimal
	MaxSpreadBps   decimal.Decimal
	MaxObAgeMs     int
	PollInterval   time.Duration
	MaxQuoteAge    time.Duration
}

// QuotePoller periodically warms BUY quotes (stable -> token) in the shared
// MarketState so the engine's tick never blocks on a synchronous HTTP call.
// Sell quotes are fetched on demand by the engine's branch-B re-quote path.
type QuotePoller struct {
	state    *mddomain.MarketState
	quoter   dexapp.QuoteClient
	denylist *arbdomain.Denylist
	log      logger.LoggerInterface
	stats    *SkipStats
	enabled  func() bool

	cfg PollerConfig

	tokensMu sync.RWMutex
	tokens   []TokenInfo

	backoffMu    sync.Mutex
	backoffUntil map[mddomain.Symbol]time.Time
}

// NewQuotePoller builds a QuotePoller over the given tokens.
func NewQuotePoller(state *mddomain.MarketState, quoter dexapp.QuoteClient, denylist *arbdomain.Denylist, tokens []TokenInfo, cfg PollerConfig, log logger.LoggerInterface, stats *SkipStats, enabled func() bool) *QuotePoller {
	return &QuotePoller{
		state:        state,
		quoter:       quoter,
		denylist:     denylist,
		log:          log,
		stats:        stats,
		enabled:      enabled,
		cfg:          cfg,
		tokens:       tokens,
		backoffUntil: make(map[mddomain.Symbol]time.Time),
	}
}

// SetTokens atomically replaces the watchlist the poller cycles over.
func (p *QuotePoller) SetTokens(tokens []TokenInfo) {
	p.tokensMu.Lock()
	p.tokens = tokens
	p.tokensMu.Unlock()
}

// Reconfigure updates the poller's cadence/threshold fields. Safe to call
// concurrently with Run; takes effect from the next cycle.
func (p *QuotePoller) Reconfigure(cfg PollerConfig) {
	p.tokensMu.Lock()
	p.cfg = cfg
	p.tokensMu.Unlock()
}

func (p *QuotePoller) snapshot() ([]TokenInfo, PollerConfig) {
	p.tokensMu.RLock()
	defer p.tokensMu.RUnlock()
	tokens := make([]TokenInfo, len(p.tokens))
	copy(tokens, p.tokens)
	return tokens, p.cfg
}

func (p *QuotePoller) dbg(key string) {
	if p.stats != nil {
		p.stats.Inc(key, 1)
	}
}

func isPumpMint(mint string) bool {
	return strings.HasSuffix(strings.ToLower(mint), "pump")
}

func (p *QuotePoller) pollAllowed(symbol mddomain.Symbol) bool {
	p.backoffMu.Lock()
	defer p.backoffMu.Unlock()
	until, ok := p.backoffUntil[symbol]
	return !ok || time.Now().After(until)
}

func (p *QuotePoller) setBackoff(symbol mddomain.Symbol, d time.Duration) {
	p.backoffMu.Lock()
	p.backoffUntil[symbol] = time.Now().Add(d)
	p.backoffMu.Unlock()
}

func (p *QuotePoller) clearBackoff(symbol mddomain.Symbol) {
	p.backoffMu.Lock()
	delete(p.backoffUntil, symbol)
	p.backoffMu.Unlock()
}

// pruneBackoff drops backoff entries for symbols no longer tracked.
func (p *QuotePoller) pruneBackoff(active []TokenInfo) {
	valid := make(map[mddomain.Symbol]struct{}, len(active))
	for _, t := range active {
		valid[t.Symbol] = struct{}{}
	}
	p.backoffMu.Lock()
	for sym := range p.backoffUntil {
		if _, ok := valid[sym]; !ok {
			delete(p.backoffUntil, sym)
		}
	}
	p.backoffMu.Unlock()
}

func (p *QuotePoller) pollOne(ctx context.Context, tok TokenInfo, cfg PollerConfig) {
	if isPumpMint(tok.Mint) {
		p.dbg("poll_skip_pump_mint")
		return
	}
	if p.denylist.IsDenied(string(tok.Symbol), string(tok.Symbol)) {
		p.dbg("poll_skip_denied")
		return
	}
	if tok.Decimals == 0 || tok.Decimals > 18 {
		p.dbg("poll_skip_bad_decimals")
		return
	}

	book, ok := p.state.Book(tok.Symbol)
	if !ok {
		p.dbg("poll_skip_no_ob")
		return
	}
	now := time.Now()
	if book.AgeMS(now) > int64(cfg.MaxObAgeMs) {
		p.dbg("poll_skip_ob_stale")
		return
	}

	snap := book.Snapshot(now)
	if len(snap.Bids) == 0 || len(snap.Asks) == 0 {
		p.dbg("poll_skip_no_ob")
		return
	}
	spreadBps, ok := snap.SpreadBps()
	if !ok {
		p.dbg("poll_skip_no_spread")
		return
	}
	if spreadBps.GreaterThan(cfg.MaxSpreadBps) {
		p.dbg("poll_skip_spread")
		return
	}

	qp := p.state.PairFor(tok.key())
	stableRaw := ToRaw(cfg.Notional, cfg.StableDecimals)

	quote, err := p.quoter.Quote(ctx, cfg.StableMint, tok.Mint, stableRaw)
	if err != nil {
		p.setBackoff(tok.Symbol, pollerBackoffError)
		p.dbg("poll_error")
		if p.log != nil {
			p.log.Warn(ctx, "quote poller error", "symbol", tok.Symbol, "error", err)
		}
		return
	}
	if quote == nil {
		p.dbg("poll_buy_quote_none")
		p.setBackoff(tok.Symbol, pollerBackoffNone)
		return
	}

	qp.SetBuyQuote(quote)
	p.clearBackoff(tok.Symbol)
}

// Run cycles over the watchlist on cfg.PollInterval until ctx is done,
// fanning each token out to a bounded pool of concurrent quote requests.
func (p *QuotePoller) Run(ctx context.Context) {
	sem := semaphore.NewWeighted(pollerConcurrency)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if p.enabled != nil && !p.enabled() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		tokens, cfg := p.snapshot()
		p.pruneBackoff(tokens)

		started := time.Now()
		batchSize := pollerConcurrency * pollerBatchMult

		for i := 0; i < len(tokens); i += batchSize {
			end := i + batchSize
			if end > len(tokens) {
				end = len(tokens)
			}
			var wg sync.WaitGroup
			for _, tok := range tokens[i:end] {
				tok := tok
				if !p.pollAllowed(tok.Symbol) {
					p.dbg("poll_skip_backoff")
					continue
				}
				if err := sem.Acquire(ctx, 1); err != nil {
					return
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer sem.Release(1)
					p.pollOne(ctx, tok, cfg)
				}()
			}
			wg.Wait()
		}

		elapsed := time.Since(started)
		sleepFor := cfg.PollInterval - elapsed
		if sleepFor < 0 {
			sleepFor = 0
		}
		jitter := time.Duration(float64(cfg.PollInterval) * pollerJitterRatio * fractionalSecond())
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleepFor + jitter):
		}
	}
}

// fractionalSecond returns the sub-second fraction of the current wall
// clock, a cheap source of spread-out jitter without a dedicated RNG.
func fractionalSecond() float64 {
	return float64(time.Now().UnixNano()%1e9) / 1e9
}
