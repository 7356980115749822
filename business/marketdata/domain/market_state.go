package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	dexdomain "github.com/solarb/arbitrage-detector/business/dex/domain"
	"github.com/solarb/arbitrage-detector/internal/logger"
)

// QuotePair holds the buy (stable->token) and sell (token->stable) quotes
// warmed for one TokenKey. A per-pair mutex protects atomic read/write of
// both quotes together.
type QuotePair struct {
	mu sync.Mutex

	buyQuote      *dexdomain.Quote
	sellQuote     *dexdomain.Quote
	sellAmountRaw decimal.Decimal
}

// QuotePairSnapshot is an atomic, immutable read of a QuotePair.
type QuotePairSnapshot struct {
	BuyQuote      *dexdomain.Quote
	SellQuote     *dexdomain.Quote
	SellAmountRaw decimal.Decimal
}

// Snapshot takes an atomic read of both quotes.
func (p *QuotePair) Snapshot() QuotePairSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return QuotePairSnapshot{
		BuyQuote:      p.buyQuote,
		SellQuote:     p.sellQuote,
		SellAmountRaw: p.sellAmountRaw,
	}
}

// SetBuyQuote atomically replaces the buy quote (poller write path).
func (p *QuotePair) SetBuyQuote(q *dexdomain.Quote) {
	p.mu.Lock()
	p.buyQuote = q
	p.mu.Unlock()
}

// SetSellQuote atomically replaces the sell quote and the base amount it was
// requested for (engine branch-B re-quote write path).
func (p *QuotePair) SetSellQuote(q *dexdomain.Quote, amountRaw decimal.Decimal) {
	p.mu.Lock()
	p.sellQuote = q
	p.sellAmountRaw = amountRaw
	p.mu.Unlock()
}

// ClearStaleBuyQuote nulls the buy quote if it is older than maxAge; reports
// whether it was cleared.
func (p *QuotePair) ClearStaleBuyQuote(now time.Time, maxAge time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buyQuote != nil && p.buyQuote.Stale(now, maxAge) {
		p.buyQuote = nil
		return true
	}
	return false
}

// ClearStaleSellQuote nulls the sell quote if it is older than maxAge; reports
// whether it was cleared.
func (p *QuotePair) ClearStaleSellQuote(now time.Time, maxAge time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sellQuote != nil && p.sellQuote.Stale(now, maxAge) {
		p.sellQuote = nil
		return true
	}
	return false
}

// MarketState is the shared registry of order books and quote pairs. Two
// independent locks guard the two maps; within an OrderBook or QuotePair,
// finer-grained locking applies.
type MarketState struct {
	log logger.LoggerInterface

	booksMu sync.RWMutex
	books   map[Symbol]*OrderBook

	pairsMu sync.RWMutex
	pairs   map[TokenKey]*QuotePair
}

// NewMarketState creates an empty MarketState.
func NewMarketState(log logger.LoggerInterface) *MarketState {
	return &MarketState{
		log:   log,
		books: make(map[Symbol]*OrderBook),
		pairs: make(map[TokenKey]*QuotePair),
	}
}

// BookFor returns the OrderBook for symbol, creating it on first access.
func (m *MarketState) BookFor(symbol Symbol) *OrderBook {
	m.booksMu.RLock()
	b, ok := m.books[symbol]
	m.booksMu.RUnlock()
	if ok {
		return b
	}

	m.booksMu.Lock()
	defer m.booksMu.Unlock()
	if b, ok := m.books[symbol]; ok {
		return b
	}
	b = NewOrderBook(symbol, m.log)
	m.books[symbol] = b
	return b
}

// Book returns the OrderBook for symbol without creating it.
func (m *MarketState) Book(symbol Symbol) (*OrderBook, bool) {
	m.booksMu.RLock()
	defer m.booksMu.RUnlock()
	b, ok := m.books[symbol]
	return b, ok
}

// PairFor returns the QuotePair for key, creating it on first access.
func (m *MarketState) PairFor(key TokenKey) *QuotePair {
	m.pairsMu.RLock()
	p, ok := m.pairs[key]
	m.pairsMu.RUnlock()
	if ok {
		return p
	}

	m.pairsMu.Lock()
	defer m.pairsMu.Unlock()
	if p, ok := m.pairs[key]; ok {
		return p
	}
	p = &QuotePair{}
	m.pairs[key] = p
	return p
}

// Symbols returns the set of symbols with a live book.
func (m *MarketState) Symbols() []Symbol {
	m.booksMu.RLock()
	defer m.booksMu.RUnlock()
	out := make([]Symbol, 0, len(m.books))
	for s := range m.books {
		out = append(out, s)
	}
	return out
}
