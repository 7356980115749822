package domain

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solarb/arbitrage-detector/internal/logger"
)

// RawLevel is a single [price, qty] pair as received off the wire, still
// encoded as strings.
type RawLevel [2]string

// Level is a parsed order-book price level.
type Level struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// staleSentinelMs is returned by AgeMS for a book that has never received an update.
const staleSentinelMs = int64(1 << 40)

// OrderBook is the per-Symbol L2 book. Exactly one writer (the owning WS
// shard) ever mutates a given book; readers take an atomic copy-then-sort
// snapshot so they never observe a half-mutated side.
type OrderBook struct {
	symbol Symbol
	log    logger.LoggerInterface

	mu             sync.Mutex
	bids           map[string]Level
	asks           map[string]Level
	lastUpdateMs   int64
	lastCtsMs      int64
	lastSnapshotMs int64
}

// NewOrderBook creates an empty book for the given symbol.
func NewOrderBook(symbol Symbol, log logger.LoggerInterface) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		log:    log,
		bids:   make(map[string]Level),
		asks:   make(map[string]Level),
	}
}

// Symbol returns the book's symbol.
func (b *OrderBook) Symbol() Symbol { return b.symbol }

// ApplySnapshot replaces both sides of the book. Malformed rows (fewer than
// two fields, non-numeric price or qty) are dropped with a warning; the rest
// of the snapshot is still applied. Levels with qty <= 0 are omitted.
func (b *OrderBook) ApplySnapshot(ctx context.Context, bids, asks []RawLevel, tsMs, ctsMs int64) {
	newBids := make(map[string]Level, len(bids))
	newAsks := make(map[string]Level, len(asks))

	b.ingest(ctx, bids, newBids)
	b.ingest(ctx, asks, newAsks)

	b.mu.Lock()
	b.bids = newBids
	b.asks = newAsks
	b.lastUpdateMs = tsMs
	b.lastCtsMs = ctsMs
	b.lastSnapshotMs = tsMs
	b.mu.Unlock()
}

// ApplyDelta upserts or removes individual levels. qty == 0 removes the
// level (a no-op if absent); malformed rows are dropped with a warning and
// never abort the rest of the batch.
func (b *OrderBook) ApplyDelta(ctx context.Context, bids, asks []RawLevel, tsMs, ctsMs int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.applySide(ctx, bids, b.bids)
	b.applySide(ctx, asks, b.asks)
	b.lastUpdateMs = tsMs
	b.lastCtsMs = ctsMs
}

// ingest parses raw rows into dst, dropping malformed or non-positive-qty rows.
func (b *OrderBook) ingest(ctx context.Context, raw []RawLevel, dst map[string]Level) {
	for _, r := range raw {
		lvl, ok := b.parseRow(ctx, r)
		if !ok {
			continue
		}
		if !lvl.Qty.IsPositive() {
			continue
		}
		dst[lvl.Price.String()] = lvl
	}
}

// applySide applies delta rows directly to a live side map under the held lock.
func (b *OrderBook) applySide(ctx context.Context, raw []RawLevel, side map[string]Level) {
	for _, r := range raw {
		lvl, ok := b.parseRow(ctx, r)
		if !ok {
			continue
		}
		key := lvl.Price.String()
		if !lvl.Qty.IsPositive() {
			delete(side, key)
			continue
		}
		side[key] = lvl
	}
}

// parseRow parses one raw [price, qty] row, logging and dropping anything malformed.
func (b *OrderBook) parseRow(ctx context.Context, r RawLevel) (Level, bool) {
	if r[0] == "" || r[1] == "" {
		if b.log != nil {
			b.log.Warn(ctx, "dropping malformed book row", "symbol", b.symbol, "row", r)
		}
		return Level{}, false
	}

	price, err := decimal.NewFromString(r[0])
	if err != nil {
		if b.log != nil {
			b.log.Warn(ctx, "dropping non-numeric price", "symbol", b.symbol, "raw", r[0], "error", err)
		}
		return Level{}, false
	}

	qty, err := decimal.NewFromString(r[1])
	if err != nil {
		if b.log != nil {
			b.log.Warn(ctx, "dropping non-numeric qty", "symbol", b.symbol, "raw", r[1], "error", err)
		}
		return Level{}, false
	}

	return Level{Price: price, Qty: qty}, true
}

// AgeMS returns the book's age in milliseconds, based on the most recent of
// the server and local-update timestamps. Returns a large sentinel if the
// book has never been updated.
func (b *OrderBook) AgeMS(now time.Time) int64 {
	b.mu.Lock()
	u, c := b.lastUpdateMs, b.lastCtsMs
	b.mu.Unlock()

	last := u
	if c > last {
		last = c
	}
	if last == 0 {
		return staleSentinelMs
	}
	return now.UnixMilli() - last
}

// Snapshot is an atomic, sorted view of both sides taken at a point in time.
type Snapshot struct {
	Symbol Symbol
	Bids   []Level // descending by price
	Asks   []Level // ascending by price
	AgeMs  int64
}

// Snapshot copies both sides and sorts them for engine consumption.
func (b *OrderBook) Snapshot(now time.Time) Snapshot {
	b.mu.Lock()
	bids := make([]Level, 0, len(b.bids))
	for _, l := range b.bids {
		bids = append(bids, l)
	}
	asks := make([]Level, 0, len(b.asks))
	for _, l := range b.asks {
		asks = append(asks, l)
	}
	b.mu.Unlock()

	sort.Slice(bids, func(i, j int) bool { return bids[i].Price.GreaterThan(bids[j].Price) })
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price.LessThan(asks[j].Price) })

	return Snapshot{
		Symbol: b.symbol,
		Bids:   bids,
		Asks:   asks,
		AgeMs:  b.AgeMS(now),
	}
}

// BestBid returns the highest bid, if any.
func (s Snapshot) BestBid() (decimal.Decimal, bool) {
	if len(s.Bids) == 0 {
		return decimal.Zero, false
	}
	return s.Bids[0].Price, true
}

// BestAsk returns the lowest ask, if any.
func (s Snapshot) BestAsk() (decimal.Decimal, bool) {
	if len(s.Asks) == 0 {
		return decimal.Zero, false
	}
	return s.Asks[0].Price, true
}

// Mid returns (best_bid+best_ask)/2, if both sides are present.
func (s Snapshot) Mid() (decimal.Decimal, bool) {
	bid, ok := s.BestBid()
	if !ok {
		return decimal.Zero, false
	}
	ask, ok := s.BestAsk()
	if !ok {
		return decimal.Zero, false
	}
	return bid.Add(ask).Div(decimal.NewFromInt(2)), true
}

// SpreadBps returns (best_ask-best_bid)/mid * 10000, if computable.
func (s Snapshot) SpreadBps() (decimal.Decimal, bool) {
	bid, ok := s.BestBid()
	if !ok {
		return decimal.Zero, false
	}
	ask, ok := s.BestAsk()
	if !ok {
		return decimal.Zero, false
	}
	mid, ok := s.Mid()
	if !ok || mid.IsZero() {
		return decimal.Zero, false
	}
	return ask.Sub(bid).Div(mid).Mul(decimal.NewFromInt(10000)), true
}
