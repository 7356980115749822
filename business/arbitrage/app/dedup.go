package app

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// dedupPruneInterval bounds how often a CanSend call bothers scanning the
// whole map for stale entries.
const dedupPruneInterval = 60 * time.Second

type sentRecord struct {
	at     time.Time
	profit decimal.Decimal
}

// Dedup suppresses repeat signals for the same key within a cooldown window,
// unless profit improved by at least minDeltaProfit since the last send.
type Dedup struct {
	mu             sync.Mutex
	cooldown       time.Duration
	minDeltaProfit decimal.Decimal
	lastSent       map[string]sentRecord
	lastPrune      time.Time
}

// NewDedup builds a Dedup with the given cooldown and minimum profit delta.
func NewDedup(cooldown time.Duration, minDeltaProfit decimal.Decimal) *Dedup {
	return &Dedup{
		cooldown:       cooldown,
		minDeltaProfit: minDeltaProfit,
		lastSent:       make(map[string]sentRecord),
	}
}

// SetCooldown updates the resend cooldown for future calls.
func (d *Dedup) SetCooldown(cooldown time.Duration) {
	d.mu.Lock()
	d.cooldown = cooldown
	d.mu.Unlock()
}

// SetMinDeltaProfit updates the minimum profit improvement for future calls.
func (d *Dedup) SetMinDeltaProfit(delta decimal.Decimal) {
	d.mu.Lock()
	d.minDeltaProfit = delta
	d.mu.Unlock()
}

// pruneStale drops entries old enough that no future CanSend call could
// still reference their cooldown window. Runs at most once per
// dedupPruneInterval. Caller must hold mu.
func (d *Dedup) pruneStale(now time.Time) {
	if now.Sub(d.lastPrune) < dedupPruneInterval {
		return
	}
	d.lastPrune = now
	cutoff := now.Add(-2 * d.cooldown)
	for k, rec := range d.lastSent {
		if rec.at.Before(cutoff) {
			delete(d.lastSent, k)
		}
	}
}

// CanSend reports whether a signal for key may be sent now: true if it has
// never been sent, the cooldown has elapsed, or profit improved enough to
// justify an early resend.
func (d *Dedup) CanSend(key string, profit decimal.Decimal) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	d.pruneStale(now)

	prev, ok := d.lastSent[key]
	if !ok {
		return true
	}
	withinCooldown := now.Sub(prev.at) < d.cooldown
	improvedEnough := profit.Sub(prev.profit).GreaterThanOrEqual(d.minDeltaProfit)
	return !withinCooldown || improvedEnough
}

// MarkSent records that a signal for key was just sent at profit.
func (d *Dedup) MarkSent(key string, profit decimal.Decimal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastSent[key] = sentRecord{at: time.Now(), profit: profit}
}
