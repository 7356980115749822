package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/solarb/arbitrage-detector/business/marketdata/domain"
)

func TestOrderBook_ApplySnapshot_DropsMalformedRows(t *testing.T) {
	book := domain.NewOrderBook("SOLUSDC", nil)

	bids := []domain.RawLevel{
		{"10.00", "5"},
		{"bad", "3"},    // non-numeric price, dropped
		{"9.99"},        // short row, dropped
		{"9.50", "0"},   // zero qty, omitted
		{"9.00", "-1"},  // negative qty, omitted
	}
	asks := []domain.RawLevel{
		{"10.01", "4"},
	}

	book.ApplySnapshot(context.Background(), bids, asks, 1000, 1000)
	snap := book.Snapshot(time.UnixMilli(1000))

	if len(snap.Bids) != 1 {
		t.Fatalf("expected 1 surviving bid level, got %d: %+v", len(snap.Bids), snap.Bids)
	}
	if !snap.Bids[0].Price.Equal(decimalMustParse("10.00")) {
		t.Errorf("unexpected surviving bid price: %s", snap.Bids[0].Price)
	}
	if len(snap.Asks) != 1 {
		t.Fatalf("expected 1 ask level, got %d", len(snap.Asks))
	}
}

func TestOrderBook_ApplyDelta_RemovesZeroQtyAndUpserts(t *testing.T) {
	book := domain.NewOrderBook("SOLUSDC", nil)
	book.ApplySnapshot(context.Background(),
		[]domain.RawLevel{{"10.00", "5"}, {"9.99", "2"}},
		[]domain.RawLevel{{"10.01", "4"}},
		1000, 1000)

	book.ApplyDelta(context.Background(),
		[]domain.RawLevel{{"10.00", "0"}, {"9.99", "3"}, {"9.98", "1"}},
		nil,
		2000, 2000)

	snap := book.Snapshot(time.UnixMilli(2000))
	if len(snap.Bids) != 2 {
		t.Fatalf("expected 2 bid levels after delta, got %d: %+v", len(snap.Bids), snap.Bids)
	}
	// 10.00 removed, 9.99 updated, 9.98 inserted; descending order expected.
	if !snap.Bids[0].Price.Equal(decimalMustParse("9.99")) {
		t.Errorf("expected best bid 9.99, got %s", snap.Bids[0].Price)
	}
}

func TestOrderBook_Monotonicity(t *testing.T) {
	book := domain.NewOrderBook("SOLUSDC", nil)
	book.ApplySnapshot(context.Background(),
		[]domain.RawLevel{{"10.00", "5"}},
		[]domain.RawLevel{{"10.01", "4"}},
		1000, 1000)

	// Deleting an absent level is a no-op.
	book.ApplyDelta(context.Background(), []domain.RawLevel{{"1.00", "0"}}, nil, 1500, 1500)

	snap := book.Snapshot(time.UnixMilli(1500))
	for _, l := range append(append([]domain.Level{}, snap.Bids...), snap.Asks...) {
		if !l.Qty.IsPositive() {
			t.Errorf("found non-positive qty level after mutation: %+v", l)
		}
	}
}

func TestOrderBook_AgeMS_NeverUpdatedSentinel(t *testing.T) {
	book := domain.NewOrderBook("SOLUSDC", nil)
	if age := book.AgeMS(time.Now()); age < 1<<30 {
		t.Errorf("expected large sentinel age for untouched book, got %d", age)
	}
}

func TestSnapshot_MidAndSpread(t *testing.T) {
	book := domain.NewOrderBook("SOLUSDC", nil)
	book.ApplySnapshot(context.Background(),
		[]domain.RawLevel{{"100.00", "1"}},
		[]domain.RawLevel{{"100.10", "1"}},
		1000, 1000)

	snap := book.Snapshot(time.UnixMilli(1000))
	mid, ok := snap.Mid()
	if !ok || !mid.Equal(decimalMustParse("100.05")) {
		t.Errorf("expected mid 100.05, got %s (ok=%v)", mid, ok)
	}
	bps, ok := snap.SpreadBps()
	if !ok {
		t.Fatal("expected computable spread")
	}
	if bps.LessThan(decimalMustParse("9")) || bps.GreaterThan(decimalMustParse("11")) {
		t.Errorf("expected ~10bps spread, got %s", bps)
	}
}
