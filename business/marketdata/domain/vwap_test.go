package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/solarb/arbitrage-detector/business/marketdata/domain"
)

func levels(pairs ...[2]string) []domain.Level {
	out := make([]domain.Level, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, domain.Level{Price: decimalMustParse(p[0]), Qty: decimalMustParse(p[1])})
	}
	return out
}

func TestSimulateBuyWithNotional_SingleLevel(t *testing.T) {
	asks := levels([2]string{"10.01", "200"})
	fill, ok := domain.SimulateBuyWithNotional(asks, decimalMustParse("1000"))
	if !ok {
		t.Fatal("expected a fill")
	}
	if !fill.AvgPrice.Equal(decimalMustParse("10.01")) {
		t.Errorf("expected avg price 10.01, got %s", fill.AvgPrice)
	}
	if fill.CoveragePct.LessThan(decimalMustParse("99")) {
		t.Errorf("expected near-full coverage, got %s", fill.CoveragePct)
	}
}

func TestSimulateBuyWithNotional_Monotonicity(t *testing.T) {
	asks := levels([2]string{"10.00", "50"}, [2]string{"10.50", "50"}, [2]string{"11.00", "50"})

	small, ok := domain.SimulateBuyWithNotional(asks, decimalMustParse("100"))
	if !ok {
		t.Fatal("expected small fill")
	}
	large, ok := domain.SimulateBuyWithNotional(asks, decimalMustParse("1000"))
	if !ok {
		t.Fatal("expected large fill")
	}

	if large.AvgPrice.LessThan(small.AvgPrice) {
		t.Errorf("avg price should be non-decreasing with notional: small=%s large=%s", small.AvgPrice, large.AvgPrice)
	}
	if large.BaseOut.LessThan(small.BaseOut) {
		t.Errorf("base_out should be non-decreasing with notional: small=%s large=%s", small.BaseOut, large.BaseOut)
	}
}

func TestSimulateBuyWithNotional_ConservationAndCap(t *testing.T) {
	asks := levels([2]string{"10.00", "10"}, [2]string{"10.10", "10"})
	fill, ok := domain.SimulateBuyWithNotional(asks, decimalMustParse("1000000"))
	if !ok {
		t.Fatal("expected a fill")
	}
	totalQty := decimal.Zero
	for _, l := range asks {
		totalQty = totalQty.Add(l.Qty)
	}
	if fill.BaseOut.GreaterThan(totalQty) {
		t.Errorf("base_out %s must not exceed total book qty %s", fill.BaseOut, totalQty)
	}
}

func TestSimulateSellBase_SlippageSign(t *testing.T) {
	bids := levels([2]string{"10.00", "50"}, [2]string{"9.50", "50"})
	fill, ok := domain.SimulateSellBase(bids, decimalMustParse("80"))
	if !ok {
		t.Fatal("expected a fill")
	}
	if fill.SlippageBps.IsNegative() {
		t.Errorf("expected non-negative slippage when walking into worse bids, got %s", fill.SlippageBps)
	}
}

func TestSimulateBuyWithNotional_EmptyBook(t *testing.T) {
	if _, ok := domain.SimulateBuyWithNotional(nil, decimalMustParse("100")); ok {
		t.Error("expected no fill on empty book")
	}
}
