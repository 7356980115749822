package domain

import "github.com/shopspring/decimal"

// FillResult is the outcome of walking a side of the book to fill a target
// notional or base amount.
type FillResult struct {
	BaseOut      decimal.Decimal
	QuoteOut     decimal.Decimal
	AvgPrice     decimal.Decimal
	SlippageBps  decimal.Decimal
	CoveragePct  decimal.Decimal
}

// SimulateBuyWithNotional walks asks cheapest-first, spending up to notional
// units of quote currency, and returns the VWAP fill. Returns false if asks
// is empty or no fill is possible.
func SimulateBuyWithNotional(asks []Level, notional decimal.Decimal) (FillResult, bool) {
	if len(asks) == 0 || !notional.IsPositive() {
		return FillResult{}, false
	}

	bestAsk := asks[0].Price
	remaining := notional
	var baseOut, quoteOut decimal.Decimal

	for _, lvl := range asks {
		if !remaining.IsPositive() {
			break
		}
		maxBaseAtLevel := remaining.Div(lvl.Price)
		fillBase := decimal.Min(lvl.Qty, maxBaseAtLevel)
		if !fillBase.IsPositive() {
			continue
		}
		fillQuote := fillBase.Mul(lvl.Price)
		baseOut = baseOut.Add(fillBase)
		quoteOut = quoteOut.Add(fillQuote)
		remaining = remaining.Sub(fillQuote)
	}

	if !baseOut.IsPositive() {
		return FillResult{}, false
	}

	avgPrice := quoteOut.Div(baseOut)
	slippageBps := avgPrice.Div(bestAsk).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(10000))
	coverage := notional.Sub(remaining).Div(notional).Mul(decimal.NewFromInt(100))

	return FillResult{
		BaseOut:     baseOut,
		QuoteOut:    quoteOut,
		AvgPrice:    avgPrice,
		SlippageBps: slippageBps,
		CoveragePct: coverage,
	}, true
}

// SimulateSellBase walks bids best-first, selling up to baseAmount units of
// base currency, and returns the VWAP fill. Returns false if bids is empty
// or no fill is possible.
func SimulateSellBase(bids []Level, baseAmount decimal.Decimal) (FillResult, bool) {
	if len(bids) == 0 || !baseAmount.IsPositive() {
		return FillResult{}, false
	}

	bestBid := bids[0].Price
	remaining := baseAmount
	var baseOut, quoteOut decimal.Decimal

	for _, lvl := range bids {
		if !remaining.IsPositive() {
			break
		}
		fillBase := decimal.Min(lvl.Qty, remaining)
		if !fillBase.IsPositive() {
			continue
		}
		fillQuote := fillBase.Mul(lvl.Price)
		baseOut = baseOut.Add(fillBase)
		quoteOut = quoteOut.Add(fillQuote)
		remaining = remaining.Sub(fillBase)
	}

	if !baseOut.IsPositive() {
		return FillResult{}, false
	}

	avgPrice := quoteOut.Div(baseOut)
	slippageBps := decimal.NewFromInt(1).Sub(avgPrice.Div(bestBid)).Mul(decimal.NewFromInt(10000))
	coverage := baseAmount.Sub(remaining).Div(baseAmount).Mul(decimal.NewFromInt(100))

	return FillResult{
		BaseOut:     baseOut,
		QuoteOut:    quoteOut,
		AvgPrice:    avgPrice,
		SlippageBps: slippageBps,
		CoveragePct: coverage,
	}, true
}
