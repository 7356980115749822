// Package app implements the arbitrage engine: the quote poller, the
// per-tick two-direction evaluator, and the persistence/dedup/skip-stats
// gating that shapes it into signals.
package app

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)
var tenThousand = decimal.NewFromInt(10000)

// Thresholds holds the fee/buffer figures subtracted from gross spread to
// get the minimum profit a signal must clear.
type Thresholds struct {
	BybitTakerFeeBps  decimal.Decimal
	SolanaTxFeeUSD    decimal.Decimal
	LatencyBufferBps  decimal.Decimal
	UsdtUsdcBufferBps decimal.Decimal
	MinProfitUSD      decimal.Decimal
}

// RequiredProfitUSD is the minimum net profit a notional-sized trade must
// clear: the CEX taker fee, a latency/stablecoin-peg buffer, the flat
// Solana transaction cost, and the configured profit floor.
func (t Thresholds) RequiredProfitUSD(notional decimal.Decimal) decimal.Decimal {
	cexFee := notional.Mul(t.BybitTakerFeeBps).Div(tenThousand)
	buffers := notional.Mul(t.LatencyBufferBps.Add(t.UsdtUsdcBufferBps)).Div(tenThousand)
	return cexFee.Add(buffers).Add(t.SolanaTxFeeUSD).Add(t.MinProfitUSD)
}

// NetProfit is the stable-denominated proceeds of a round trip, net of the
// original notional and the required profit floor.
func NetProfit(stableOut, notional, required decimal.Decimal) decimal.Decimal {
	return stableOut.Sub(notional).Sub(required)
}

// PriceRatioOK guards against a quote that implies a price wildly off from
// the CEX mid, usually a sign of a bad route or a stale/thin book.
func PriceRatioOK(implied, mid, maxRatio decimal.Decimal) bool {
	if !implied.IsPositive() || !mid.IsPositive() {
		return false
	}
	hi, lo := implied, mid
	if mid.GreaterThan(implied) {
		hi, lo = mid, implied
	}
	return hi.Div(lo).LessThanOrEqual(maxRatio)
}

// GrossCapOK guards against a too-good-to-be-true gross return, usually a
// sign of a pricing glitch rather than a real opportunity.
func GrossCapOK(stableOut, notional, maxGrossProfitPct decimal.Decimal) bool {
	if !notional.IsPositive() {
		return false
	}
	grossPct := stableOut.Sub(notional).Div(notional).Mul(hundred)
	return grossPct.LessThanOrEqual(maxGrossProfitPct)
}

// ToRaw converts a decimal token amount to its raw integer representation,
// truncating (never rounding up) at the mint's decimals.
func ToRaw(amount decimal.Decimal, decimals uint8) decimal.Decimal {
	return amount.Shift(int32(decimals)).Truncate(0)
}

// FromRaw converts a raw integer amount back to its decimal representation.
func FromRaw(raw decimal.Decimal, decimals uint8) decimal.Decimal {
	return raw.Shift(-int32(decimals))
}
