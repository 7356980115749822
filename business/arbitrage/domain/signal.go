package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Signal is one emitted arbitrage opportunity, ready for a sink to render
// and deliver.
type Signal struct {
	Key         string
	Token       string
	Direction   Direction
	ProfitUSD   decimal.Decimal
	NotionalUSD decimal.Decimal
	Text        string
}

// SignalKey builds the dedup/idempotency key for one (token, direction,
// notional) combination. The notional is truncated to an integer, matching
// the original key format exactly.
func SignalKey(token string, dir Direction, notional decimal.Decimal) string {
	return fmt.Sprintf("%s:%s:%d", token, dir, notional.IntPart())
}
