// Package logsink implements a SignalSink that renders arbitrage signals
// through the structured logger. It is the default, always-available
// delivery channel; other channels (chat, webhook) can be added as further
// infra packages without touching the arbitrage context.
package logsink

import (
	"context"

	arbapp "github.com/solarb/arbitrage-detector/business/arbitrage/app"
	arbdomain "github.com/solarb/arbitrage-detector/business/arbitrage/domain"
	"github.com/solarb/arbitrage-detector/internal/logger"
)

// New builds a SignalSink that logs every signal at info level.
func New(log logger.LoggerInterface) arbapp.SignalSink {
	return func(ctx context.Context, sig arbdomain.Signal) {
		log.Info(ctx, "arbitrage signal",
			"key", sig.Key,
			"token", sig.Token,
			"direction", sig.Direction,
			"profit_usd", sig.ProfitUSD.StringFixed(4),
			"notional_usd", sig.NotionalUSD.StringFixed(2),
			"text", sig.Text,
		)
	}
}
