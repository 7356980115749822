// Package notify implements the bounded context that delivers emitted
// arbitrage signals to the outside world. It owns the arbitrage.SignalSink
// DI token, overriding the no-op default the arbitrage module registers, so
// it must be registered after business/arbitrage in the module list.
package notify

import (
	"context"

	arbapp "github.com/solarb/arbitrage-detector/business/arbitrage/app"
	arbdi "github.com/solarb/arbitrage-detector/business/arbitrage/di"
	"github.com/solarb/arbitrage-detector/business/notify/infra/logsink"
	"github.com/solarb/arbitrage-detector/internal/di"
	"github.com/solarb/arbitrage-detector/internal/logger"
	"github.com/solarb/arbitrage-detector/internal/monolith"
)

// Module implements the notify bounded context.
type Module struct{}

// RegisterServices overrides the arbitrage module's default no-op signal
// sink with one that logs every signal.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbdi.SignalSink, func(sr di.ServiceRegistry) arbapp.SignalSink {
		log := sr.Get("logger").(logger.LoggerInterface)
		return logsink.New(log)
	})
	return nil
}

// Startup is a no-op: delivery is invoked synchronously from the engine's
// emit path, not polled on its own schedule.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "notify module started")
	return nil
}
