// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/solarb/arbitrage-detector/business/arbitrage/app"
	arbdomain "github.com/solarb/arbitrage-detector/business/arbitrage/domain"
	"github.com/solarb/arbitrage-detector/internal/di"
)

const (
	Engine     = "arbitrage.Engine"
	Poller     = "arbitrage.Poller"
	SignalSink = "arbitrage.SignalSink"
	Denylist   = "arbitrage.Denylist"
)

// GetEngine resolves the registered arbitrage engine.
func GetEngine(sr di.ServiceRegistry) *app.Engine {
	return di.MustGet[*app.Engine](sr, Engine)
}

// GetPoller resolves the registered quote poller.
func GetPoller(sr di.ServiceRegistry) *app.QuotePoller {
	return di.MustGet[*app.QuotePoller](sr, Poller)
}

// GetSignalSink resolves the registered signal sink.
func GetSignalSink(sr di.ServiceRegistry) app.SignalSink {
	return di.MustGet[app.SignalSink](sr, SignalSink)
}

// GetDenylist resolves the registered token denylist.
func GetDenylist(sr di.ServiceRegistry) *arbdomain.Denylist {
	return di.MustGet[*arbdomain.Denylist](sr, Denylist)
}
