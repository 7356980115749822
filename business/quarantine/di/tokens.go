// Package di contains dependency injection tokens for the quarantine context.
package di

import (
	"github.com/solarb/arbitrage-detector/business/quarantine/app"
	"github.com/solarb/arbitrage-detector/internal/di"
)

const (
	Manager  = "quarantine.Manager"
	Verifier = "quarantine.Verifier"
)

// GetManager resolves the registered quarantine manager.
func GetManager(sr di.ServiceRegistry) *app.Manager {
	return di.MustGet[*app.Manager](sr, Manager)
}

// GetVerifier resolves the registered quarantine verifier.
func GetVerifier(sr di.ServiceRegistry) *app.Verifier {
	return di.MustGet[*app.Verifier](sr, Verifier)
}
