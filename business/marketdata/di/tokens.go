// Package di contains dependency injection tokens for the market-data context.
package di

import (
	"github.com/solarb/arbitrage-detector/business/marketdata/domain"
	"github.com/solarb/arbitrage-detector/business/marketdata/infra/bybit"
	"github.com/solarb/arbitrage-detector/internal/di"
)

const (
	MarketState = "marketdata.MarketState"
	Cluster     = "marketdata.Cluster"
)

// GetMarketState resolves the shared MarketState.
func GetMarketState(sr di.ServiceRegistry) *domain.MarketState {
	return di.MustGet[*domain.MarketState](sr, MarketState)
}

// GetCluster resolves the registered WS cluster.
func GetCluster(sr di.ServiceRegistry) *bybit.Cluster {
	return di.MustGet[*bybit.Cluster](sr, Cluster)
}
