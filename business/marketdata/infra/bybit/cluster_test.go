package bybit_test

import (
	"testing"

	"github.com/solarb/arbitrage-detector/business/marketdata/infra/bybit"
)

func TestTopic_RoundTripsSymbol(t *testing.T) {
	topic := bybit.Topic(50, "SOLUSDC")
	if topic != "orderbook.50.SOLUSDC" {
		t.Fatalf("unexpected topic: %s", topic)
	}
	if got := bybit.SymbolFromTopic(topic); got != "SOLUSDC" {
		t.Errorf("expected SOLUSDC, got %s", got)
	}
}

func TestSymbolFromTopic_BareSymbol(t *testing.T) {
	if got := bybit.SymbolFromTopic("SOLUSDC"); got != "SOLUSDC" {
		t.Errorf("expected bare symbol passthrough, got %s", got)
	}
}
