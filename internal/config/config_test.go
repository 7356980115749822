package config_test

import (
	"testing"

	"github.com/solarb/arbitrage-detector/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		WS:         config.WSConfig{URL: "wss://stream.bybit.com/v5/public/spot"},
		Stable:     config.StableConfig{Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
		Tokens:     []config.TokenConfig{{BybitSymbol: "SOLUSDT", Mint: "So11111111111111111111111111111111111111112", Decimals: 9}},
		RateLimits: config.RateLimitsConfig{RPS: 5},
		Timing:     config.TimingConfig{EngineTickHz: 2},
		Jupiter:    config.JupiterConfig{BaseURL: "https://lite-api.jup.ag/swap/v1"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{"valid config passes", func(c *config.Config) {}, false},
		{"missing ws url", func(c *config.Config) { c.WS.URL = "" }, true},
		{"missing stable mint", func(c *config.Config) { c.Stable.Mint = "" }, true},
		{"empty token list", func(c *config.Config) { c.Tokens = nil }, true},
		{"token missing mint", func(c *config.Config) { c.Tokens[0].Mint = "" }, true},
		{"token missing symbol", func(c *config.Config) { c.Tokens[0].BybitSymbol = "" }, true},
		{"suspicious token decimals", func(c *config.Config) { c.Tokens[0].Decimals = 19 }, true},
		{"non-positive rps", func(c *config.Config) { c.RateLimits.RPS = 0 }, true},
		{"non-positive tick rate", func(c *config.Config) { c.Timing.EngineTickHz = 0 }, true},
		{"missing jupiter base url", func(c *config.Config) { c.Jupiter.BaseURL = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTimingConfig_EngineTick(t *testing.T) {
	tm := config.TimingConfig{EngineTickHz: 2}
	if got := tm.EngineTick(); got.Milliseconds() != 500 {
		t.Errorf("expected 500ms at 2Hz, got %s", got)
	}
}

func TestTimingConfig_JupiterPollInterval(t *testing.T) {
	tm := config.TimingConfig{JupiterPollIntervalSec: 1.5}
	if got := tm.JupiterPollInterval(); got.Milliseconds() != 1500 {
		t.Errorf("expected 1500ms, got %s", got)
	}
}
