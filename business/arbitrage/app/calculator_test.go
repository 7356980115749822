package app

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestThresholds_RequiredProfitUSD(t *testing.T) {
	th := Thresholds{
		BybitTakerFeeBps:  dec("10"),
		SolanaTxFeeUSD:    dec("0.05"),
		LatencyBufferBps:  dec("2"),
		UsdtUsdcBufferBps: dec("1"),
		MinProfitUSD:      dec("1"),
	}

	// Scenario 1's literal notional of 1000 USD.
	got := th.RequiredProfitUSD(dec("1000"))

	cexFee := dec("1000").Mul(dec("10")).Div(tenThousand)          // 1.0
	buffers := dec("1000").Mul(dec("3")).Div(tenThousand)          // 0.3
	expected := cexFee.Add(buffers).Add(dec("0.05")).Add(dec("1")) // 2.35
	if !got.Equal(expected) {
		t.Errorf("RequiredProfitUSD = %s, want %s", got, expected)
	}
}

func TestNetProfit(t *testing.T) {
	got := NetProfit(dec("1019.9"), dec("1000"), dec("4"))
	want := dec("15.9")
	if !got.Equal(want) {
		t.Errorf("NetProfit = %s, want %s", got, want)
	}
}

func TestPriceRatioOK(t *testing.T) {
	tests := []struct {
		name            string
		implied, mid    decimal.Decimal
		maxRatio        decimal.Decimal
		want            bool
	}{
		{"equal prices ok", dec("1"), dec("1"), dec("3"), true},
		{"within ratio ok", dec("1"), dec("2"), dec("3"), true},
		{"over ratio rejected", dec("1"), dec("10"), dec("3"), false},
		{"zero implied rejected", dec("0"), dec("1"), dec("3"), false},
		{"zero mid rejected", dec("1"), dec("0"), dec("3"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriceRatioOK(tt.implied, tt.mid, tt.maxRatio); got != tt.want {
				t.Errorf("PriceRatioOK(%s, %s, %s) = %v, want %v", tt.implied, tt.mid, tt.maxRatio, got, tt.want)
			}
		})
	}
}

func TestGrossCapOK(t *testing.T) {
	if !GrossCapOK(dec("1040"), dec("1000"), dec("5")) {
		t.Error("4% gross expected within 5% cap")
	}
	if GrossCapOK(dec("1100"), dec("1000"), dec("5")) {
		t.Error("10% gross expected to exceed 5% cap")
	}
	if GrossCapOK(dec("100"), dec("0"), dec("5")) {
		t.Error("zero notional must never pass the gross cap")
	}
}

func TestToRawFromRaw_RoundTrip(t *testing.T) {
	amount := dec("12.3456789")
	raw := ToRaw(amount, 6)
	if !raw.Equal(dec("12345678")) {
		t.Errorf("ToRaw = %s, want 12345678 (truncated, not rounded)", raw)
	}
	back := FromRaw(raw, 6)
	if !back.Equal(dec("12.345678")) {
		t.Errorf("FromRaw = %s, want 12.345678", back)
	}
}
