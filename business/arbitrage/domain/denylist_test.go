package domain

import "testing"

func TestDenylist_IsDenied(t *testing.T) {
	d := BuildDenylist([]string{"SCAMUSDT"}, nil)

	tests := []struct {
		name        string
		tokenKey    string
		bybitSymbol string
		want        bool
	}{
		{"configured symbol denied", "SCAMUSDT", "SCAMUSDT", true},
		{"default symbol denied", "XAUT", "XAUTUSDT", true},
		{"multiplier regex denied", "1000BONK", "1000BONKUSDT", true},
		{"ordinary token allowed", "SOL", "SOLUSDT", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.IsDenied(tt.tokenKey, tt.bybitSymbol); got != tt.want {
				t.Errorf("IsDenied(%q, %q) = %v, want %v", tt.tokenKey, tt.bybitSymbol, got, tt.want)
			}
		})
	}
}

func TestDenylist_CustomRegex(t *testing.T) {
	d := BuildDenylist(nil, []string{"^TEST.*"})
	if !d.IsDenied("TESTCOIN", "TESTCOINUSDT") {
		t.Error("expected custom regex to deny TESTCOIN")
	}
	if d.IsDenied("SOL", "SOLUSDT") {
		t.Error("expected SOL to pass through")
	}
}
