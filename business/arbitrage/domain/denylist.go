package domain

import (
	"regexp"
	"strings"
)

// defaultDenylistSymbols are excluded regardless of config: tokenized
// equities and synthetic gold/silver, which price against off-chain
// references the VWAP/quote pipeline has no way to validate.
var defaultDenylistSymbols = map[string]struct{}{
	"XAUT": {}, "PAXG": {},
	"AAPLX": {}, "GOOGLX": {}, "TSLAX": {}, "NVDAX": {}, "CRCLX": {}, "HOODX": {},
}

// defaultDenylistRegex matches multiplier symbols like 1000BONK, whose
// quoted price is off by the multiplier unless explicitly rescaled.
var defaultDenylistRegex = []string{
	`^(1000|10000|100000)[A-Z0-9]+$`,
}

// Denylist excludes tokens from both the poller and the engine by symbol or
// regex, independent of quarantine (which is dynamic and recoverable).
type Denylist struct {
	symbols map[string]struct{}
	regex   []*regexp.Regexp
}

// BuildDenylist compiles symbols and regex on top of the built-in defaults.
// Invalid regex patterns are dropped silently, matching the original's
// best-effort compile.
func BuildDenylist(symbols, regex []string) *Denylist {
	set := make(map[string]struct{}, len(symbols)+len(defaultDenylistSymbols))
	for _, s := range symbols {
		set[strings.ToUpper(s)] = struct{}{}
	}
	for s := range defaultDenylistSymbols {
		set[s] = struct{}{}
	}

	pats := make([]*regexp.Regexp, 0, len(regex)+len(defaultDenylistRegex))
	for _, rx := range regex {
		if re, err := regexp.Compile("(?i)" + rx); err == nil {
			pats = append(pats, re)
		}
	}
	for _, rx := range defaultDenylistRegex {
		pats = append(pats, regexp.MustCompile("(?i)"+rx))
	}

	return &Denylist{symbols: set, regex: pats}
}

// normalizeBybitBase strips a trailing USDT/USDC/USD quote suffix.
func normalizeBybitBase(bybitSymbol string) string {
	s := strings.ToUpper(strings.TrimSpace(bybitSymbol))
	for _, q := range []string{"USDT", "USDC", "USD"} {
		if strings.HasSuffix(s, q) {
			return strings.TrimSuffix(s, q)
		}
	}
	return s
}

// IsDenied checks tokenKey, the normalized base, and the raw bybit symbol
// against both the symbol set and the regex patterns.
func (d *Denylist) IsDenied(tokenKey, bybitSymbol string) bool {
	base := normalizeBybitBase(bybitSymbol)
	for _, c := range [3]string{tokenKey, base, bybitSymbol} {
		if c == "" {
			continue
		}
		u := strings.ToUpper(c)
		if _, ok := d.symbols[u]; ok {
			return true
		}
		for _, re := range d.regex {
			if re.MatchString(u) {
				return true
			}
		}
	}
	return false
}
