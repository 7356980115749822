// Package app implements the quarantine manager and verifier.
package app

// TokenInfo is the minimal per-token shape the quarantine subsystem needs:
// enough to validate BAD_TOKEN_CFG and to drive the verifier's re-quote probe.
type TokenInfo struct {
	Symbol   string
	Mint     string
	Decimals uint8
}

func (t TokenInfo) valid() bool {
	return t.Symbol != "" && t.Mint != "" && t.Decimals <= 18
}

// OnSymbolsChanged is invoked whenever the active (non-quarantined) symbol
// set changes, so the WS cluster can reconcile its desired subscriptions.
type OnSymbolsChanged func()
