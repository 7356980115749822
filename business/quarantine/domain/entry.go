// Package domain contains the quarantine subsystem's core types.
package domain

import "time"

// Reason names why a symbol was quarantined.
type Reason string

const (
	ReasonTokenNotTradable Reason = "JUP_TOKEN_NOT_TRADABLE"
	ReasonNoRoute          Reason = "JUP_NO_ROUTE"
	ReasonWSStale          Reason = "WS_STALE"
	ReasonBadTokenCfg      Reason = "BAD_TOKEN_CFG"
)

// Entry is one quarantined symbol's reason and expiry.
type Entry struct {
	Reason  Reason
	UntilTS int64 // unix seconds
}

// Expired reports whether the entry has passed its deadline at ts.
func (e Entry) Expired(ts time.Time) bool {
	return e.UntilTS <= ts.Unix()
}

// Verifiable reports whether a quarantine verifier may probe this entry to
// check for early recovery. BAD_TOKEN_CFG never auto-recovers and WS_STALE
// recovers only via TTL expiry, never via an active probe.
func (e Entry) Verifiable() bool {
	return e.Reason == ReasonTokenNotTradable || e.Reason == ReasonNoRoute
}
