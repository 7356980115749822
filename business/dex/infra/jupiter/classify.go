package jupiter

import (
	"regexp"

	"github.com/solarb/arbitrage-detector/business/dex/app"
)

// ErrorBody is Jupiter's classified-400 response body.
type ErrorBody struct {
	ErrorCode string `json:"errorCode"`
	Error     string `json:"error"`
}

var mintInTextRe = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]{32,44}`)

// classification is the decision derived from a classified 400 body.
type classification struct {
	skipCode  app.SkipCode
	badMint   string
	pairTTL   string // "not_tradable" | "no_route" | "amount_too_big" | ""
	emitSkip  bool
}

// classify maps a Jupiter error code to the skip code, TTL bucket, and
// whether a skip event should be emitted, per the classified-400 table.
func classify(body ErrorBody, outputMint string) (classification, bool) {
	switch body.ErrorCode {
	case "TOKEN_NOT_TRADABLE":
		badMint := extractMint(body.Error)
		if badMint == "" {
			badMint = outputMint
		}
		return classification{skipCode: app.SkipTokenNotTradable, badMint: badMint, pairTTL: "not_tradable", emitSkip: true}, true
	case "COULD_NOT_FIND_ANY_ROUTE":
		return classification{skipCode: app.SkipNoRoute, pairTTL: "no_route", emitSkip: true}, true
	case "ROUTE_PLAN_DOES_NOT_CONSUME_ALL_THE_AMOUNT":
		return classification{pairTTL: "amount_too_big", emitSkip: false}, true
	default:
		return classification{}, false
	}
}

func extractMint(text string) string {
	return mintInTextRe.FindString(text)
}
