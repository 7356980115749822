package jupiter

import (
	"testing"

	"github.com/solarb/arbitrage-detector/business/dex/app"
)

func TestClassify_TokenNotTradable_ExtractsMintFromText(t *testing.T) {
	body := ErrorBody{ErrorCode: "TOKEN_NOT_TRADABLE", Error: "mint 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU is not tradable"}
	c, ok := classify(body, "fallbackMint")
	if !ok {
		t.Fatal("expected classification")
	}
	if c.skipCode != app.SkipTokenNotTradable {
		t.Errorf("expected SkipTokenNotTradable, got %s", c.skipCode)
	}
	if c.badMint != "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU" {
		t.Errorf("expected extracted mint, got %s", c.badMint)
	}
	if !c.emitSkip {
		t.Error("expected emitSkip true")
	}
}

func TestClassify_TokenNotTradable_FallsBackToOutputMint(t *testing.T) {
	body := ErrorBody{ErrorCode: "TOKEN_NOT_TRADABLE", Error: "no mint mentioned here"}
	c, ok := classify(body, "outMint123")
	if !ok {
		t.Fatal("expected classification")
	}
	if c.badMint != "outMint123" {
		t.Errorf("expected fallback to output mint, got %s", c.badMint)
	}
}

func TestClassify_NoRoute(t *testing.T) {
	c, ok := classify(ErrorBody{ErrorCode: "COULD_NOT_FIND_ANY_ROUTE"}, "m")
	if !ok || c.skipCode != app.SkipNoRoute || c.pairTTL != "no_route" {
		t.Errorf("unexpected classification: %+v ok=%v", c, ok)
	}
}

func TestClassify_AmountTooBig_NoSkipEmitted(t *testing.T) {
	c, ok := classify(ErrorBody{ErrorCode: "ROUTE_PLAN_DOES_NOT_CONSUME_ALL_THE_AMOUNT"}, "m")
	if !ok {
		t.Fatal("expected classification")
	}
	if c.emitSkip {
		t.Error("amount-too-big must not emit a skip event")
	}
}

func TestClassify_UnknownCode_NotClassified(t *testing.T) {
	if _, ok := classify(ErrorBody{ErrorCode: "SOME_OTHER_400"}, "m"); ok {
		t.Error("unknown error codes must not be classified")
	}
}
