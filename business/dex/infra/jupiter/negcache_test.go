package jupiter

import (
	"testing"
	"time"
)

func TestNegCache_MintBlockedUntilTTLExpires(t *testing.T) {
	c := NewNegCache()
	if c.MintBlocked("m1") {
		t.Fatal("unblocked mint reported blocked")
	}
	c.BlockMint("m1", 50*time.Millisecond)
	if !c.MintBlocked("m1") {
		t.Fatal("expected mint to be blocked immediately after BlockMint")
	}
	time.Sleep(80 * time.Millisecond)
	if c.MintBlocked("m1") {
		t.Error("expected block to have expired")
	}
}

func TestNegCache_PairBlockedIndependentOfMint(t *testing.T) {
	c := NewNegCache()
	c.BlockPair("in", "out", time.Minute)
	if !c.PairBlocked("in", "out") {
		t.Fatal("expected pair to be blocked")
	}
	if c.MintBlocked("in") || c.MintBlocked("out") {
		t.Error("pair block must not block either mint individually")
	}
}

func TestNegCache_DeadlineExtensionIsMonotone(t *testing.T) {
	c := NewNegCache()
	c.BlockMint("m1", time.Hour)
	before := c.mints["m1"]

	c.BlockMint("m1", time.Second) // shorter TTL must not shorten the deadline
	after := c.mints["m1"]

	if after.Before(before) {
		t.Errorf("deadline must never move backward: before=%v after=%v", before, after)
	}
}
