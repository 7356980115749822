package app

import (
	"testing"
	"time"
)

func TestDedup_FirstSendAlwaysAllowed(t *testing.T) {
	d := NewDedup(time.Minute, dec("0.5"))
	if !d.CanSend("k", dec("10")) {
		t.Fatal("expected the first send for a key to always be allowed")
	}
}

func TestDedup_BlocksWithinCooldownWithoutImprovement(t *testing.T) {
	d := NewDedup(time.Hour, dec("0.5"))
	d.MarkSent("k", dec("10"))

	if d.CanSend("k", dec("10.1")) {
		t.Fatal("expected resend blocked: within cooldown and under the min delta")
	}
}

func TestDedup_AllowsWithinCooldownIfProfitImprovedEnough(t *testing.T) {
	d := NewDedup(time.Hour, dec("0.5"))
	d.MarkSent("k", dec("10"))

	if !d.CanSend("k", dec("10.5")) {
		t.Fatal("expected resend allowed: profit improved by exactly the min delta")
	}
}

func TestDedup_AllowsAfterCooldownRegardlessOfProfit(t *testing.T) {
	d := NewDedup(time.Millisecond, dec("1000"))
	d.MarkSent("k", dec("10"))
	time.Sleep(5 * time.Millisecond)

	if !d.CanSend("k", dec("10")) {
		t.Fatal("expected resend allowed once the cooldown has elapsed")
	}
}

func TestDedup_KeysAreIndependent(t *testing.T) {
	d := NewDedup(time.Hour, dec("0.5"))
	d.MarkSent("a", dec("10"))

	if !d.CanSend("b", dec("1")) {
		t.Fatal("a different key must not be blocked by another key's cooldown")
	}
}
