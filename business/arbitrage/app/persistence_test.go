package app

import "testing"

func TestPersistence_RequiresConsecutiveHits(t *testing.T) {
	p := NewPersistence(3)

	if p.Hit("k", true) {
		t.Fatal("expected not ready after 1 hit of 3")
	}
	if p.Hit("k", true) {
		t.Fatal("expected not ready after 2 hits of 3")
	}
	if !p.Hit("k", true) {
		t.Fatal("expected ready after 3 consecutive hits")
	}
	if !p.Hit("k", true) {
		t.Fatal("expected to remain ready past the threshold")
	}
}

func TestPersistence_MissResetsCounter(t *testing.T) {
	p := NewPersistence(2)

	p.Hit("k", true)
	if p.Hit("k", false) {
		t.Fatal("a miss must never report ready")
	}
	if p.Hit("k", true) {
		t.Fatal("expected the streak to have been reset by the miss")
	}
	if !p.Hit("k", true) {
		t.Fatal("expected ready after 2 fresh consecutive hits")
	}
}

func TestPersistence_KeysAreIndependent(t *testing.T) {
	p := NewPersistence(1)

	if !p.Hit("a", true) {
		t.Fatal("expected key a ready immediately with hits=1")
	}
	p.Hit("b", false)
	if !p.Hit("b", true) {
		t.Fatal("expected key b ready after one hit following its own reset")
	}
}

func TestPersistence_HitsFloorsAtOne(t *testing.T) {
	p := NewPersistence(0)
	if !p.Hit("k", true) {
		t.Fatal("hits=0 should be clamped to 1, so a single hit should be ready")
	}
}
