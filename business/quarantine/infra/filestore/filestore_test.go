package filestore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/solarb/arbitrage-detector/business/quarantine/domain"
)

func TestStore_SaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarantine.yaml")
	s := New(path)

	entries := map[string]domain.Entry{
		"BTCUSDT": {Reason: domain.ReasonWSStale, UntilTS: 1730000000},
		"ETHUSDT": {Reason: domain.ReasonNoRoute, UntilTS: 1730000300},
	}

	if err := s.Save(entries); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := s.Load()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got["BTCUSDT"].Reason != domain.ReasonWSStale || got["BTCUSDT"].UntilTS != 1730000000 {
		t.Errorf("unexpected BTCUSDT entry: %+v", got["BTCUSDT"])
	}
}

func TestStore_LoadMissingFileReturnsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.yaml"))
	got := s.Load()
	if len(got) != 0 {
		t.Errorf("expected empty map for missing file, got %d entries", len(got))
	}
}

func TestPruneExpired_DropsPastDeadlines(t *testing.T) {
	now := time.Unix(1000, 0)
	entries := map[string]domain.Entry{
		"live": {Reason: domain.ReasonNoRoute, UntilTS: 2000},
		"dead": {Reason: domain.ReasonNoRoute, UntilTS: 500},
	}
	pruned := PruneExpired(entries, now)
	if _, ok := pruned["dead"]; ok {
		t.Error("expected expired entry to be pruned")
	}
	if _, ok := pruned["live"]; !ok {
		t.Error("expected live entry to survive")
	}
}
