package app

import (
	"testing"
	"time"
)

func TestSkipStats_FlushIfDue(t *testing.T) {
	s := NewSkipStats(20 * time.Millisecond)

	s.Inc("skip_spread", 1)
	s.Inc("skip_spread", 2)
	s.Inc("skip_denied", 1)

	if data := s.FlushIfDue(); data != nil {
		t.Fatalf("expected no flush before the window elapses, got %v", data)
	}

	time.Sleep(25 * time.Millisecond)

	data := s.FlushIfDue()
	if data == nil {
		t.Fatal("expected a flush once the window elapsed")
	}
	if data["skip_spread"] != 3 {
		t.Errorf("skip_spread = %d, want 3", data["skip_spread"])
	}
	if data["skip_denied"] != 1 {
		t.Errorf("skip_denied = %d, want 1", data["skip_denied"])
	}

	if data2 := s.FlushIfDue(); data2 != nil {
		t.Fatalf("expected the counters to have been reset after flush, got %v", data2)
	}
}
