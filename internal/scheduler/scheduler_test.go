package scheduler

import (
	"testing"
	"time"
)

func TestNextAlignedTickPicksNearestBoundary(t *testing.T) {
	cases := []struct {
		second int
		want   int
	}{
		{0, 15},
		{1, 15},
		{16, 30},
		{44, 45},
		{46, 0}, // rolls into the next minute
		{59, 0},
	}
	for _, c := range cases {
		now := time.Date(2026, 1, 1, 12, 0, c.second, 0, time.UTC)
		got := nextAlignedTick(now)
		if got.Second() != c.want {
			t.Errorf("nextAlignedTick(second=%d) = second %d, want %d", c.second, got.Second(), c.want)
		}
	}
}

func TestEnableDisableNamedEvent(t *testing.T) {
	s := New(nil, nil, nil)
	s.RegisterNamedEvent(&NamedEvent{Name: "spawn", Handler: func() {}, Intervals: []int{0, 30}})

	if !s.Disable("spawn") {
		t.Fatal("expected Disable to find the event")
	}
	e, ok := s.Info("spawn")
	if !ok || e.Enabled {
		t.Fatal("expected spawn to be disabled")
	}
	if !s.Enable("spawn") {
		t.Fatal("expected Enable to find the event")
	}
	e, _ = s.Info("spawn")
	if !e.Enabled {
		t.Fatal("expected spawn to be enabled again")
	}
}

func TestDisableUnknownEventReturnsFalse(t *testing.T) {
	s := New(nil, nil, nil)
	if s.Disable("does-not-exist") {
		t.Fatal("expected false for unknown event")
	}
}

func TestListReturnsAllRegistered(t *testing.T) {
	s := New(nil, nil, nil)
	s.RegisterNamedEvent(&NamedEvent{Name: "a", Handler: func() {}, Intervals: []int{0}})
	s.RegisterNamedEvent(&NamedEvent{Name: "b", Handler: func() {}, Intervals: []int{30}})
	if len(s.List()) != 2 {
		t.Fatalf("expected 2 registered events, got %d", len(s.List()))
	}
}
