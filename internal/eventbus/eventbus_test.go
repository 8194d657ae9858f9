package eventbus

import (
	"sync"
	"testing"
	"time"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New(nil)
	b.Start()
	defer b.Stop()

	var mu sync.Mutex
	var got []Event
	done := make(chan struct{})

	b.Subscribe(RoomEntered, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		close(done)
	})

	b.Publish(Event{Kind: RoomEntered, Source: "session-1", RoomID: "room-a"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].RoomID != "room-a" {
		t.Fatalf("unexpected delivery: %+v", got)
	}
}

func TestSubscriberPanicDoesNotStopOthers(t *testing.T) {
	b := New(nil)
	b.Start()
	defer b.Stop()

	done := make(chan struct{})
	b.Subscribe(PlayerMoved, func(Event) { panic("boom") })
	b.Subscribe(PlayerMoved, func(Event) { close(done) })

	b.Publish(Event{Kind: PlayerMoved})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second subscriber never ran after first panicked")
	}
}

func TestHistoryCapped(t *testing.T) {
	b := New(nil)
	b.Start()
	defer b.Stop()

	seen := make(chan struct{}, maxHistory+10)
	b.Subscribe(PlayerCommand, func(Event) { seen <- struct{}{} })

	for i := 0; i < maxHistory+10; i++ {
		b.Publish(Event{Kind: PlayerCommand})
	}
	for i := 0; i < maxHistory+10; i++ {
		<-seen
	}

	hist := b.History(nil, 0)
	if len(hist) != maxHistory {
		t.Fatalf("expected history capped at %d, got %d", maxHistory, len(hist))
	}
}
