package events

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus(nil)

	ch1, cancel1 := bus.Subscribe()
	defer cancel1()
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()

	bus.Publish(Event{Kind: KindTaskCompleted, UserID: 1, TaskID: 2})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Kind != KindTaskCompleted {
				t.Errorf("subscriber %d: kind = %q, want %q", i, e.Kind, KindTaskCompleted)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event received", i)
		}
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	bus := NewBus(nil)

	ch, cancel := bus.Subscribe()
	if bus.SubscriberCount() != 1 {
		t.Fatalf("count = %d, want 1", bus.SubscriberCount())
	}

	cancel()
	if bus.SubscriberCount() != 0 {
		t.Errorf("count = %d, want 0 after cancel", bus.SubscriberCount())
	}

	// Channel is closed after cancel
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}

	// Cancelling twice is safe
	cancel()
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	bus := NewBus(nil)

	ch, cancel := bus.Subscribe()
	defer cancel()

	// Fill past the buffer; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish(Event{Kind: KindAchievementUnlocked})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The buffer holds at most subscriberBuffer events; the rest were dropped.
	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != subscriberBuffer {
				t.Errorf("received %d events, want %d", received, subscriberBuffer)
			}
			return
		}
	}
}
