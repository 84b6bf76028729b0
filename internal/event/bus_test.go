package event

import "testing"

func TestBus_FanOut(t *testing.T) {
	bus := NewBus()

	var got1, got2 []JobQueued
	bus.Subscribe(func(e JobQueued) { got1 = append(got1, e) })
	bus.Subscribe(func(e JobQueued) { got2 = append(got2, e) })

	bus.Publish(JobQueued{ID: "a1", Filename: "movie.mkv"})

	if len(got1) != 1 || len(got2) != 1 {
		t.Fatalf("expected both subscribers to receive the event, got %d and %d", len(got1), len(got2))
	}
	if got1[0].ID != "a1" || got1[0].Filename != "movie.mkv" {
		t.Errorf("unexpected event: %+v", got1[0])
	}
}

func TestBus_Cancel(t *testing.T) {
	bus := NewBus()

	var count int
	sub := bus.Subscribe(func(JobQueued) { count++ })

	bus.Publish(JobQueued{ID: "a1"})
	sub.Cancel()
	bus.Publish(JobQueued{ID: "a2"})
	sub.Cancel() // second cancel is a no-op

	if count != 1 {
		t.Errorf("expected 1 delivery after cancel, got %d", count)
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish(JobQueued{ID: "a1"}) // must not panic
}
