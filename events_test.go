package main

import "testing"

func TestEventBusOrder(t *testing.T) {
	bus := newEventBus()
	bus.Post(Event{Kind: EventModelLoading})
	bus.Post(Event{Kind: EventModelReady})
	bus.Post(Event{Kind: EventListeningStarted, Lang: "EN"})

	got := bus.Drain()
	want := []EventKind{EventModelLoading, EventModelReady, EventListeningStarted}
	if len(got) != len(want) {
		t.Fatalf("drained %d events, want %d", len(got), len(want))
	}
	for i, k := range want {
		if got[i].Kind != k {
			t.Errorf("event %d = %v, want %v", i, got[i].Kind, k)
		}
	}
	if got[2].Lang != "EN" {
		t.Errorf("lang = %q, want EN", got[2].Lang)
	}
}

func TestEventBusDrainEmpty(t *testing.T) {
	bus := newEventBus()
	if got := bus.Drain(); len(got) != 0 {
		t.Errorf("drained %d events from empty queue", len(got))
	}
}

func TestEventBusDropsWhenFull(t *testing.T) {
	bus := newEventBus()
	for i := 0; i < 200; i++ {
		bus.Post(Event{Kind: EventListeningStarted})
	}
	// Post never blocks; the queue holds at most its capacity.
	if got := len(bus.Drain()); got != 64 {
		t.Errorf("drained %d events, want 64", got)
	}
}

func TestEventKindString(t *testing.T) {
	if EventModelReady.String() != "model_ready" {
		t.Errorf("got %q", EventModelReady.String())
	}
	if EventKind(99).String() != "unknown" {
		t.Errorf("got %q", EventKind(99).String())
	}
}
