package main

import "dikta/log"

// EventKind identifies a state change announced to the presentation layer.
type EventKind int

const (
	EventModelLoading EventKind = iota
	EventModelReady
	EventModelLoadFailed
	EventListeningStarted
	EventListeningStopped
	EventLanguageSwitched
)

func (k EventKind) String() string {
	switch k {
	case EventModelLoading:
		return "model_loading"
	case EventModelReady:
		return "model_ready"
	case EventModelLoadFailed:
		return "model_load_failed"
	case EventListeningStarted:
		return "listening_started"
	case EventListeningStopped:
		return "listening_stopped"
	case EventLanguageSwitched:
		return "language_switched"
	}
	return "unknown"
}

// Event is a notification from the pipeline to whoever is rendering state.
// Lang carries the language abbreviation for listening-started and
// language-switched events; Reason carries the failure text for
// model-load-failed.
type Event struct {
	Kind   EventKind
	Lang   string
	Reason string
}

// EventBus is a bounded fire-and-forget queue between the pipeline and the
// presentation layer. Posting never blocks the pipeline: when the consumer
// falls behind and the queue fills up, new events are dropped with a warning.
type EventBus struct {
	ch chan Event
}

func newEventBus() *EventBus {
	return &EventBus{ch: make(chan Event, 64)}
}

func (b *EventBus) Post(ev Event) {
	select {
	case b.ch <- ev:
	default:
		log.Warnf("event queue full, dropping %s", ev.Kind)
	}
}

// Drain returns all currently queued events in posting order without blocking.
func (b *EventBus) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-b.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
