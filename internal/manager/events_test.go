package manager

import "testing"

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	p.Publish(Event{Name: EventChatRouted, Backend: "small"})
	p.Publish(Event{Name: EventChatCompleted, Backend: "small"})
	p.Publish(Event{Name: EventChatRouted, Backend: "large"})

	evs := p.Events()
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evs))
	}
	evs[0].Name = "mutated"
	if p.Events()[0].Name != EventChatRouted {
		t.Fatalf("Events must return a copy")
	}
	if got := p.Named(EventChatRouted); len(got) != 2 || got[1].Backend != "large" {
		t.Fatalf("unexpected Named result: %+v", got)
	}
	noopPublisher{}.Publish(Event{Name: "x"})
}
