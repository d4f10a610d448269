package manager

// Event names published by the manager.
const (
	EventChatRouted    = "chat_routed"
	EventChatCompleted = "chat_completed"
	EventChatFailed    = "chat_failed"
	EventWarmup        = "warmup"
)

// Event represents a manager lifecycle event.
// Minimal and stable: name + backend kind and optional fields via key/values.
type Event struct {
	Name    string
	Backend string
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

func (m *Manager) publish(name, kind string, fields map[string]any) {
	m.publisher.Publish(Event{Name: name, Backend: kind, Fields: fields})
}
