package ecs

// EventType identifies world events.
type EventType string

const (
	EventAgentAdded       EventType = "agent_added"
	EventAgentRemoved     EventType = "agent_removed"
	EventStructureAdded   EventType = "structure_added"
	EventStructureRemoved EventType = "structure_removed"
	EventStructureDamaged EventType = "structure_damaged"
)

// Event is a world change notification.
type Event struct {
	Type   EventType
	Entity Entity
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
