package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventDiagramLoaded       EventType = "diagram_loaded"
	EventDiagramUnloaded     EventType = "diagram_unloaded"
	EventFrameRendered       EventType = "frame_rendered"
	EventViewReset           EventType = "view_reset"
	EventDeviceEditRequested EventType = "device_edit_requested"
	EventDeviceAdded         EventType = "device_added"
	EventDeviceRenamed       EventType = "device_renamed"
	EventDeviceRemoved       EventType = "device_removed"
	EventExportCompleted     EventType = "export_completed"
	EventSessionSaved        EventType = "session_saved"
	EventSessionDeleted      EventType = "session_deleted"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber. The channel is not closed.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers without blocking
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
