// Package event handles triggering of operations without direct dependency
package event

import (
	"context"
	"sync"

	"userdesk/local-app/internal/log"
)

// EventType represents the type of event
type EventType int

const (
	RecordsReplaced EventType = iota
	RecordAdded
	RecordUpdated
	RecordDeleted
)

// CollectionChanged lists every event that changes the record collection.
var CollectionChanged = []EventType{RecordsReplaced, RecordAdded, RecordUpdated, RecordDeleted}

// String returns the name of the event type.
func (t EventType) String() string {
	switch t {
	case RecordsReplaced:
		return "records_replaced"
	case RecordAdded:
		return "record_added"
	case RecordUpdated:
		return "record_updated"
	case RecordDeleted:
		return "record_deleted"
	default:
		return "unknown"
	}
}

// Event represents an event with its type and associated data
type Event struct {
	Type EventType
	Data interface{}
}

// EventHandler is a function type for event handlers
type EventHandler func(Event)

// EventManager manages event subscriptions and publications.
// Handlers run synchronously on the publishing goroutine, in subscription
// order, so observers see a change before the mutating call returns.
type EventManager struct {
	subscribers map[EventType][]EventHandler
	mu          sync.RWMutex
	logger      *log.Logger
}

// NewEventManager creates a new EventManager instance
func NewEventManager(logger *log.Logger) *EventManager {
	return &EventManager{
		subscribers: make(map[EventType][]EventHandler),
		logger:      logger,
	}
}

// Subscribe adds a new event handler for the given event types
func (em *EventManager) Subscribe(handler EventHandler, eventTypes ...EventType) {
	em.mu.Lock()
	defer em.mu.Unlock()
	for _, eventType := range eventTypes {
		em.subscribers[eventType] = append(em.subscribers[eventType], handler)
	}
}

// Publish delivers an event to all subscribed handlers.
// Publishers must not hold locks that the handlers may take.
func (em *EventManager) Publish(event Event) {
	em.mu.RLock()
	handlers := append([]EventHandler(nil), em.subscribers[event.Type]...)
	em.mu.RUnlock()

	for _, handler := range handlers {
		em.dispatch(handler, event)
	}
}

func (em *EventManager) dispatch(handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			em.logger.Error(context.Background(), "Panic in event handler", log.Fields{
				"event": event.Type.String(),
				"panic": r,
			})
		}
	}()
	handler(event)
}
