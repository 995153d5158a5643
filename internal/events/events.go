package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventReservationCreated   = "reservation_created"
	EventReservationUpdated   = "reservation_updated"
	EventReservationCancelled = "reservation_cancelled"
	EventPaymentRecorded      = "payment_recorded"
)

// ReservationEventPayload describes the minimal booking snapshot for event
// consumers.
type ReservationEventPayload struct {
	GroupID         int64  `json:"group_id"`
	EstablishmentID int64  `json:"establishment_id"`
	ServiceType     string `json:"service_type"`
	UnitNumber      int64  `json:"unit_number"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	CustomerName    string `json:"customer_name"`
	Status          string `json:"status"`
}

// PaymentEventPayload describes a recorded payment.
type PaymentEventPayload struct {
	PaymentID       int64   `json:"payment_id"`
	GroupID         int64   `json:"group_id"`
	EstablishmentID int64   `json:"establishment_id"`
	Amount          float64 `json:"amount"`
	Method          string  `json:"method"`
	PaymentDate     string  `json:"payment_date"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
