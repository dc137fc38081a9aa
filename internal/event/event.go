// Package event carries domain notifications from the services to the
// outside world: connected WebSocket clients (kitchen displays, waiter UIs,
// table maps) and the durable broker queue for offline consumers.
package event

import (
	"encoding/json"
	"time"
)

// Type names a kind of domain event.
type Type string

const (
	TypeOrderCreated         Type = "order.created"
	TypeOrderUpdated         Type = "order.updated"
	TypeOrderCancelled       Type = "order.cancelled"
	TypeOrderItemCancelled   Type = "orderItem.cancelled"
	TypeKitchenOrderCreated  Type = "kitchenOrder.created"
	TypeKitchenOrderStarted  Type = "kitchenOrder.started"
	TypeKitchenOrderReady    Type = "kitchenOrder.ready"
	TypeKitchenOrderComplete Type = "kitchenOrder.completed"
	TypeCancellationRequest  Type = "kitchenOrder.cancellationRequested"
	TypeCancellationResolved Type = "kitchenOrder.cancellationResolved"
	TypeTableStatusChanged   Type = "table.statusChanged"
	TypeBillCreated          Type = "bill.created"
	TypeBillPaid             Type = "bill.paid"
	TypeBillRefunded         Type = "bill.refunded"
)

// Event is the envelope every notification travels in.  Payload holds a
// per-type JSON object with enough detail for downstream consumers to render
// a display without querying the primary database.
type Event struct {
	Type      Type            `json:"type"`
	EntityID  uint64          `json:"entityId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// New builds an event, stamping the current UTC time and marshaling the
// payload.  A payload that fails to marshal is replaced with an empty object
// rather than dropping the event.
func New(t Type, entityID uint64, payload any) Event {
	body, err := json.Marshal(payload)
	if err != nil {
		body = json.RawMessage(`{}`)
	}
	return Event{
		Type:      t,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Payload:   body,
	}
}
