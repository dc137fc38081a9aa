package model

import "time"

// KitchenOrderStatus enumerates the lifecycle states of a kitchen ticket.
// The chain is forward only: pending -> preparing -> ready -> completed.
// cancelled is reachable from pending or preparing, and only through the
// accept/reject cancellation protocol - never unilaterally.
type KitchenOrderStatus string

const (
	KitchenPending   KitchenOrderStatus = "pending"
	KitchenPreparing KitchenOrderStatus = "preparing"
	KitchenReady     KitchenOrderStatus = "ready"
	KitchenCompleted KitchenOrderStatus = "completed"
	KitchenCancelled KitchenOrderStatus = "cancelled"
)

// Valid reports whether s is a known kitchen order status.
func (s KitchenOrderStatus) Valid() bool {
	switch s {
	case KitchenPending, KitchenPreparing, KitchenReady, KitchenCompleted, KitchenCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are permitted from s.
func (s KitchenOrderStatus) Terminal() bool {
	return s == KitchenCompleted || s == KitchenCancelled
}

// Cancellable reports whether a kitchen order in status s may still be
// cancelled through the accept/reject protocol.  Once a dish is plated
// (ready) or picked up (completed) a cancellation request is too late.
func (s KitchenOrderStatus) Cancellable() bool {
	return s == KitchenPending || s == KitchenPreparing
}

// CanTransitionKitchen reports whether a kitchen order may move directly from
// one status to another.  Only single forward steps are allowed; the edge to
// cancelled exists from pending and preparing but is guarded separately by
// the cancellation protocol.
func CanTransitionKitchen(from, to KitchenOrderStatus) bool {
	switch from {
	case KitchenPending:
		return to == KitchenPreparing || to == KitchenCancelled
	case KitchenPreparing:
		return to == KitchenReady || to == KitchenCancelled
	case KitchenReady:
		return to == KitchenCompleted
	}
	return false
}

// KitchenOrder is a per-station ticket fanned out from an order.  An order
// touching three stations produces three kitchen orders, each advancing its
// own state machine independently.  StartedAt is set exactly once on the
// pending->preparing transition; CompletedAt exactly once on the transition
// into ready.
//
// The cancellation request is a tagged field rather than a status so the
// kitchen's forward progress is never blocked by an outstanding request: a
// chef completing the dish while a request is pending implicitly rejects it.
type KitchenOrder struct {
	ID                      uint64             // kitchen_orders.id
	OrderID                 uint64             // kitchen_orders.order_id (back-reference, non-owning)
	StationID               uint64             // kitchen_orders.station_id
	ChefID                  *uint64            // kitchen_orders.chef_id (nullable until assigned)
	Status                  KitchenOrderStatus // kitchen_orders.status
	Priority                int32              // kitchen_orders.priority (higher served first)
	Notes                   string             // kitchen_orders.notes
	CancellationRequested   bool               // kitchen_orders.cancellation_requested
	CancellationReason      *string            // kitchen_orders.cancellation_reason (nullable)
	CancellationRequestedAt *time.Time         // kitchen_orders.cancellation_requested_at (nullable)
	StartedAt               *time.Time         // kitchen_orders.started_at (nullable)
	CompletedAt             *time.Time         // kitchen_orders.completed_at (nullable)
	CreatedAt               time.Time          // kitchen_orders.created_at
	UpdatedAt               time.Time          // kitchen_orders.updated_at
}
