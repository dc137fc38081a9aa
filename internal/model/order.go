package model

import (
	"errors"
	"time"
)

// ErrInvalidTransition is returned when a status change does not follow the
// forward-only chain of the owning entity's state machine.  Handlers should
// translate this into an HTTP 422 response.
var ErrInvalidTransition = errors.New("invalid status transition")

// OrderStatus enumerates the lifecycle states of an order.  The chain is
// strictly forward: pending -> confirmed -> ready -> serving -> completed.
// cancelled is terminal and reachable from any non-terminal state, but only
// through the dedicated cancellation operation.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderReady     OrderStatus = "ready"
	OrderServing   OrderStatus = "serving"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// orderChain lists the forward progression of order statuses in order.
var orderChain = []OrderStatus{OrderPending, OrderConfirmed, OrderReady, OrderServing, OrderCompleted}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderReady, OrderServing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are permitted from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanAdvanceOrder reports whether an order may move from one status to the
// next via the status-advancement operation.  Only single forward steps along
// the chain are allowed; cancellation is never reachable through this path.
func CanAdvanceOrder(from, to OrderStatus) bool {
	for i := 0; i < len(orderChain)-1; i++ {
		if orderChain[i] == from && orderChain[i+1] == to {
			return true
		}
	}
	return false
}

// OrderItemStatus enumerates the lifecycle states of a single ordered dish.
type OrderItemStatus string

const (
	ItemPending   OrderItemStatus = "pending"
	ItemReady     OrderItemStatus = "ready"
	ItemServed    OrderItemStatus = "served"
	ItemCancelled OrderItemStatus = "cancelled"
)

// Order is the aggregate root of a dining session on a table.  It owns its
// OrderItems; kitchen orders and the bill reference it without owning it.
// All monetary amounts are integer cents.  FinalAmountCents is derived:
// subtotal of non-cancelled items, minus discount, plus tax.
//
// Fields:
//
//	ID                 – primary key identifier.
//	OrderNumber        – unique, human-displayable number (ORD-YYYYMMDD-NNNN).
//	TableID            – table the order occupies.
//	StaffID            – waiter who created the order (nullable).
//	Status             – state of the order.
//	TotalAmountCents   – subtotal over non-cancelled items.
//	DiscountCents      – absolute discount applied to the order.
//	TaxCents           – tax computed on the discounted subtotal.
//	FinalAmountCents   – amount ultimately billed.
//	CancellationReason – why the order was cancelled, if it was.
type Order struct {
	ID                 uint64          // orders.id
	OrderNumber        string          // orders.order_number
	TableID            uint64          // orders.table_id
	StaffID            *uint64         // orders.staff_id (nullable)
	Status             OrderStatus     // orders.status
	TotalAmountCents   int64           // orders.total_amount_cents
	DiscountCents      int64           // orders.discount_cents
	TaxCents           int64           // orders.tax_cents
	FinalAmountCents   int64           // orders.final_amount_cents
	CustomerName       *string         // orders.customer_name (nullable)
	CustomerPhone      *string         // orders.customer_phone (nullable)
	PartySize          *uint32         // orders.party_size (nullable)
	Notes              string          // orders.notes
	CancellationReason *string         // orders.cancellation_reason (nullable)
	OrderTime          time.Time       // orders.order_time
	ConfirmedAt        *time.Time      // orders.confirmed_at (nullable)
	CompletedAt        *time.Time      // orders.completed_at (nullable)
	CancelledAt        *time.Time      // orders.cancelled_at (nullable)
	UpdatedAt          time.Time       // orders.updated_at
	Items              []OrderItem     // owned items, load separately
}

// OrderItem is one dish line on an order.  UnitPriceCents is a snapshot of
// the menu price at ordering time and never changes afterwards.  Dispatched
// marks that the item has been fanned out to a kitchen order; only
// never-dispatched pending items may be cancelled without kitchen consent.
type OrderItem struct {
	ID              uint64          // order_items.id
	OrderID         uint64          // order_items.order_id
	ItemID          uint64          // order_items.item_id (menu reference)
	Quantity        uint32          // order_items.quantity
	UnitPriceCents  int64           // order_items.unit_price_cents
	TotalPriceCents int64           // order_items.total_price_cents
	SpecialRequest  *string         // order_items.special_request (nullable)
	Status          OrderItemStatus // order_items.status
	Dispatched      bool            // order_items.dispatched
	KitchenOrderID  *uint64         // order_items.kitchen_order_id (nullable until dispatched)
	CreatedAt       time.Time       // order_items.created_at
}

// SubtotalCents sums quantity x unit price over all non-cancelled items.
func SubtotalCents(items []OrderItem) int64 {
	var sum int64
	for _, it := range items {
		if it.Status == ItemCancelled {
			continue
		}
		sum += it.TotalPriceCents
	}
	return sum
}

// TaxCents computes tax on an amount at the given basis-point rate,
// truncating fractional cents.  A zero or negative base yields zero tax.
func TaxCents(amountCents int64, rateBasisPoints int64) int64 {
	if amountCents <= 0 || rateBasisPoints <= 0 {
		return 0
	}
	return amountCents * rateBasisPoints / 10000
}

// FinalAmountCents derives the billable amount from a subtotal, discount and
// tax.  The result is floored at zero so an oversized discount can never
// produce a negative bill.
func FinalAmountCents(subtotal, discount, tax int64) int64 {
	final := subtotal - discount + tax
	if final < 0 {
		return 0
	}
	return final
}

// AllServed reports whether every non-cancelled item has been served.  An
// order with no remaining non-cancelled items is not considered served.
func AllServed(items []OrderItem) bool {
	active := 0
	for _, it := range items {
		if it.Status == ItemCancelled {
			continue
		}
		active++
		if it.Status != ItemServed {
			return false
		}
	}
	return active > 0
}
