package model

import "time"

// PaymentStatus enumerates the settlement states shared by bills and
// individual payments.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

// Bill is the financial closing document for exactly one order (1:1,
// enforced by a unique constraint on order_id).  PaidCents only grows while
// payments are applied and only shrinks on refunds; PaymentStatus is paid
// if and only if PaidCents >= TotalAmountCents.
type Bill struct {
	ID               uint64        // bills.id
	BillNumber       string        // bills.bill_number
	OrderID          uint64        // bills.order_id (unique)
	SubtotalCents    int64         // bills.subtotal_cents
	DiscountCents    int64         // bills.discount_cents
	TaxCents         int64         // bills.tax_cents
	TotalAmountCents int64         // bills.total_amount_cents
	PaidCents        int64         // bills.paid_cents
	ChangeCents      int64         // bills.change_cents
	PaymentStatus    PaymentStatus // bills.payment_status
	PaidAt           *time.Time    // bills.paid_at (nullable)
	CreatedAt        time.Time     // bills.created_at
	UpdatedAt        time.Time     // bills.updated_at
}

// Payment is a single tender against a bill.  The amount is immutable once
// recorded; only the status may change (paid -> refunded).
type Payment struct {
	ID            uint64        // payments.id
	BillID        uint64        // payments.bill_id
	Method        string        // payments.method (cash, card, ...)
	AmountCents   int64         // payments.amount_cents
	TransactionID *string       // payments.transaction_id (nullable)
	Status        PaymentStatus // payments.status
	CreatedAt     time.Time     // payments.created_at
}

// SettleBill derives the payment status and change due from a bill's total
// and the sum already paid.  Change is only owed once the bill is fully
// covered; a partial payment yields zero change and a pending status.
func SettleBill(totalCents, paidCents int64) (PaymentStatus, int64) {
	if paidCents >= totalCents {
		return PaymentPaid, paidCents - totalCents
	}
	return PaymentPending, 0
}
