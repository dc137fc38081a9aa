package handler

import (
	"time"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// views.go shapes model entities into the JSON the API returns.  The model
// structs stay free of transport tags; these are the only representations
// clients see.

type orderItemView struct {
	ID              uint64  `json:"id"`
	ItemID          uint64  `json:"item_id"`
	Quantity        uint32  `json:"quantity"`
	UnitPriceCents  int64   `json:"unit_price_cents"`
	TotalPriceCents int64   `json:"total_price_cents"`
	SpecialRequest  *string `json:"special_request,omitempty"`
	Status          string  `json:"status"`
	Dispatched      bool    `json:"dispatched"`
	KitchenOrderID  *uint64 `json:"kitchen_order_id,omitempty"`
}

type orderView struct {
	ID                 uint64          `json:"id"`
	OrderNumber        string          `json:"order_number"`
	TableID            uint64          `json:"table_id"`
	StaffID            *uint64         `json:"staff_id,omitempty"`
	Status             string          `json:"status"`
	TotalAmountCents   int64           `json:"total_amount_cents"`
	DiscountCents      int64           `json:"discount_cents"`
	TaxCents           int64           `json:"tax_cents"`
	FinalAmountCents   int64           `json:"final_amount_cents"`
	CustomerName       *string         `json:"customer_name,omitempty"`
	CustomerPhone      *string         `json:"customer_phone,omitempty"`
	PartySize          *uint32         `json:"party_size,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	OrderTime          time.Time       `json:"order_time"`
	ConfirmedAt        *time.Time      `json:"confirmed_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	Items              []orderItemView `json:"items"`
}

func viewOrder(o *model.Order) orderView {
	items := make([]orderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemView{
			ID:              it.ID,
			ItemID:          it.ItemID,
			Quantity:        it.Quantity,
			UnitPriceCents:  it.UnitPriceCents,
			TotalPriceCents: it.TotalPriceCents,
			SpecialRequest:  it.SpecialRequest,
			Status:          string(it.Status),
			Dispatched:      it.Dispatched,
			KitchenOrderID:  it.KitchenOrderID,
		})
	}
	return orderView{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		TableID:            o.TableID,
		StaffID:            o.StaffID,
		Status:             string(o.Status),
		TotalAmountCents:   o.TotalAmountCents,
		DiscountCents:      o.DiscountCents,
		TaxCents:           o.TaxCents,
		FinalAmountCents:   o.FinalAmountCents,
		CustomerName:       o.CustomerName,
		CustomerPhone:      o.CustomerPhone,
		PartySize:          o.PartySize,
		Notes:              o.Notes,
		CancellationReason: o.CancellationReason,
		OrderTime:          o.OrderTime,
		ConfirmedAt:        o.ConfirmedAt,
		CompletedAt:        o.CompletedAt,
		CancelledAt:        o.CancelledAt,
		Items:              items,
	}
}

type kitchenOrderView struct {
	ID                      uint64     `json:"id"`
	OrderID                 uint64     `json:"order_id"`
	StationID               uint64     `json:"station_id"`
	ChefID                  *uint64    `json:"chef_id,omitempty"`
	Status                  string     `json:"status"`
	Priority                int32      `json:"priority"`
	Notes                   string     `json:"notes,omitempty"`
	CancellationRequested   bool       `json:"cancellation_requested"`
	CancellationReason      *string    `json:"cancellation_reason,omitempty"`
	CancellationRequestedAt *time.Time `json:"cancellation_requested_at,omitempty"`
	StartedAt               *time.Time `json:"started_at,omitempty"`
	CompletedAt             *time.Time `json:"completed_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
}

func viewKitchenOrder(ko *model.KitchenOrder) kitchenOrderView {
	return kitchenOrderView{
		ID:                      ko.ID,
		OrderID:                 ko.OrderID,
		StationID:               ko.StationID,
		ChefID:                  ko.ChefID,
		Status:                  string(ko.Status),
		Priority:                ko.Priority,
		Notes:                   ko.Notes,
		CancellationRequested:   ko.CancellationRequested,
		CancellationReason:      ko.CancellationReason,
		CancellationRequestedAt: ko.CancellationRequestedAt,
		StartedAt:               ko.StartedAt,
		CompletedAt:             ko.CompletedAt,
		CreatedAt:               ko.CreatedAt,
	}
}

type tableView struct {
	ID          uint64 `json:"id"`
	TableNumber string `json:"table_number"`
	Capacity    uint32 `json:"capacity"`
	MinCapacity uint32 `json:"min_capacity"`
	Status      string `json:"status"`
	Location    string `json:"location,omitempty"`
}

func viewTable(t *model.RestaurantTable) tableView {
	return tableView{
		ID:          t.ID,
		TableNumber: t.TableNumber,
		Capacity:    t.Capacity,
		MinCapacity: t.MinCapacity,
		Status:      string(t.Status),
		Location:    t.Location,
	}
}

type paymentView struct {
	ID            uint64    `json:"id"`
	Method        string    `json:"method"`
	AmountCents   int64     `json:"amount_cents"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type billView struct {
	ID               uint64        `json:"id"`
	BillNumber       string        `json:"bill_number"`
	OrderID          uint64        `json:"order_id"`
	SubtotalCents    int64         `json:"subtotal_cents"`
	DiscountCents    int64         `json:"discount_cents"`
	TaxCents         int64         `json:"tax_cents"`
	TotalAmountCents int64         `json:"total_amount_cents"`
	PaidCents        int64         `json:"paid_cents"`
	ChangeCents      int64         `json:"change_cents"`
	PaymentStatus    string        `json:"payment_status"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
	Payments         []paymentView `json:"payments,omitempty"`
}

func viewBill(b *model.Bill, payments []model.Payment) billView {
	pv := make([]paymentView, 0, len(payments))
	for _, p := range payments {
		pv = append(pv, paymentView{
			ID:            p.ID,
			Method:        p.Method,
			AmountCents:   p.AmountCents,
			TransactionID: p.TransactionID,
			Status:        string(p.Status),
			CreatedAt:     p.CreatedAt,
		})
	}
	return billView{
		ID:               b.ID,
		BillNumber:       b.BillNumber,
		OrderID:          b.OrderID,
		SubtotalCents:    b.SubtotalCents,
		DiscountCents:    b.DiscountCents,
		TaxCents:         b.TaxCents,
		TotalAmountCents: b.TotalAmountCents,
		PaidCents:        b.PaidCents,
		ChangeCents:      b.ChangeCents,
		PaymentStatus:    string(b.PaymentStatus),
		PaidAt:           b.PaidAt,
		Payments:         pv,
	}
}
