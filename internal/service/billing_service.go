package service

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-order-system/internal/event"
	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

// BillingService owns the financial close of an order: bill creation,
// payments and refunds.  Settlement math runs under the bill row lock, so
// two cashiers applying payments at once accumulate instead of clobbering.
type BillingService struct {
	bills  *repository.BillRepo
	orders *repository.OrderRepo
	tables *TableService
	events *event.Broadcaster
	taxBP  int64
}

// NewBillingService wires a BillingService.
func NewBillingService(bills *repository.BillRepo, orders *repository.OrderRepo,
	tables *TableService, events *event.Broadcaster, taxBasisPoints int64) *BillingService {
	return &BillingService{bills: bills, orders: orders, tables: tables, events: events, taxBP: taxBasisPoints}
}

// CreateFromOrder opens the bill for an order, freezing its item set.  Only
// orders that are ready, serving or completed can be billed, and each order
// gets at most one bill.  An optional discount replaces the order's current
// discount before the totals are snapshotted.
func (s *BillingService) CreateFromOrder(ctx context.Context, orderID uint64, discountCents *int64) (*model.Bill, error) {
	if discountCents != nil && *discountCents < 0 {
		return nil, repository.ErrValidation
	}
	tx, err := s.orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case model.OrderReady, model.OrderServing, model.OrderCompleted:
	default:
		return nil, repository.ErrConflict
	}
	exists, err := s.bills.ExistsByOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrConflict
	}

	discount := o.DiscountCents
	if discountCents != nil {
		discount = *discountCents
	}
	if discount != o.DiscountCents {
		if err := recomputeOrderTotalsTx(ctx, tx, s.orders, orderID, discount, s.taxBP); err != nil {
			return nil, err
		}
		o, err = s.orders.GetForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	number, err := s.bills.NextBillNumberTx(ctx, tx, now)
	if err != nil {
		return nil, err
	}
	b := &model.Bill{
		BillNumber:       number,
		OrderID:          orderID,
		SubtotalCents:    o.TotalAmountCents,
		DiscountCents:    o.DiscountCents,
		TaxCents:         o.TaxCents,
		TotalAmountCents: o.FinalAmountCents,
		PaymentStatus:    model.PaymentPending,
	}
	if err := s.bills.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeBillCreated, b.ID, map[string]any{
		"bill_number":        b.BillNumber,
		"order_id":           orderID,
		"total_amount_cents": b.TotalAmountCents,
	}))
	return b, nil
}

// ApplyPayment records a tender against a pending bill and re-derives the
// settlement.  The payment covering the remainder closes the bill, completes
// the order and releases its table.  Overpayment is returned as change.
func (s *BillingService) ApplyPayment(ctx context.Context, billID uint64, method string, amountCents int64, transactionID *string) (*model.Bill, error) {
	if method == "" || amountCents <= 0 {
		return nil, repository.ErrValidation
	}
	// Unlocked pre-read to learn the parent order; everything below re-reads
	// under the order-then-bill lock order shared with the other services.
	peek, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	tx, err := s.orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetForUpdateTx(ctx, tx, peek.OrderID)
	if err != nil {
		return nil, err
	}
	b, err := s.bills.GetForUpdateTx(ctx, tx, billID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != model.PaymentPending {
		return nil, repository.ErrConflict
	}

	p := &model.Payment{
		BillID:        billID,
		Method:        method,
		AmountCents:   amountCents,
		TransactionID: transactionID,
		Status:        model.PaymentPaid,
	}
	if err := s.bills.CreatePaymentTx(ctx, tx, p); err != nil {
		return nil, err
	}

	paid := b.PaidCents + amountCents
	status, change := model.SettleBill(b.TotalAmountCents, paid)
	now := time.Now().UTC()
	var paidAt *time.Time
	if status == model.PaymentPaid {
		paidAt = &now
	}
	if err := s.bills.UpdateSettlementTx(ctx, tx, billID, paid, change, status, paidAt); err != nil {
		return nil, err
	}

	settled := status == model.PaymentPaid
	released := false
	advanced := false
	if settled {
		if !o.Status.Terminal() {
			if err := s.orders.AdvanceStatusTx(ctx, tx, o.ID, model.OrderCompleted, now); err != nil {
				return nil, err
			}
			advanced = true
		}
		released, err = s.tables.releaseIfIdleTx(ctx, tx, o.TableID)
		if err != nil {
			return nil, err
		}
	}
	b.PaidCents = paid
	b.ChangeCents = change
	b.PaymentStatus = status
	b.PaidAt = paidAt

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	if settled {
		s.events.Emit(event.New(event.TypeBillPaid, billID, map[string]any{
			"bill_number":  b.BillNumber,
			"order_id":     b.OrderID,
			"paid_cents":   paid,
			"change_cents": change,
		}))
	}
	if advanced {
		s.events.Emit(event.New(event.TypeOrderUpdated, o.ID, map[string]any{
			"order_number": o.OrderNumber,
			"status":       model.OrderCompleted,
		}))
	}
	if released {
		s.events.Emit(event.New(event.TypeTableStatusChanged, o.TableID, map[string]any{
			"status": model.TableAvailable,
		}))
	}
	return b, nil
}

// RefundPayment reverses a single paid payment.  The bill's paid sum floors
// at zero; a bill that had been settled and drops below its total is marked
// refunded rather than reopened for payment.
func (s *BillingService) RefundPayment(ctx context.Context, paymentID uint64) (*model.Bill, error) {
	tx, err := s.orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := s.bills.GetPaymentForUpdateTx(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentPaid {
		return nil, repository.ErrConflict
	}
	b, err := s.bills.GetForUpdateTx(ctx, tx, p.BillID)
	if err != nil {
		return nil, err
	}

	if err := s.bills.UpdatePaymentStatusTx(ctx, tx, paymentID, model.PaymentRefunded); err != nil {
		return nil, err
	}
	paid := b.PaidCents - p.AmountCents
	if paid < 0 {
		paid = 0
	}
	status, change := model.SettleBill(b.TotalAmountCents, paid)
	if status != model.PaymentPaid && b.PaidAt != nil {
		status = model.PaymentRefunded
	}
	if err := s.bills.UpdateSettlementTx(ctx, tx, b.ID, paid, change, status, nil); err != nil {
		return nil, err
	}
	b.PaidCents = paid
	b.ChangeCents = change
	b.PaymentStatus = status

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeBillRefunded, b.ID, map[string]any{
		"bill_number":           b.BillNumber,
		"payment_id":            paymentID,
		"refunded_amount_cents": p.AmountCents,
		"paid_cents":            paid,
	}))
	return b, nil
}

// GetBill returns a bill together with its payments.
func (s *BillingService) GetBill(ctx context.Context, billID uint64) (*model.Bill, []model.Payment, error) {
	b, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.bills.ListPayments(ctx, billID)
	if err != nil {
		return nil, nil, err
	}
	return b, payments, nil
}

// GetBillByOrder returns the bill for an order together with its payments.
func (s *BillingService) GetBillByOrder(ctx context.Context, orderID uint64) (*model.Bill, []model.Payment, error) {
	b, err := s.bills.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.bills.ListPayments(ctx, b.ID)
	if err != nil {
		return nil, nil, err
	}
	return b, payments, nil
}
