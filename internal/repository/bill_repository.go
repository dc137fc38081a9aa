package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// BillRepo provides data access to bills and their payments.  A bill is the
// 1:1 financial document for an order; the settlement fields are only ever
// written under a FOR UPDATE lock so concurrent payments serialize.
type BillRepo struct {
	db *sql.DB
}

// NewBillRepo returns a new BillRepo bound to the database.
func NewBillRepo(db *sql.DB) *BillRepo { return &BillRepo{db: db} }

const billColumns = `id, bill_number, order_id, subtotal_cents, discount_cents, tax_cents,
	total_amount_cents, paid_cents, change_cents, payment_status, paid_at, created_at, updated_at`

func scanBill(row interface{ Scan(...any) error }) (*model.Bill, error) {
	var b model.Bill
	var paidAt sql.NullTime
	err := row.Scan(&b.ID, &b.BillNumber, &b.OrderID, &b.SubtotalCents,
		&b.DiscountCents, &b.TaxCents, &b.TotalAmountCents, &b.PaidCents,
		&b.ChangeCents, &b.PaymentStatus, &paidAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		b.PaidAt = &t
	}
	return &b, nil
}

// NextBillNumberTx derives the next bill number for the given day by counting
// today's bills inside the transaction.  Numbers look like BILL-20260831-0001
// and reset daily.
func (r *BillRepo) NextBillNumberTx(ctx context.Context, tx *sql.Tx, now time.Time) (string, error) {
	prefix := fmt.Sprintf("BILL-%s-", now.UTC().Format("20060102"))
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bills WHERE bill_number LIKE ?`, prefix+"%",
	).Scan(&n)
	if err != nil {
		return "", err
	}
	return FormatBillNumber(now, n+1), nil
}

// FormatBillNumber builds a bill number from a day and a daily sequence.
func FormatBillNumber(day time.Time, seq int) string {
	return fmt.Sprintf("BILL-%s-%04d", day.UTC().Format("20060102"), seq)
}

// CreateTx inserts a new bill within the transaction and populates the
// generated ID and timestamps.  The unique constraint on order_id enforces
// at most one bill per order; a duplicate insert surfaces as a driver error
// the service translates into a conflict.
func (r *BillRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Bill) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bills (bill_number, order_id, subtotal_cents, discount_cents, tax_cents,
			total_amount_cents, payment_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.BillNumber, b.OrderID, b.SubtotalCents, b.DiscountCents, b.TaxCents,
		b.TotalAmountCents, b.PaymentStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM bills WHERE id = ?`, b.ID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns a single bill or ErrBillNotFound.
func (r *BillRepo) GetByID(ctx context.Context, id uint64) (*model.Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	return b, err
}

// GetForUpdateTx loads a bill and locks its row for the transaction.  Every
// settlement mutation (payment, refund) reads through this lock so paid_cents
// accumulates correctly under concurrency.
func (r *BillRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Bill, error) {
	b, err := scanBill(tx.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	return b, err
}

// GetByOrder returns the bill for an order or ErrBillNotFound.
func (r *BillRepo) GetByOrder(ctx context.Context, orderID uint64) (*model.Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE order_id = ?`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	return b, err
}

// ExistsByOrderTx reports inside the transaction whether an order already has
// a bill.  Orders with a bill are frozen against further item mutations.
func (r *BillRepo) ExistsByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bills WHERE order_id = ?`, orderID).Scan(&n)
	return n > 0, err
}

// UpdateSettlementTx writes the accumulated settlement fields of a bill.
// paidAt is stamped only when the bill first reaches paid.
func (r *BillRepo) UpdateSettlementTx(ctx context.Context, tx *sql.Tx, id uint64, paidCents, changeCents int64, status model.PaymentStatus, paidAt *time.Time) error {
	var at interface{}
	if paidAt != nil {
		at = paidAt.UTC()
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE bills SET paid_cents = ?, change_cents = ?, payment_status = ?, paid_at = COALESCE(paid_at, ?) WHERE id = ?`,
		paidCents, changeCents, status, at, id)
	return err
}

// CreatePaymentTx records a tender against a bill within the transaction.
func (r *BillRepo) CreatePaymentTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (bill_id, method, amount_cents, transaction_id, status) VALUES (?, ?, ?, ?, ?)`,
		p.BillID, p.Method, p.AmountCents, nullableStr(p.TransactionID), p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM payments WHERE id = ?`, p.ID).Scan(&p.CreatedAt)
}

// GetPaymentForUpdateTx loads a payment and locks its row, so a refund
// processed twice fails on the second read of the status.
func (r *BillRepo) GetPaymentForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Payment, error) {
	var p model.Payment
	var txnID sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT id, bill_id, method, amount_cents, transaction_id, status, created_at
		 FROM payments WHERE id = ? FOR UPDATE`, id,
	).Scan(&p.ID, &p.BillID, &p.Method, &p.AmountCents, &txnID, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	if txnID.Valid {
		v := txnID.String
		p.TransactionID = &v
	}
	return &p, nil
}

// UpdatePaymentStatusTx writes a payment's status (paid -> refunded).
func (r *BillRepo) UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.PaymentStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = ? WHERE id = ?`, status, id)
	return err
}

// ListPayments returns all payments recorded against a bill, oldest first.
func (r *BillRepo) ListPayments(ctx context.Context, billID uint64) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, bill_id, method, amount_cents, transaction_id, status, created_at
		 FROM payments WHERE bill_id = ? ORDER BY id`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		var p model.Payment
		var txnID sql.NullString
		if err := rows.Scan(&p.ID, &p.BillID, &p.Method, &p.AmountCents, &txnID, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		if txnID.Valid {
			v := txnID.String
			p.TransactionID = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
