package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// OrderRepo provides data access to the orders and order_items tables.  The
// order is the aggregate root of a dining session; its items are owned rows
// with a cascade lifecycle.  Mutating methods come in ...Tx variants so the
// service layer can compose them into a single transaction that locks the
// order row for the duration of the mutation.  All timestamps are UTC.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so services can begin transactions.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderColumns = `id, order_number, table_id, staff_id, status,
	total_amount_cents, discount_cents, tax_cents, final_amount_cents,
	customer_name, customer_phone, party_size, notes, cancellation_reason,
	order_time, confirmed_at, completed_at, cancelled_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var staffID sql.NullInt64
	var custName, custPhone, reason sql.NullString
	var partySize sql.NullInt64
	var notes sql.NullString
	var confirmedAt, completedAt, cancelledAt sql.NullTime
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.TableID, &staffID, &o.Status,
		&o.TotalAmountCents, &o.DiscountCents, &o.TaxCents, &o.FinalAmountCents,
		&custName, &custPhone, &partySize, &notes, &reason,
		&o.OrderTime, &confirmedAt, &completedAt, &cancelledAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if staffID.Valid {
		v := uint64(staffID.Int64)
		o.StaffID = &v
	}
	if custName.Valid {
		v := custName.String
		o.CustomerName = &v
	}
	if custPhone.Valid {
		v := custPhone.String
		o.CustomerPhone = &v
	}
	if partySize.Valid {
		v := uint32(partySize.Int64)
		o.PartySize = &v
	}
	if notes.Valid {
		o.Notes = notes.String
	}
	if reason.Valid {
		v := reason.String
		o.CancellationReason = &v
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		o.ConfirmedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		o.CompletedAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		o.CancelledAt = &t
	}
	return &o, nil
}

// NextOrderNumberTx derives the next human-displayable order number for the
// given day by counting today's orders inside the transaction.  Numbers look
// like ORD-20260831-0001 and reset daily.
func (r *OrderRepo) NextOrderNumberTx(ctx context.Context, tx *sql.Tx, now time.Time) (string, error) {
	prefix := fmt.Sprintf("ORD-%s-", now.UTC().Format("20060102"))
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE order_number LIKE ?`, prefix+"%",
	).Scan(&n)
	if err != nil {
		return "", err
	}
	return FormatOrderNumber(now, n+1), nil
}

// FormatOrderNumber builds an order number from a day and a daily sequence.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s-%04d", day.UTC().Format("20060102"), seq)
}

// CreateTx inserts a new order within the scope of an existing transaction.
// It populates the generated ID and the database-assigned timestamps on the
// provided order.  The caller must commit or rollback the transaction.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (order_number, table_id, staff_id, status,
			total_amount_cents, discount_cents, tax_cents, final_amount_cents,
			customer_name, customer_phone, party_size, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderNumber, o.TableID, nullableID(o.StaffID), o.Status,
		o.TotalAmountCents, o.DiscountCents, o.TaxCents, o.FinalAmountCents,
		nullableStr(o.CustomerName), nullableStr(o.CustomerPhone), nullableU32(o.PartySize), o.Notes,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	// Query back the database-assigned timestamps.
	return tx.QueryRowContext(ctx,
		`SELECT order_time, updated_at FROM orders WHERE id = ?`, o.ID,
	).Scan(&o.OrderTime, &o.UpdatedAt)
}

// CreateItemsTx bulk-inserts order items in a single statement and assigns
// the generated IDs back to the slice.  MySQL guarantees consecutive IDs for
// a single multi-row insert with the default auto-increment lock mode.
// Passing an empty slice has no effect and returns nil.
func (r *OrderRepo) CreateItemsTx(ctx context.Context, tx *sql.Tx, orderID uint64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO order_items (order_id, item_id, quantity, unit_price_cents, total_price_cents, special_request, status) VALUES `
	args := make([]interface{}, 0, len(items)*7)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, orderID, it.ItemID, it.Quantity, it.UnitPriceCents, it.TotalPriceCents, nullableStr(it.SpecialRequest), it.Status)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	first, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i := range items {
		items[i].ID = uint64(first) + uint64(i)
		items[i].OrderID = orderID
	}
	return nil
}

// GetByID returns a single order without its items.  When no order with the
// specified ID exists, ErrOrderNotFound is returned.
func (r *OrderRepo) GetByID(ctx context.Context, orderID uint64) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// GetForUpdateTx loads an order and locks its row for the remainder of the
// transaction.  This is the per-entity mutual-exclusion boundary: every
// mutation of an order or its derived totals must go through this lock so
// concurrent requests serialize instead of clobbering derived fields.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, orderID uint64) (*model.Order, error) {
	o, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

const itemColumns = `id, order_id, item_id, quantity, unit_price_cents, total_price_cents,
	special_request, status, dispatched, kitchen_order_id, created_at`

func scanItem(row interface{ Scan(...any) error }) (*model.OrderItem, error) {
	var it model.OrderItem
	var special sql.NullString
	var koID sql.NullInt64
	err := row.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.Quantity,
		&it.UnitPriceCents, &it.TotalPriceCents, &special, &it.Status,
		&it.Dispatched, &koID, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	if special.Valid {
		v := special.String
		it.SpecialRequest = &v
	}
	if koID.Valid {
		v := uint64(koID.Int64)
		it.KitchenOrderID = &v
	}
	return &it, nil
}

func collectItems(rows *sql.Rows) ([]model.OrderItem, error) {
	defer rows.Close()
	var items []model.OrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// ItemsByOrder returns all items of an order, oldest first.
func (r *OrderRepo) ItemsByOrder(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

// ItemsByOrderTx is ItemsByOrder within an existing transaction.
func (r *OrderRepo) ItemsByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.OrderItem, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

// GetItemTx returns a single item of an order within a transaction.  The
// order ID is part of the predicate to enforce ownership.  When no matching
// item exists, ErrOrderItemNotFound is returned.
func (r *OrderRepo) GetItemTx(ctx context.Context, tx *sql.Tx, orderID, itemID uint64) (*model.OrderItem, error) {
	it, err := scanItem(tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE id = ? AND order_id = ?`, itemID, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderItemNotFound
	}
	return it, err
}

// UpdateItemStatusTx sets the status of a single item.
func (r *OrderRepo) UpdateItemStatusTx(ctx context.Context, tx *sql.Tx, itemID uint64, status model.OrderItemStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE order_items SET status = ? WHERE id = ?`, status, itemID)
	return err
}

// AssignItemsToKitchenOrderTx links the given items to a kitchen order and
// marks them dispatched.  Once dispatched, an item can only be cancelled
// through the kitchen's accept/reject protocol.
func (r *OrderRepo) AssignItemsToKitchenOrderTx(ctx context.Context, tx *sql.Tx, itemIDs []uint64, kitchenOrderID uint64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	placeholders := make([]string, len(itemIDs))
	args := make([]interface{}, 0, len(itemIDs)+1)
	args = append(args, kitchenOrderID)
	for i, id := range itemIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE order_items SET kitchen_order_id = ?, dispatched = 1 WHERE id IN (`+strings.Join(placeholders, ",")+`)`,
		args...)
	return err
}

// MarkItemsReadyByKitchenOrderTx advances all still-pending items of a
// kitchen order to ready.  Served and cancelled items are left untouched.
func (r *OrderRepo) MarkItemsReadyByKitchenOrderTx(ctx context.Context, tx *sql.Tx, kitchenOrderID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE order_items SET status = ? WHERE kitchen_order_id = ? AND status = ?`,
		model.ItemReady, kitchenOrderID, model.ItemPending)
	return err
}

// CancelItemsByKitchenOrderTx cancels all items of a kitchen order that have
// not been served yet and returns their IDs so callers can emit events.
func (r *OrderRepo) CancelItemsByKitchenOrderTx(ctx context.Context, tx *sql.Tx, kitchenOrderID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM order_items WHERE kitchen_order_id = ? AND status NOT IN (?, ?)`,
		kitchenOrderID, model.ItemServed, model.ItemCancelled)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for rows.Next() {
		var id uint64
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE order_items SET status = ? WHERE kitchen_order_id = ? AND status NOT IN (?, ?)`,
		model.ItemCancelled, kitchenOrderID, model.ItemServed, model.ItemCancelled)
	return ids, err
}

// CancelOpenItemsTx cancels every item of an order that has not been served.
// Used when the whole order is cancelled.
func (r *OrderRepo) CancelOpenItemsTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE order_items SET status = ? WHERE order_id = ? AND status NOT IN (?, ?)`,
		model.ItemCancelled, orderID, model.ItemServed, model.ItemCancelled)
	return err
}

// UpdateTotalsTx rewrites the derived financial snapshot of an order.  The
// caller must hold the order row lock and must have recomputed the values
// from the current non-cancelled items.
func (r *OrderRepo) UpdateTotalsTx(ctx context.Context, tx *sql.Tx, orderID uint64, total, discount, tax, final int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE orders SET total_amount_cents = ?, discount_cents = ?, tax_cents = ?, final_amount_cents = ? WHERE id = ?`,
		total, discount, tax, final, orderID)
	return err
}

// AdvanceStatusTx sets an order's status and stamps the timestamp column
// associated with the target status, if any.  Transition legality is the
// service layer's responsibility.
func (r *OrderRepo) AdvanceStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, status model.OrderStatus, at time.Time) error {
	switch status {
	case model.OrderConfirmed:
		_, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = ?, confirmed_at = ? WHERE id = ?`, status, at.UTC(), orderID)
		return err
	case model.OrderCompleted:
		_, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = ?, completed_at = ? WHERE id = ?`, status, at.UTC(), orderID)
		return err
	default:
		_, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
		return err
	}
}

// CancelTx marks an order cancelled with the reason and timestamp.
func (r *OrderRepo) CancelTx(ctx context.Context, tx *sql.Tx, orderID uint64, reason string, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, cancellation_reason = ?, cancelled_at = ? WHERE id = ?`,
		model.OrderCancelled, reason, at.UTC(), orderID)
	return err
}

// CountActiveByTableTx counts non-terminal orders referencing a table within
// a transaction.  Table occupancy is derived from this count rather than
// from a cached flag.
func (r *OrderRepo) CountActiveByTableTx(ctx context.Context, tx *sql.Tx, tableID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE table_id = ? AND status NOT IN (?, ?)`,
		tableID, model.OrderCompleted, model.OrderCancelled).Scan(&n)
	return n, err
}

// List returns orders matching the optional status and table filters, newest
// first, with their items attached.  Items for all returned orders are
// loaded in a single follow-up query.
func (r *OrderRepo) List(ctx context.Context, status *model.OrderStatus, tableID *uint64, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT ` + orderColumns + ` FROM orders`
	var conds []string
	var args []interface{}
	if status != nil {
		conds = append(conds, "status = ?")
		args = append(args, *status)
	}
	if tableID != nil {
		conds = append(conds, "table_id = ?")
		args = append(args, *tableID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[o.ID] = len(orders)
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}
	ids := make([]interface{}, 0, len(orders))
	placeholders := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		placeholders = append(placeholders, "?")
	}
	irows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id IN (`+strings.Join(placeholders, ",")+`) ORDER BY id`,
		ids...)
	if err != nil {
		return nil, err
	}
	items, err := collectItems(irows)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if idx, ok := index[it.OrderID]; ok {
			orders[idx].Items = append(orders[idx].Items, it)
		}
	}
	return orders, nil
}

func nullableID(v *uint64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableU32(v *uint32) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableStr(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
