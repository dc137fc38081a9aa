package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// KitchenOrderRepo provides data access to the kitchen_orders table.  One
// row is a per-station ticket fanned out from an order.  Mutations go
// through ...Tx variants so the service layer can lock the ticket row and
// compose item updates into the same transaction.
type KitchenOrderRepo struct {
	db *sql.DB
}

// NewKitchenOrderRepo returns a new KitchenOrderRepo bound to the database.
func NewKitchenOrderRepo(db *sql.DB) *KitchenOrderRepo { return &KitchenOrderRepo{db: db} }

const kitchenColumns = `id, order_id, station_id, chef_id, status, priority, notes,
	cancellation_requested, cancellation_reason, cancellation_requested_at,
	started_at, completed_at, created_at, updated_at`

func scanKitchenOrder(row interface{ Scan(...any) error }) (*model.KitchenOrder, error) {
	var ko model.KitchenOrder
	var chefID sql.NullInt64
	var reason sql.NullString
	var requestedAt, startedAt, completedAt sql.NullTime
	err := row.Scan(&ko.ID, &ko.OrderID, &ko.StationID, &chefID, &ko.Status,
		&ko.Priority, &ko.Notes, &ko.CancellationRequested, &reason, &requestedAt,
		&startedAt, &completedAt, &ko.CreatedAt, &ko.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if chefID.Valid {
		v := uint64(chefID.Int64)
		ko.ChefID = &v
	}
	if reason.Valid {
		v := reason.String
		ko.CancellationReason = &v
	}
	if requestedAt.Valid {
		t := requestedAt.Time
		ko.CancellationRequestedAt = &t
	}
	if startedAt.Valid {
		t := startedAt.Time
		ko.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		ko.CompletedAt = &t
	}
	return &ko, nil
}

// CreateTx inserts a new kitchen order within the transaction and populates
// the generated ID.
func (r *KitchenOrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, ko *model.KitchenOrder) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO kitchen_orders (order_id, station_id, status, priority, notes) VALUES (?, ?, ?, ?, ?)`,
		ko.OrderID, ko.StationID, ko.Status, ko.Priority, ko.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ko.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM kitchen_orders WHERE id = ?`, ko.ID,
	).Scan(&ko.CreatedAt, &ko.UpdatedAt)
}

// GetByID returns a single kitchen order.  When no row exists,
// ErrKitchenOrderNotFound is returned.
func (r *KitchenOrderRepo) GetByID(ctx context.Context, id uint64) (*model.KitchenOrder, error) {
	ko, err := scanKitchenOrder(r.db.QueryRowContext(ctx,
		`SELECT `+kitchenColumns+` FROM kitchen_orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKitchenOrderNotFound
	}
	return ko, err
}

// GetForUpdateTx loads a kitchen order and locks its row for the remainder
// of the transaction.  All status transitions and the cancellation protocol
// run under this lock so a cancellation race against a completion resolves
// deterministically.
func (r *KitchenOrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.KitchenOrder, error) {
	ko, err := scanKitchenOrder(tx.QueryRowContext(ctx,
		`SELECT `+kitchenColumns+` FROM kitchen_orders WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKitchenOrderNotFound
	}
	return ko, err
}

// ListQueue returns open tickets (pending or preparing), highest priority
// first and oldest first within a priority, optionally filtered to one
// station.  This feeds the kitchen display.
func (r *KitchenOrderRepo) ListQueue(ctx context.Context, stationID *uint64) ([]model.KitchenOrder, error) {
	query := `SELECT ` + kitchenColumns + ` FROM kitchen_orders WHERE status IN (?, ?)`
	args := []interface{}{model.KitchenPending, model.KitchenPreparing}
	if stationID != nil {
		query += ` AND station_id = ?`
		args = append(args, *stationID)
	}
	query += ` ORDER BY priority DESC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.KitchenOrder
	for rows.Next() {
		ko, err := scanKitchenOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ko)
	}
	return out, rows.Err()
}

// ListByOrderTx returns all kitchen orders fanned out from one order.
func (r *KitchenOrderRepo) ListByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.KitchenOrder, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+kitchenColumns+` FROM kitchen_orders WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.KitchenOrder
	for rows.Next() {
		ko, err := scanKitchenOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ko)
	}
	return out, rows.Err()
}

// StartTx moves a ticket to preparing and stamps started_at exactly once.
// When chefID is nil an existing assignment is kept.
func (r *KitchenOrderRepo) StartTx(ctx context.Context, tx *sql.Tx, id uint64, chefID *uint64, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE kitchen_orders SET status = ?, started_at = ?, chef_id = COALESCE(?, chef_id) WHERE id = ?`,
		model.KitchenPreparing, at.UTC(), nullableID(chefID), id)
	return err
}

// ReadyTx moves a ticket to ready and stamps completed_at exactly once.
func (r *KitchenOrderRepo) ReadyTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE kitchen_orders SET status = ?, completed_at = ? WHERE id = ?`,
		model.KitchenReady, at.UTC(), id)
	return err
}

// CompleteTx moves a ready ticket to completed (tray picked up).
func (r *KitchenOrderRepo) CompleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE kitchen_orders SET status = ? WHERE id = ?`, model.KitchenCompleted, id)
	return err
}

// CancelTx moves a ticket to cancelled and clears any outstanding request.
func (r *KitchenOrderRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE kitchen_orders SET status = ?, cancellation_requested = 0 WHERE id = ?`,
		model.KitchenCancelled, id)
	return err
}

// RequestCancellationTx records a cancellation request against a ticket
// without changing its status.  The kitchen keeps full forward progress
// until a chef resolves the request.
func (r *KitchenOrderRepo) RequestCancellationTx(ctx context.Context, tx *sql.Tx, id uint64, reason string, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE kitchen_orders SET cancellation_requested = 1, cancellation_reason = ?, cancellation_requested_at = ? WHERE id = ?`,
		reason, at.UTC(), id)
	return err
}

// ClearCancellationTx drops an outstanding cancellation request, either
// because a chef rejected it or because completion made it moot.
func (r *KitchenOrderRepo) ClearCancellationTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE kitchen_orders SET cancellation_requested = 0 WHERE id = ?`, id)
	return err
}

// SetStationTx re-routes a ticket to another station.
func (r *KitchenOrderRepo) SetStationTx(ctx context.Context, tx *sql.Tx, id, stationID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE kitchen_orders SET station_id = ? WHERE id = ?`, stationID, id)
	return err
}

// SetPriorityTx changes a ticket's queue priority.
func (r *KitchenOrderRepo) SetPriorityTx(ctx context.Context, tx *sql.Tx, id uint64, priority int32) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE kitchen_orders SET priority = ? WHERE id = ?`, priority, id)
	return err
}

// CancelOpenByOrderTx cancels every still-open ticket of an order and
// returns their IDs.  Used when the whole order is cancelled; tickets
// already ready or completed represent cooked food and stay untouched.
func (r *KitchenOrderRepo) CancelOpenByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM kitchen_orders WHERE order_id = ? AND status IN (?, ?)`,
		orderID, model.KitchenPending, model.KitchenPreparing)
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
		`UPDATE kitchen_orders SET status = ?, cancellation_requested = 0 WHERE order_id = ? AND status IN (?, ?)`,
		model.KitchenCancelled, orderID, model.KitchenPending, model.KitchenPreparing)
	return ids, err
}
