package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// TableRepo provides data access to the restaurant_tables table.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, table_number, capacity, min_capacity, status, location, is_active, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (*model.RestaurantTable, error) {
	var t model.RestaurantTable
	err := row.Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.MinCapacity,
		&t.Status, &t.Location, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID returns a single table or ErrTableNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.RestaurantTable, error) {
	t, err := scanTable(r.db.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM restaurant_tables WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	return t, err
}

// GetForUpdateTx loads a table and locks its row for the transaction.  The
// lock serializes occupancy changes so two orders seating at once cannot
// both read an available table and miss each other's write.
func (r *TableRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.RestaurantTable, error) {
	t, err := scanTable(tx.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM restaurant_tables WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	return t, err
}

// List returns tables, optionally narrowed to one status, table number first.
func (r *TableRepo) List(ctx context.Context, status *model.TableStatus) ([]model.RestaurantTable, error) {
	query := `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE is_active = 1`
	var args []interface{}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY table_number`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RestaurantTable
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// ListIDs returns the IDs of all active tables, for full recomputes.
func (r *TableRepo) ListIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM restaurant_tables WHERE is_active = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetStatusTx writes a table's status inside the transaction.
func (r *TableRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.TableStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE restaurant_tables SET status = ? WHERE id = ?`, status, id)
	return err
}
