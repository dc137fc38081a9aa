package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// MenuItemRepo reads menu items.  Menu management is owned by an external
// catalog service; this repository only serves price snapshots, availability
// and station routing for order intake.
type MenuItemRepo struct {
	db *sql.DB
}

// NewMenuItemRepo returns a new MenuItemRepo bound to the database.
func NewMenuItemRepo(db *sql.DB) *MenuItemRepo { return &MenuItemRepo{db: db} }

const menuItemColumns = `id, name, price_cents, station_id, is_available, is_active`

func scanMenuItem(row interface{ Scan(...any) error }) (*model.MenuItem, error) {
	var m model.MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.PriceCents, &m.StationID, &m.IsAvailable, &m.IsActive)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID returns a single menu item or ErrMenuItemNotFound.
func (r *MenuItemRepo) GetByID(ctx context.Context, id uint64) (*model.MenuItem, error) {
	m, err := scanMenuItem(r.db.QueryRowContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMenuItemNotFound
	}
	return m, err
}

// GetByIDTx is GetByID inside an existing transaction, used when order intake
// snapshots prices as part of the order-creation transaction.
func (r *MenuItemRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.MenuItem, error) {
	m, err := scanMenuItem(tx.QueryRowContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMenuItemNotFound
	}
	return m, err
}

// List returns active menu items, name first.
func (r *MenuItemRepo) List(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
