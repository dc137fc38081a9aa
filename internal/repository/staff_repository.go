package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// StaffRepo reads the staff directory.  Account lifecycle (signup, passwords,
// sessions) is owned by an external identity service; the core only needs
// roles to authorize chef and cashier actions.
type StaffRepo struct {
	db *sql.DB
}

// NewStaffRepo returns a new StaffRepo bound to the database.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

// GetByID returns a single staff member or ErrStaffNotFound.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (*model.Staff, error) {
	var s model.Staff
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, role, is_active FROM staff WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &s.Role, &s.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns active staff members, name first.
func (r *StaffRepo) List(ctx context.Context) ([]model.Staff, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, role, is_active FROM staff WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Staff
	for rows.Next() {
		var s model.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Role, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
