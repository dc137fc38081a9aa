package service

import (
	"context"

	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

// StaffDirectory resolves staff members and validates their roles before
// role-gated actions (a chef resolving a cancellation, a cashier refunding).
type StaffDirectory struct {
	repo *repository.StaffRepo
}

// NewStaffDirectory wires a StaffDirectory.
func NewStaffDirectory(repo *repository.StaffRepo) *StaffDirectory {
	return &StaffDirectory{repo: repo}
}

// GetStaff returns one staff member.
func (d *StaffDirectory) GetStaff(ctx context.Context, id uint64) (*model.Staff, error) {
	return d.repo.GetByID(ctx, id)
}

// ListStaff returns all active staff members.
func (d *StaffDirectory) ListStaff(ctx context.Context) ([]model.Staff, error) {
	return d.repo.List(ctx)
}

// RequireRole verifies that the staff member exists, is active and holds one
// of the given roles.  Inactive members and wrong roles yield ErrForbidden.
func (d *StaffDirectory) RequireRole(ctx context.Context, staffID uint64, roles ...string) error {
	s, err := d.repo.GetByID(ctx, staffID)
	if err != nil {
		return err
	}
	if !s.IsActive {
		return repository.ErrForbidden
	}
	for _, r := range roles {
		if s.Role == r {
			return nil
		}
	}
	return repository.ErrForbidden
}
