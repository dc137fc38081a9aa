package service

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-order-system/internal/event"
	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

// TableService tracks table occupancy.  Occupied is never set by hand: a
// table is occupied exactly while at least one non-terminal order references
// it.  Staff may override with reserved or available while the table is
// idle, and with maintenance at any time.
type TableService struct {
	repo   *repository.TableRepo
	orders *repository.OrderRepo
	events *event.Broadcaster
}

// NewTableService wires a TableService.
func NewTableService(repo *repository.TableRepo, orders *repository.OrderRepo, events *event.Broadcaster) *TableService {
	return &TableService{repo: repo, orders: orders, events: events}
}

// ListTables returns active tables, optionally narrowed to one status.
func (s *TableService) ListTables(ctx context.Context, status *model.TableStatus) ([]model.RestaurantTable, error) {
	if status != nil && !status.Valid() {
		return nil, repository.ErrValidation
	}
	return s.repo.List(ctx, status)
}

// GetTable returns a single table.
func (s *TableService) GetTable(ctx context.Context, id uint64) (*model.RestaurantTable, error) {
	return s.repo.GetByID(ctx, id)
}

// SetManualStatus applies a staff override: reserved, maintenance or back to
// available.  Occupied cannot be set by hand.  Maintenance is accepted even
// while a party is seated, blocking new orders once the current ones finish;
// reserved and available require an idle table.
func (s *TableService) SetManualStatus(ctx context.Context, id uint64, status model.TableStatus) (*model.RestaurantTable, error) {
	if !status.Valid() {
		return nil, repository.ErrValidation
	}
	if !status.ManualOverride() {
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

	table, err := s.repo.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	active, err := s.orders.CountActiveByTableTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if overrideConflictsWithOrders(status, active) {
		return nil, repository.ErrConflict
	}
	if err := s.repo.SetStatusTx(ctx, tx, id, status); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	if table.Status != status {
		s.events.Emit(event.New(event.TypeTableStatusChanged, id, map[string]any{
			"table_number": table.TableNumber,
			"status":       status,
		}))
	}
	table.Status = status
	return table, nil
}

// Recompute re-derives every table's occupancy from the orders table,
// repairing any drift (after a crash mid-transaction, or manual data edits).
// Maintenance overrides are always preserved; reserved survives while the
// table is idle.
func (s *TableService) Recompute(ctx context.Context) (int, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, id := range ids {
		tx, err := s.orders.DB().BeginTx(ctx, nil)
		if err != nil {
			return changed, err
		}
		table, err := s.repo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			_ = tx.Rollback()
			return changed, err
		}
		active, err := s.orders.CountActiveByTableTx(ctx, tx, id)
		if err != nil {
			_ = tx.Rollback()
			return changed, err
		}
		want := deriveTableStatus(table.Status, active)
		if want == table.Status {
			_ = tx.Rollback()
			continue
		}
		if err := s.repo.SetStatusTx(ctx, tx, id, want); err != nil {
			_ = tx.Rollback()
			return changed, err
		}
		if err := tx.Commit(); err != nil {
			return changed, err
		}
		changed++
		s.events.Emit(event.New(event.TypeTableStatusChanged, id, map[string]any{
			"table_number": table.TableNumber,
			"status":       want,
		}))
	}
	return changed, nil
}

// deriveTableStatus recomputes what a table's status should be from its
// active-order count.  A maintenance override is never undone here, and
// reserved survives while the table is idle.
func deriveTableStatus(current model.TableStatus, active int) model.TableStatus {
	if current == model.TableMaintenance {
		return current
	}
	if active > 0 {
		return model.TableOccupied
	}
	if current == model.TableOccupied {
		return model.TableAvailable
	}
	return current
}

// overrideConflictsWithOrders reports whether a manual status would
// contradict live orders on the table.  Maintenance is always accepted; it
// only blocks future seating.
func overrideConflictsWithOrders(status model.TableStatus, active int) bool {
	return active > 0 && status != model.TableMaintenance
}

// releaseIfIdleTx flips an occupied table back to available inside the
// caller's transaction when no active order remains on it.  Returns whether
// the status changed.
func (s *TableService) releaseIfIdleTx(ctx context.Context, tx *sql.Tx, tableID uint64) (bool, error) {
	table, err := s.repo.GetForUpdateTx(ctx, tx, tableID)
	if err != nil {
		return false, err
	}
	if table.Status != model.TableOccupied {
		return false, nil
	}
	active, err := s.orders.CountActiveByTableTx(ctx, tx, tableID)
	if err != nil {
		return false, err
	}
	if active > 0 {
		return false, nil
	}
	if err := s.repo.SetStatusTx(ctx, tx, tableID, model.TableAvailable); err != nil {
		return false, err
	}
	return true, nil
}
