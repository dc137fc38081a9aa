package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/iliyamo/restaurant-order-system/internal/event"
	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

// KitchenService owns the per-station ticket lifecycle and the two-phase
// cancellation protocol.  Ticket mutations lock the parent order row before
// the ticket row, the same order every other service uses, so concurrent
// order and kitchen operations cannot deadlock.
type KitchenService struct {
	tickets *repository.KitchenOrderRepo
	orders  *repository.OrderRepo
	menu    *repository.MenuItemRepo
	staff   *StaffDirectory
	events  *event.Broadcaster
	taxBP   int64
}

// NewKitchenService wires a KitchenService.
func NewKitchenService(tickets *repository.KitchenOrderRepo, orders *repository.OrderRepo,
	menu *repository.MenuItemRepo, staff *StaffDirectory, events *event.Broadcaster, taxBasisPoints int64) *KitchenService {
	return &KitchenService{
		tickets: tickets,
		orders:  orders,
		menu:    menu,
		staff:   staff,
		events:  events,
		taxBP:   taxBasisPoints,
	}
}

// dispatchTx fans the given pending, never-dispatched items out into one
// kitchen ticket per station and links the items to their tickets.  The
// caller holds the order row lock and owns the transaction.
func (s *KitchenService) dispatchTx(ctx context.Context, tx *sql.Tx, o *model.Order, items []model.OrderItem) ([]model.KitchenOrder, error) {
	stationOf := make(map[uint64]uint64)
	open := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Dispatched || it.Status != model.ItemPending {
			continue
		}
		if _, ok := stationOf[it.ItemID]; !ok {
			mi, err := s.menu.GetByIDTx(ctx, tx, it.ItemID)
			if err != nil {
				return nil, err
			}
			stationOf[it.ItemID] = mi.StationID
		}
		open = append(open, it)
	}
	groups := groupByStation(open, stationOf)

	created := make([]model.KitchenOrder, 0, len(groups))
	for _, g := range groups {
		ko := &model.KitchenOrder{
			OrderID:   o.ID,
			StationID: g.StationID,
			Status:    model.KitchenPending,
			Notes:     o.Notes,
		}
		if err := s.tickets.CreateTx(ctx, tx, ko); err != nil {
			return nil, err
		}
		if err := s.orders.AssignItemsToKitchenOrderTx(ctx, tx, g.ItemIDs, ko.ID); err != nil {
			return nil, err
		}
		created = append(created, *ko)
	}
	return created, nil
}

// stationGroup is one station's share of a dispatch.
type stationGroup struct {
	StationID uint64
	ItemIDs   []uint64
}

// groupByStation buckets order items by the station their menu item routes
// to, in ascending station order so fan-out is deterministic.
func groupByStation(items []model.OrderItem, stationOf map[uint64]uint64) []stationGroup {
	byStation := make(map[uint64][]uint64)
	for _, it := range items {
		st := stationOf[it.ItemID]
		byStation[st] = append(byStation[st], it.ID)
	}
	stations := make([]uint64, 0, len(byStation))
	for st := range byStation {
		stations = append(stations, st)
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i] < stations[j] })
	groups := make([]stationGroup, 0, len(stations))
	for _, st := range stations {
		groups = append(groups, stationGroup{StationID: st, ItemIDs: byStation[st]})
	}
	return groups
}

// orderReadyAfterTicket reports whether finishing the given ticket leaves no
// sibling still cooking, so the parent order can advance to ready.
func orderReadyAfterTicket(tickets []model.KitchenOrder, ticketID uint64) bool {
	for _, t := range tickets {
		if t.ID == ticketID {
			continue
		}
		if t.Status == model.KitchenPending || t.Status == model.KitchenPreparing {
			return false
		}
	}
	return true
}

// lockTicketTx loads and locks a ticket together with its parent order,
// always order first.
func (s *KitchenService) lockTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (*model.Order, *model.KitchenOrder, error) {
	// Unlocked pre-read to learn the parent; re-read under lock below.
	peek, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	o, err := s.orders.GetForUpdateTx(ctx, tx, peek.OrderID)
	if err != nil {
		return nil, nil, err
	}
	ko, err := s.tickets.GetForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	return o, ko, nil
}

// StartPreparing moves a pending ticket to preparing, optionally assigning
// the acting chef.  Only chefs and managers may start tickets.
func (s *KitchenService) StartPreparing(ctx context.Context, ticketID uint64, chefID *uint64) (*model.KitchenOrder, error) {
	if chefID != nil {
		if err := s.staff.RequireRole(ctx, *chefID, model.RoleChef, model.RoleManager); err != nil {
			return nil, err
		}
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

	_, ko, err := s.lockTicketTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionKitchen(ko.Status, model.KitchenPreparing) {
		return nil, model.ErrInvalidTransition
	}
	if err := s.tickets.StartTx(ctx, tx, ticketID, chefID, time.Now().UTC()); err != nil {
		return nil, err
	}
	updated, err := s.tickets.GetForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeKitchenOrderStarted, ticketID, kitchenPayload(updated)))
	return updated, nil
}

// MarkReady moves a preparing ticket to ready and advances its still-pending
// order items to ready.  A pending cancellation request dies here: once food
// is plated the request is implicitly rejected.  When every ticket of the
// order has finished, the order itself advances to ready.
func (s *KitchenService) MarkReady(ctx context.Context, ticketID uint64) (*model.KitchenOrder, error) {
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

	o, ko, err := s.lockTicketTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionKitchen(ko.Status, model.KitchenReady) {
		return nil, model.ErrInvalidTransition
	}
	rejectedRequest := ko.CancellationRequested
	if err := s.tickets.ReadyTx(ctx, tx, ticketID, time.Now().UTC()); err != nil {
		return nil, err
	}
	if rejectedRequest {
		if err := s.tickets.ClearCancellationTx(ctx, tx, ticketID); err != nil {
			return nil, err
		}
	}
	if err := s.orders.MarkItemsReadyByKitchenOrderTx(ctx, tx, ticketID); err != nil {
		return nil, err
	}

	orderReady := false
	if o.Status == model.OrderConfirmed {
		all, err := s.tickets.ListByOrderTx(ctx, tx, o.ID)
		if err != nil {
			return nil, err
		}
		orderReady = orderReadyAfterTicket(all, ticketID)
		if orderReady {
			if err := s.orders.AdvanceStatusTx(ctx, tx, o.ID, model.OrderReady, time.Now().UTC()); err != nil {
				return nil, err
			}
		}
	}
	updated, err := s.tickets.GetForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeKitchenOrderReady, ticketID, kitchenPayload(updated)))
	if rejectedRequest {
		s.events.Emit(event.New(event.TypeCancellationResolved, ticketID, map[string]any{
			"accepted": false,
			"reason":   "ticket became ready before the request was resolved",
		}))
	}
	if orderReady {
		s.events.Emit(event.New(event.TypeOrderUpdated, o.ID, map[string]any{
			"order_number": o.OrderNumber,
			"status":       model.OrderReady,
		}))
	}
	return updated, nil
}

// Complete marks a ready ticket as picked up.  Only chefs and managers may
// complete tickets.
func (s *KitchenService) Complete(ctx context.Context, ticketID uint64, staffID uint64) (*model.KitchenOrder, error) {
	if err := s.staff.RequireRole(ctx, staffID, model.RoleChef, model.RoleManager); err != nil {
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

	_, ko, err := s.lockTicketTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionKitchen(ko.Status, model.KitchenCompleted) {
		return nil, model.ErrInvalidTransition
	}
	if err := s.tickets.CompleteTx(ctx, tx, ticketID); err != nil {
		return nil, err
	}
	updated, err := s.tickets.GetForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeKitchenOrderComplete, ticketID, kitchenPayload(updated)))
	return updated, nil
}

// RequestCancellation records a cancellation request against an open ticket.
// The ticket keeps cooking until a chef resolves the request; tickets that
// are already ready or beyond cannot be requested at all.
func (s *KitchenService) RequestCancellation(ctx context.Context, ticketID uint64, reason string) (*model.KitchenOrder, error) {
	if reason == "" {
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

	_, ko, err := s.lockTicketTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ko.Status.Cancellable() {
		return nil, repository.ErrConflict
	}
	if ko.CancellationRequested {
		return nil, repository.ErrConflict
	}
	if err := s.tickets.RequestCancellationTx(ctx, tx, ticketID, reason, time.Now().UTC()); err != nil {
		return nil, err
	}
	updated, err := s.tickets.GetForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeCancellationRequest, ticketID, map[string]any{
		"order_id": updated.OrderID,
		"reason":   reason,
	}))
	return updated, nil
}

// ResolveCancellation lets a chef accept or reject an outstanding
// cancellation request.  Accepting cancels the ticket and its constituent
// items and recomputes the order's totals; rejecting clears the request and
// lets the ticket cook on.  A ticket that finished while the request was
// outstanding resolves as rejected regardless of the chef's answer.
func (s *KitchenService) ResolveCancellation(ctx context.Context, ticketID, staffID uint64, accept bool) (*model.KitchenOrder, error) {
	if err := s.staff.RequireRole(ctx, staffID, model.RoleChef, model.RoleManager); err != nil {
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

	o, ko, err := s.lockTicketTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ko.CancellationRequested {
		return nil, repository.ErrConflict
	}

	accepted := accept && ko.Status.Cancellable()
	var cancelledItems []uint64
	if accepted {
		if err := s.tickets.CancelTx(ctx, tx, ticketID); err != nil {
			return nil, err
		}
		cancelledItems, err = s.orders.CancelItemsByKitchenOrderTx(ctx, tx, ticketID)
		if err != nil {
			return nil, err
		}
		if err := recomputeOrderTotalsTx(ctx, tx, s.orders, o.ID, o.DiscountCents, s.taxBP); err != nil {
			return nil, err
		}
	} else {
		if err := s.tickets.ClearCancellationTx(ctx, tx, ticketID); err != nil {
			return nil, err
		}
	}
	updated, err := s.tickets.GetForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeCancellationResolved, ticketID, map[string]any{
		"order_id": o.ID,
		"accepted": accepted,
	}))
	for _, itemID := range cancelledItems {
		s.events.Emit(event.New(event.TypeOrderItemCancelled, itemID, map[string]any{
			"order_id": o.ID,
		}))
	}
	if accepted {
		s.events.Emit(event.New(event.TypeOrderUpdated, o.ID, map[string]any{
			"order_number": o.OrderNumber,
		}))
	}
	return updated, nil
}

// AssignStation re-routes an open ticket to another station.  Re-routing is
// allowed while the ticket is pending or preparing; plated and terminal
// tickets stay where they were cooked.
func (s *KitchenService) AssignStation(ctx context.Context, ticketID, stationID uint64) (*model.KitchenOrder, error) {
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

	_, ko, err := s.lockTicketTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ko.Status.Cancellable() {
		return nil, repository.ErrConflict
	}
	if err := s.tickets.SetStationTx(ctx, tx, ticketID, stationID); err != nil {
		return nil, err
	}
	updated, err := s.tickets.GetForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return updated, nil
}

// UpdatePriority changes an open ticket's queue priority.
func (s *KitchenService) UpdatePriority(ctx context.Context, ticketID uint64, priority int32) (*model.KitchenOrder, error) {
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

	_, ko, err := s.lockTicketTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}
	if ko.Status.Terminal() {
		return nil, repository.ErrConflict
	}
	if err := s.tickets.SetPriorityTx(ctx, tx, ticketID, priority); err != nil {
		return nil, err
	}
	updated, err := s.tickets.GetForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return updated, nil
}

// GetTicket returns a single kitchen ticket.
func (s *KitchenService) GetTicket(ctx context.Context, ticketID uint64) (*model.KitchenOrder, error) {
	return s.tickets.GetByID(ctx, ticketID)
}

// ListQueue returns the open tickets in cooking order, optionally narrowed
// to one station.
func (s *KitchenService) ListQueue(ctx context.Context, stationID *uint64) ([]model.KitchenOrder, error) {
	return s.tickets.ListQueue(ctx, stationID)
}
