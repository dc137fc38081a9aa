// Package service implements the business rules on top of the repositories:
// order and kitchen lifecycles, derived table occupancy and billing.  Every
// mutation runs in a single transaction that locks the owning order row
// first, so concurrent requests against the same order serialize instead of
// interleaving.  Events are emitted only after the transaction commits.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-order-system/internal/event"
	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

// OrderService owns the order aggregate: creation, item management, status
// advancement and cancellation.
type OrderService struct {
	orders  *repository.OrderRepo
	kitchen *KitchenService
	tables  *TableService
	bills   *repository.BillRepo
	menu    *MenuCatalog
	events  *event.Broadcaster
	taxBP   int64
}

// NewOrderService wires an OrderService.
func NewOrderService(orders *repository.OrderRepo, kitchen *KitchenService, tables *TableService,
	bills *repository.BillRepo, menu *MenuCatalog, events *event.Broadcaster, taxBasisPoints int64) *OrderService {
	return &OrderService{
		orders:  orders,
		kitchen: kitchen,
		tables:  tables,
		bills:   bills,
		menu:    menu,
		events:  events,
		taxBP:   taxBasisPoints,
	}
}

// OrderItemInput is one requested dish line.
type OrderItemInput struct {
	ItemID         uint64
	Quantity       uint32
	SpecialRequest *string
}

// CreateOrderInput carries everything needed to open an order on a table.
type CreateOrderInput struct {
	TableID       uint64
	StaffID       *uint64
	CustomerName  *string
	CustomerPhone *string
	PartySize     *uint32
	Notes         string
	DiscountCents int64
	Items         []OrderItemInput
}

// CreateOrder opens a new pending order on a table, snapshotting menu prices
// for every requested item and marking the table occupied.  Inactive tables,
// tables under maintenance and tables already seated with an active order
// all refuse new orders; one table holds one party at a time.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, repository.ErrValidation
	}
	if in.DiscountCents < 0 {
		return nil, repository.ErrValidation
	}
	for _, it := range in.Items {
		if it.Quantity == 0 {
			return nil, repository.ErrValidation
		}
	}
	if in.PartySize != nil && *in.PartySize == 0 {
		return nil, repository.ErrValidation
	}

	// Snapshot prices outside the transaction; the catalog is read-mostly
	// and served through the cache.
	items := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		mi, err := s.menu.GetItem(ctx, it.ItemID)
		if err != nil {
			return nil, err
		}
		if err := orderableMenuItem(mi); err != nil {
			return nil, err
		}
		items = append(items, model.OrderItem{
			ItemID:          it.ItemID,
			Quantity:        it.Quantity,
			UnitPriceCents:  mi.PriceCents,
			TotalPriceCents: mi.PriceCents * int64(it.Quantity),
			SpecialRequest:  it.SpecialRequest,
			Status:          model.ItemPending,
		})
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

	table, err := s.tables.repo.GetForUpdateTx(ctx, tx, in.TableID)
	if err != nil {
		return nil, err
	}
	active, err := s.orders.CountActiveByTableTx(ctx, tx, in.TableID)
	if err != nil {
		return nil, err
	}
	if err := tableAcceptsOrder(table, active); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	number, err := s.orders.NextOrderNumberTx(ctx, tx, now)
	if err != nil {
		return nil, err
	}

	subtotal := model.SubtotalCents(items)
	tax := model.TaxCents(subtotal-in.DiscountCents, s.taxBP)
	o := &model.Order{
		OrderNumber:      number,
		TableID:          in.TableID,
		StaffID:          in.StaffID,
		Status:           model.OrderPending,
		TotalAmountCents: subtotal,
		DiscountCents:    in.DiscountCents,
		TaxCents:         tax,
		FinalAmountCents: model.FinalAmountCents(subtotal, in.DiscountCents, tax),
		CustomerName:     in.CustomerName,
		CustomerPhone:    in.CustomerPhone,
		PartySize:        in.PartySize,
		Notes:            in.Notes,
	}
	if err := s.orders.CreateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := s.orders.CreateItemsTx(ctx, tx, o.ID, items); err != nil {
		return nil, err
	}
	o.Items = items

	tableChanged := table.Status != model.TableOccupied
	if tableChanged {
		if err := s.tables.repo.SetStatusTx(ctx, tx, table.ID, model.TableOccupied); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeOrderCreated, o.ID, orderPayload(o)))
	if tableChanged {
		s.events.Emit(event.New(event.TypeTableStatusChanged, table.ID, map[string]any{
			"table_number": table.TableNumber,
			"status":       model.TableOccupied,
		}))
	}
	return o, nil
}

// AddItems appends dish lines to an existing order and recomputes the
// financial snapshot.  Orders that are serving, terminal, or already billed
// are frozen.  When the order has already been dispatched to the kitchen the
// new items are fanned out immediately.
func (s *OrderService) AddItems(ctx context.Context, orderID uint64, inputs []OrderItemInput) (*model.Order, error) {
	if len(inputs) == 0 {
		return nil, repository.ErrValidation
	}
	for _, it := range inputs {
		if it.Quantity == 0 {
			return nil, repository.ErrValidation
		}
	}
	items := make([]model.OrderItem, 0, len(inputs))
	for _, it := range inputs {
		mi, err := s.menu.GetItem(ctx, it.ItemID)
		if err != nil {
			return nil, err
		}
		if err := orderableMenuItem(mi); err != nil {
			return nil, err
		}
		items = append(items, model.OrderItem{
			ItemID:          it.ItemID,
			Quantity:        it.Quantity,
			UnitPriceCents:  mi.PriceCents,
			TotalPriceCents: mi.PriceCents * int64(it.Quantity),
			SpecialRequest:  it.SpecialRequest,
			Status:          model.ItemPending,
		})
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
	if o.Status.Terminal() || o.Status == model.OrderServing {
		return nil, repository.ErrConflict
	}
	billed, err := s.bills.ExistsByOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if billed {
		return nil, repository.ErrConflict
	}

	if err := s.orders.CreateItemsTx(ctx, tx, orderID, items); err != nil {
		return nil, err
	}

	var created []model.KitchenOrder
	if o.Status != model.OrderPending {
		// already dispatched once; fan the new items out right away
		created, err = s.kitchen.dispatchTx(ctx, tx, o, items)
		if err != nil {
			return nil, err
		}
	}
	if err := recomputeOrderTotalsTx(ctx, tx, s.orders, orderID, o.DiscountCents, s.taxBP); err != nil {
		return nil, err
	}
	updated, err := s.loadOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeOrderUpdated, orderID, orderPayload(updated)))
	for i := range created {
		s.events.Emit(event.New(event.TypeKitchenOrderCreated, created[i].ID, kitchenPayload(&created[i])))
	}
	return updated, nil
}

// CancelItem cancels a single item.  A never-dispatched pending item is
// cancelled on the spot; an item the kitchen is already working on instead
// raises a cancellation request against its ticket and waits for a chef to
// accept or reject it.  The returned flag reports whether a request was
// raised rather than the item cancelled.
func (s *OrderService) CancelItem(ctx context.Context, orderID, itemID uint64, reason string) (*model.Order, bool, error) {
	tx, err := s.orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return nil, false, err
	}
	if o.Status.Terminal() {
		return nil, false, repository.ErrConflict
	}
	billed, err := s.bills.ExistsByOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, false, err
	}
	if billed {
		return nil, false, repository.ErrConflict
	}
	item, err := s.orders.GetItemTx(ctx, tx, orderID, itemID)
	if err != nil {
		return nil, false, err
	}
	escalate, err := itemCancelPath(item)
	if err != nil {
		return nil, false, err
	}

	if escalate {
		if reason == "" {
			return nil, false, repository.ErrValidation
		}
		ticketID := *item.KitchenOrderID
		ko, err := s.kitchen.tickets.GetForUpdateTx(ctx, tx, ticketID)
		if err != nil {
			return nil, false, err
		}
		if !ko.Status.Cancellable() || ko.CancellationRequested {
			return nil, false, repository.ErrConflict
		}
		if err := s.kitchen.tickets.RequestCancellationTx(ctx, tx, ticketID, reason, time.Now().UTC()); err != nil {
			return nil, false, err
		}
		updated, err := s.loadOrderTx(ctx, tx, orderID)
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		committed = true

		s.events.Emit(event.New(event.TypeCancellationRequest, ticketID, map[string]any{
			"order_id": orderID,
			"item_id":  itemID,
			"reason":   reason,
		}))
		return updated, true, nil
	}

	if err := s.orders.UpdateItemStatusTx(ctx, tx, itemID, model.ItemCancelled); err != nil {
		return nil, false, err
	}
	if err := recomputeOrderTotalsTx(ctx, tx, s.orders, orderID, o.DiscountCents, s.taxBP); err != nil {
		return nil, false, err
	}
	updated, err := s.loadOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeOrderItemCancelled, itemID, map[string]any{
		"order_id": orderID,
	}))
	s.events.Emit(event.New(event.TypeOrderUpdated, orderID, orderPayload(updated)))
	return updated, false, nil
}

// CancelOrder cancels a whole order: every unserved item and every still-open
// kitchen ticket is cancelled, and the table is released when no other active
// order holds it.  Completed and billed orders cannot be cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint64, reason string) (*model.Order, error) {
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

	o, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, repository.ErrConflict
	}
	billed, err := s.bills.ExistsByOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if billed {
		return nil, repository.ErrConflict
	}

	cancelledTickets, err := s.kitchen.tickets.CancelOpenByOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.CancelOpenItemsTx(ctx, tx, orderID); err != nil {
		return nil, err
	}
	if err := s.orders.CancelTx(ctx, tx, orderID, reason, time.Now().UTC()); err != nil {
		return nil, err
	}
	released, err := s.tables.releaseIfIdleTx(ctx, tx, o.TableID)
	if err != nil {
		return nil, err
	}
	updated, err := s.loadOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeOrderCancelled, orderID, map[string]any{
		"order_number":      updated.OrderNumber,
		"reason":            reason,
		"cancelled_tickets": cancelledTickets,
	}))
	if released {
		s.events.Emit(event.New(event.TypeTableStatusChanged, o.TableID, map[string]any{
			"status": model.TableAvailable,
		}))
	}
	return updated, nil
}

// AdvanceStatus moves an order one step forward along its chain.  Only
// adjacent forward steps are permitted; cancellation never goes through this
// path.  Advancing to confirmed fans the pending items out to per-station
// kitchen tickets; advancing to completed releases the table.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uint64, to model.OrderStatus) (*model.Order, error) {
	if !to.Valid() {
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
	if !model.CanAdvanceOrder(o.Status, to) {
		return nil, model.ErrInvalidTransition
	}

	var created []model.KitchenOrder
	if o.Status == model.OrderPending && to == model.OrderConfirmed {
		items, err := s.orders.ItemsByOrderTx(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}
		created, err = s.kitchen.dispatchTx(ctx, tx, o, items)
		if err != nil {
			return nil, err
		}
	}
	if err := s.orders.AdvanceStatusTx(ctx, tx, orderID, to, time.Now().UTC()); err != nil {
		return nil, err
	}
	released := false
	if to == model.OrderCompleted {
		released, err = s.tables.releaseIfIdleTx(ctx, tx, o.TableID)
		if err != nil {
			return nil, err
		}
	}
	updated, err := s.loadOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeOrderUpdated, orderID, orderPayload(updated)))
	for i := range created {
		s.events.Emit(event.New(event.TypeKitchenOrderCreated, created[i].ID, kitchenPayload(&created[i])))
	}
	if released {
		s.events.Emit(event.New(event.TypeTableStatusChanged, o.TableID, map[string]any{
			"status": model.TableAvailable,
		}))
	}
	return updated, nil
}

// MarkItemServed marks one ready item as served.  Serving the first item of
// a ready order moves the order to serving; serving the last non-cancelled
// item completes the order and releases the table.
func (s *OrderService) MarkItemServed(ctx context.Context, orderID, itemID uint64) (*model.Order, error) {
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
	if o.Status.Terminal() {
		return nil, repository.ErrConflict
	}
	item, err := s.orders.GetItemTx(ctx, tx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != model.ItemReady {
		return nil, model.ErrInvalidTransition
	}
	if err := s.orders.UpdateItemStatusTx(ctx, tx, itemID, model.ItemServed); err != nil {
		return nil, err
	}
	if o.Status == model.OrderReady {
		if err := s.orders.AdvanceStatusTx(ctx, tx, orderID, model.OrderServing, time.Now().UTC()); err != nil {
			return nil, err
		}
	}
	updated, err := s.loadOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	// The last served plate finishes the service round and frees the table;
	// the bill stays payable against the completed order.
	released := false
	if updated.Status == model.OrderServing && model.AllServed(updated.Items) {
		if err := s.orders.AdvanceStatusTx(ctx, tx, orderID, model.OrderCompleted, time.Now().UTC()); err != nil {
			return nil, err
		}
		updated.Status = model.OrderCompleted
		released, err = s.tables.releaseIfIdleTx(ctx, tx, o.TableID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.events.Emit(event.New(event.TypeOrderUpdated, orderID, orderPayload(updated)))
	if released {
		s.events.Emit(event.New(event.TypeTableStatusChanged, o.TableID, map[string]any{
			"status": model.TableAvailable,
		}))
	}
	return updated, nil
}

// GetOrder returns an order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.ItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// ListOrders returns orders with items, filtered by optional status and table.
func (s *OrderService) ListOrders(ctx context.Context, status *model.OrderStatus, tableID *uint64, limit int) ([]model.Order, error) {
	if status != nil && !status.Valid() {
		return nil, repository.ErrValidation
	}
	return s.orders.List(ctx, status, tableID, limit)
}

func (s *OrderService) loadOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) (*model.Order, error) {
	o, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.ItemsByOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// orderableMenuItem rejects references to menu entries that cannot be
// ordered.  A stale or unavailable reference is bad input, not a state
// conflict.
func orderableMenuItem(mi *model.MenuItem) error {
	if !mi.IsAvailable || !mi.IsActive {
		return repository.ErrValidation
	}
	return nil
}

// tableAcceptsOrder decides whether a table can seat a new order: it must be
// active, not under maintenance, and not already held by another live order.
func tableAcceptsOrder(t *model.RestaurantTable, activeOrders int) error {
	if !t.IsActive || t.Status == model.TableMaintenance {
		return repository.ErrConflict
	}
	if activeOrders > 0 {
		return repository.ErrConflict
	}
	return nil
}

// itemCancelPath decides how a cancellation lands on one item: served and
// already-cancelled items are refused, a never-dispatched item cancels
// locally, and a dispatched item escalates to its kitchen ticket.
func itemCancelPath(item *model.OrderItem) (escalate bool, err error) {
	if item.Status == model.ItemCancelled || item.Status == model.ItemServed {
		return false, repository.ErrConflict
	}
	if !item.Dispatched {
		return false, nil
	}
	if item.KitchenOrderID == nil {
		return false, repository.ErrConflict
	}
	return true, nil
}

// recomputeOrderTotalsTx rewrites an order's financial snapshot from its
// current non-cancelled items.  The caller must hold the order row lock.
func recomputeOrderTotalsTx(ctx context.Context, tx *sql.Tx, orders *repository.OrderRepo, orderID uint64, discountCents, taxBP int64) error {
	items, err := orders.ItemsByOrderTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	subtotal := model.SubtotalCents(items)
	tax := model.TaxCents(subtotal-discountCents, taxBP)
	final := model.FinalAmountCents(subtotal, discountCents, tax)
	return orders.UpdateTotalsTx(ctx, tx, orderID, subtotal, discountCents, tax, final)
}

func orderPayload(o *model.Order) map[string]any {
	return map[string]any{
		"order_number":       o.OrderNumber,
		"table_id":           o.TableID,
		"status":             o.Status,
		"final_amount_cents": o.FinalAmountCents,
		"item_count":         len(o.Items),
	}
}

func kitchenPayload(ko *model.KitchenOrder) map[string]any {
	return map[string]any{
		"order_id":   ko.OrderID,
		"station_id": ko.StationID,
		"status":     ko.Status,
		"priority":   ko.Priority,
	}
}
