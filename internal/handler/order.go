package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/middleware"
	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/service"
)

// OrderHandler serves the order lifecycle endpoints.
type OrderHandler struct {
	Orders *service.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

type orderItemRequest struct {
	ItemID         uint64  `json:"item_id"`
	Quantity       uint32  `json:"quantity"`
	SpecialRequest *string `json:"special_request"`
}

type createOrderRequest struct {
	TableID       uint64             `json:"table_id"`
	CustomerName  *string            `json:"customer_name"`
	CustomerPhone *string            `json:"customer_phone"`
	PartySize     *uint32            `json:"party_size"`
	Notes         string             `json:"notes"`
	DiscountCents int64              `json:"discount_cents"`
	Items         []orderItemRequest `json:"items"`
}

// Create handles POST /v1/orders.  The authenticated staff member is
// recorded as the order's waiter.
func (h *OrderHandler) Create(c echo.Context) error {
	var body createOrderRequest
	if err := c.Bind(&body); err != nil || body.TableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in := service.CreateOrderInput{
		TableID:       body.TableID,
		CustomerName:  body.CustomerName,
		CustomerPhone: body.CustomerPhone,
		PartySize:     body.PartySize,
		Notes:         body.Notes,
		DiscountCents: body.DiscountCents,
	}
	if staffID, ok := middleware.StaffID(c); ok {
		in.StaffID = &staffID
	}
	for _, it := range body.Items {
		in.Items = append(in.Items, service.OrderItemInput{
			ItemID:         it.ItemID,
			Quantity:       it.Quantity,
			SpecialRequest: it.SpecialRequest,
		})
	}
	o, err := h.Orders.CreateOrder(c.Request().Context(), in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, viewOrder(o))
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	o, err := h.Orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}

// List handles GET /v1/orders with optional status and table_id filters.
func (h *OrderHandler) List(c echo.Context) error {
	var status *model.OrderStatus
	if s := c.QueryParam("status"); s != "" {
		v := model.OrderStatus(s)
		status = &v
	}
	var tableID *uint64
	if s := c.QueryParam("table_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table_id"})
		}
		tableID = &id
	}
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		limit, _ = strconv.Atoi(s)
	}
	orders, err := h.Orders.ListOrders(c.Request().Context(), status, tableID, limit)
	if err != nil {
		return respondErr(c, err)
	}
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, viewOrder(&orders[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": views})
}

type addItemsRequest struct {
	Items []orderItemRequest `json:"items"`
}

// AddItems handles POST /v1/orders/:id/items.
func (h *OrderHandler) AddItems(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var body addItemsRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	inputs := make([]service.OrderItemInput, 0, len(body.Items))
	for _, it := range body.Items {
		inputs = append(inputs, service.OrderItemInput{
			ItemID:         it.ItemID,
			Quantity:       it.Quantity,
			SpecialRequest: it.SpecialRequest,
		})
	}
	o, err := h.Orders.AddItems(c.Request().Context(), id, inputs)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}

type cancelItemRequest struct {
	Reason string `json:"reason"`
}

// CancelItem handles DELETE /v1/orders/:id/items/:itemID.  Items the kitchen
// already holds are not cancelled directly; the call turns into a
// cancellation request on the owning ticket and answers 202.
func (h *OrderHandler) CancelItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	itemID, err := parseID(c, "itemID")
	if err != nil {
		return respondErr(c, err)
	}
	var body cancelItemRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	o, requested, err := h.Orders.CancelItem(c.Request().Context(), id, itemID, body.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	if requested {
		return c.JSON(http.StatusAccepted, viewOrder(o))
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}

type advanceStatusRequest struct {
	Status string `json:"status"`
}

// AdvanceStatus handles POST /v1/orders/:id/status.
func (h *OrderHandler) AdvanceStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var body advanceStatusRequest
	if err := c.Bind(&body); err != nil || body.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	o, err := h.Orders.AdvanceStatus(c.Request().Context(), id, model.OrderStatus(body.Status))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /v1/orders/:id/cancel.
func (h *OrderHandler) Cancel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var body cancelOrderRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	o, err := h.Orders.CancelOrder(c.Request().Context(), id, body.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}

// MarkItemServed handles POST /v1/orders/:id/items/:itemID/serve.
func (h *OrderHandler) MarkItemServed(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	itemID, err := parseID(c, "itemID")
	if err != nil {
		return respondErr(c, err)
	}
	o, err := h.Orders.MarkItemServed(c.Request().Context(), id, itemID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}
