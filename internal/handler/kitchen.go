package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/middleware"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
	"github.com/iliyamo/restaurant-order-system/internal/service"
)

// KitchenHandler serves the kitchen queue and ticket endpoints.
type KitchenHandler struct {
	Kitchen *service.KitchenService
}

// NewKitchenHandler constructs a KitchenHandler.
func NewKitchenHandler(kitchen *service.KitchenService) *KitchenHandler {
	return &KitchenHandler{Kitchen: kitchen}
}

// Queue handles GET /v1/kitchen/queue with an optional station_id filter.
func (h *KitchenHandler) Queue(c echo.Context) error {
	var stationID *uint64
	if s := c.QueryParam("station_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station_id"})
		}
		stationID = &id
	}
	tickets, err := h.Kitchen.ListQueue(c.Request().Context(), stationID)
	if err != nil {
		return respondErr(c, err)
	}
	views := make([]kitchenOrderView, 0, len(tickets))
	for i := range tickets {
		views = append(views, viewKitchenOrder(&tickets[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": views})
}

// Get handles GET /v1/kitchen/orders/:id.
func (h *KitchenHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	ko, err := h.Kitchen.GetTicket(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewKitchenOrder(ko))
}

// Start handles POST /v1/kitchen/orders/:id/start.  The authenticated chef
// is recorded on the ticket.
func (h *KitchenHandler) Start(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var chefID *uint64
	if staffID, ok := middleware.StaffID(c); ok {
		chefID = &staffID
	}
	ko, err := h.Kitchen.StartPreparing(c.Request().Context(), id, chefID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewKitchenOrder(ko))
}

// Ready handles POST /v1/kitchen/orders/:id/ready.
func (h *KitchenHandler) Ready(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	ko, err := h.Kitchen.MarkReady(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewKitchenOrder(ko))
}

// Complete handles POST /v1/kitchen/orders/:id/complete.
func (h *KitchenHandler) Complete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	staffID, ok := middleware.StaffID(c)
	if !ok {
		return respondErr(c, repository.ErrForbidden)
	}
	ko, err := h.Kitchen.Complete(c.Request().Context(), id, staffID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewKitchenOrder(ko))
}

type cancellationRequest struct {
	Reason string `json:"reason"`
}

// RequestCancellation handles POST /v1/kitchen/orders/:id/cancellation.
func (h *KitchenHandler) RequestCancellation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var body cancellationRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ko, err := h.Kitchen.RequestCancellation(c.Request().Context(), id, body.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusAccepted, viewKitchenOrder(ko))
}

type resolveCancellationRequest struct {
	Accept bool `json:"accept"`
}

// ResolveCancellation handles POST /v1/kitchen/orders/:id/cancellation/resolve.
func (h *KitchenHandler) ResolveCancellation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	staffID, ok := middleware.StaffID(c)
	if !ok {
		return respondErr(c, repository.ErrForbidden)
	}
	var body resolveCancellationRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ko, err := h.Kitchen.ResolveCancellation(c.Request().Context(), id, staffID, body.Accept)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewKitchenOrder(ko))
}

type assignStationRequest struct {
	StationID uint64 `json:"station_id"`
}

// AssignStation handles POST /v1/kitchen/orders/:id/station.
func (h *KitchenHandler) AssignStation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var body assignStationRequest
	if err := c.Bind(&body); err != nil || body.StationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ko, err := h.Kitchen.AssignStation(c.Request().Context(), id, body.StationID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewKitchenOrder(ko))
}

type priorityRequest struct {
	Priority int32 `json:"priority"`
}

// UpdatePriority handles POST /v1/kitchen/orders/:id/priority.
func (h *KitchenHandler) UpdatePriority(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var body priorityRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ko, err := h.Kitchen.UpdatePriority(c.Request().Context(), id, body.Priority)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewKitchenOrder(ko))
}
