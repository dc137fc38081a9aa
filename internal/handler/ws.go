package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/event"
)

// WSHandler upgrades authenticated clients onto the event stream.
type WSHandler struct {
	Hub *event.Hub
}

// NewWSHandler constructs a WSHandler.
func NewWSHandler(hub *event.Hub) *WSHandler {
	return &WSHandler{Hub: hub}
}

// Subscribe handles GET /v1/events/ws.  After the upgrade the connection
// belongs to the hub; the handler returns nil without writing a body.
func (h *WSHandler) Subscribe(c echo.Context) error {
	return h.Hub.Upgrade(c.Response(), c.Request())
}
