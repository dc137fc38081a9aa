package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/event"
)

// HealthHandler reports liveness: database reachability and how many event
// subscribers are connected.
type HealthHandler struct {
	DB  *sql.DB
	Hub *event.Hub
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *sql.DB, hub *event.Hub) *HealthHandler {
	return &HealthHandler{DB: db, Hub: hub}
}

// Check handles GET /health.
func (h *HealthHandler) Check(c echo.Context) error {
	status := "ok"
	code := http.StatusOK
	if err := h.DB.PingContext(c.Request().Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, echo.Map{
		"status":      status,
		"subscribers": h.Hub.ClientCount(),
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}
