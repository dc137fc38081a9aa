package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/service"
)

// TableHandler serves the table map endpoints.
type TableHandler struct {
	Tables *service.TableService
}

// NewTableHandler constructs a TableHandler.
func NewTableHandler(tables *service.TableService) *TableHandler {
	return &TableHandler{Tables: tables}
}

// List handles GET /v1/tables with an optional status filter.
func (h *TableHandler) List(c echo.Context) error {
	var status *model.TableStatus
	if s := c.QueryParam("status"); s != "" {
		v := model.TableStatus(s)
		status = &v
	}
	tables, err := h.Tables.ListTables(c.Request().Context(), status)
	if err != nil {
		return respondErr(c, err)
	}
	views := make([]tableView, 0, len(tables))
	for i := range tables {
		views = append(views, viewTable(&tables[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": views})
}

// Get handles GET /v1/tables/:id.
func (h *TableHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	t, err := h.Tables.GetTable(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewTable(t))
}

type tableStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PUT /v1/tables/:id/status (manual overrides only).
func (h *TableHandler) SetStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var body tableStatusRequest
	if err := c.Bind(&body); err != nil || body.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	t, err := h.Tables.SetManualStatus(c.Request().Context(), id, model.TableStatus(body.Status))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewTable(t))
}

// Recompute handles POST /v1/tables/recompute, re-deriving every table's
// occupancy from the live orders.
func (h *TableHandler) Recompute(c echo.Context) error {
	changed, err := h.Tables.Recompute(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"changed": changed})
}
