package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/service"
)

// MenuHandler serves read-only menu lookups for ordering clients.
type MenuHandler struct {
	Menu *service.MenuCatalog
}

// NewMenuHandler constructs a MenuHandler.
func NewMenuHandler(menu *service.MenuCatalog) *MenuHandler {
	return &MenuHandler{Menu: menu}
}

type menuItemView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	StationID   uint64 `json:"station_id"`
	IsAvailable bool   `json:"is_available"`
}

func viewMenuItem(m *model.MenuItem) menuItemView {
	return menuItemView{
		ID:          m.ID,
		Name:        m.Name,
		PriceCents:  m.PriceCents,
		StationID:   m.StationID,
		IsAvailable: m.IsAvailable,
	}
}

// List handles GET /v1/menu.
func (h *MenuHandler) List(c echo.Context) error {
	items, err := h.Menu.ListItems(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	views := make([]menuItemView, 0, len(items))
	for i := range items {
		views = append(views, viewMenuItem(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// Get handles GET /v1/menu/:id.
func (h *MenuHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	m, err := h.Menu.GetItem(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewMenuItem(m))
}
