// Package router maps the HTTP surface onto the handlers and applies the
// JWT, role, rate-limit and cache middleware per route group.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-order-system/internal/config"
	"github.com/iliyamo/restaurant-order-system/internal/handler"
	"github.com/iliyamo/restaurant-order-system/internal/middleware"
	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Orders  *handler.OrderHandler
	Kitchen *handler.KitchenHandler
	Tables  *handler.TableHandler
	Billing *handler.BillingHandler
	Menu    *handler.MenuHandler
	WS      *handler.WSHandler
	Health  *handler.HealthHandler
}

// Register mounts all routes.  Everything under /v1 requires a valid access
// token; mutating endpoints are further gated by role.  Waiters drive the
// order lifecycle, chefs drive the kitchen, cashiers drive billing, and
// managers may do all of it.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/health", h.Health.Check)

	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(rl)

	// event stream for kitchen displays, waiter UIs and table maps
	v1.GET("/events/ws", h.WS.Subscribe)

	// read endpoints, shared by all roles, cached briefly
	v1.GET("/menu", h.Menu.List, cache)
	v1.GET("/menu/:id", h.Menu.Get, cache)
	v1.GET("/orders", h.Orders.List, cache)
	v1.GET("/orders/:id", h.Orders.Get)
	v1.GET("/orders/:id/bill", h.Billing.GetByOrder)
	v1.GET("/tables", h.Tables.List, cache)
	v1.GET("/tables/:id", h.Tables.Get)
	v1.GET("/kitchen/queue", h.Kitchen.Queue, cache)
	v1.GET("/kitchen/orders/:id", h.Kitchen.Get)
	v1.GET("/bills/:id", h.Billing.Get)

	waiter := middleware.RequireRole(model.RoleWaiter, model.RoleManager)
	chef := middleware.RequireRole(model.RoleChef, model.RoleManager)
	cashier := middleware.RequireRole(model.RoleCashier, model.RoleManager)
	manager := middleware.RequireRole(model.RoleManager)

	// order lifecycle (waiters)
	v1.POST("/orders", h.Orders.Create, waiter)
	v1.POST("/orders/:id/items", h.Orders.AddItems, waiter)
	v1.DELETE("/orders/:id/items/:itemID", h.Orders.CancelItem, waiter)
	v1.POST("/orders/:id/items/:itemID/serve", h.Orders.MarkItemServed, waiter)
	v1.POST("/orders/:id/status", h.Orders.AdvanceStatus, waiter)
	v1.POST("/orders/:id/cancel", h.Orders.Cancel, waiter)

	// kitchen lifecycle (chefs); cancellation requests come from waiters
	v1.POST("/kitchen/orders/:id/start", h.Kitchen.Start, chef)
	v1.POST("/kitchen/orders/:id/ready", h.Kitchen.Ready, chef)
	v1.POST("/kitchen/orders/:id/complete", h.Kitchen.Complete, chef)
	v1.POST("/kitchen/orders/:id/cancellation", h.Kitchen.RequestCancellation, waiter)
	v1.POST("/kitchen/orders/:id/cancellation/resolve", h.Kitchen.ResolveCancellation, chef)
	v1.POST("/kitchen/orders/:id/station", h.Kitchen.AssignStation, chef)
	v1.POST("/kitchen/orders/:id/priority", h.Kitchen.UpdatePriority, chef)

	// tables (waiters override, managers repair)
	v1.PUT("/tables/:id/status", h.Tables.SetStatus, waiter)
	v1.POST("/tables/recompute", h.Tables.Recompute, manager)

	// billing (cashiers)
	v1.POST("/bills", h.Billing.Create, cashier)
	v1.POST("/bills/:id/payments", h.Billing.Pay, cashier)
	v1.POST("/payments/:id/refund", h.Billing.Refund, cashier)
}
