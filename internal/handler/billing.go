package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/service"
)

// BillingHandler serves bill creation, payments and refunds.
type BillingHandler struct {
	Billing *service.BillingService
}

// NewBillingHandler constructs a BillingHandler.
func NewBillingHandler(billing *service.BillingService) *BillingHandler {
	return &BillingHandler{Billing: billing}
}

type createBillRequest struct {
	OrderID       uint64 `json:"order_id"`
	DiscountCents *int64 `json:"discount_cents"`
}

// Create handles POST /v1/bills.
func (h *BillingHandler) Create(c echo.Context) error {
	var body createBillRequest
	if err := c.Bind(&body); err != nil || body.OrderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.Billing.CreateFromOrder(c.Request().Context(), body.OrderID, body.DiscountCents)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, viewBill(b, nil))
}

// Get handles GET /v1/bills/:id.
func (h *BillingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	b, payments, err := h.Billing.GetBill(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewBill(b, payments))
}

// GetByOrder handles GET /v1/orders/:id/bill.
func (h *BillingHandler) GetByOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	b, payments, err := h.Billing.GetBillByOrder(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewBill(b, payments))
}

type paymentRequest struct {
	Method        string  `json:"method"`
	AmountCents   int64   `json:"amount_cents"`
	TransactionID *string `json:"transaction_id"`
}

// Pay handles POST /v1/bills/:id/payments.
func (h *BillingHandler) Pay(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var body paymentRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.Billing.ApplyPayment(c.Request().Context(), id, body.Method, body.AmountCents, body.TransactionID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewBill(b, nil))
}

// Refund handles POST /v1/payments/:id/refund.
func (h *BillingHandler) Refund(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	b, err := h.Billing.RefundPayment(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, viewBill(b, nil))
}
