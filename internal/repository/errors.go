// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as services
// and handlers to distinguish between different failure scenarios.  For
// example, ErrConflict signals that an operation is illegal for the entity's
// current state (double-billing, cancelling a completed order), while the
// per-entity not-found sentinels map to HTTP 404 responses.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation their role
// does not permit, such as a non-chef resolving a kitchen cancellation.
// Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of the
// entity's current state, such as paying an already-paid bill or adding
// items to a cancelled order.  Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")

// ErrValidation is returned for malformed input: non-positive quantities,
// unknown enum values, empty payment methods.  Handlers should translate
// this into an HTTP 400 response.
var ErrValidation = errors.New("validation failed")

// Per-entity not-found sentinels.  Each repository returns its own so that
// callers joining several entities in one operation can report precisely
// which reference was dangling.
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderItemNotFound    = errors.New("order item not found")
	ErrKitchenOrderNotFound = errors.New("kitchen order not found")
	ErrTableNotFound        = errors.New("table not found")
	ErrBillNotFound         = errors.New("bill not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrStaffNotFound        = errors.New("staff member not found")
)
