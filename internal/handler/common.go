// Package handler exposes the HTTP surface: request decoding, error mapping
// and JSON shaping.  Business rules live in the service layer; handlers stay
// thin.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

// parseID reads a positive uint64 path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, repository.ErrValidation
	}
	return id, nil
}

// respondErr maps a service or repository error onto an HTTP response:
// not-found sentinels become 404, validation 400, conflicts 409, illegal
// status edges 422 and role failures 403.  Anything else is a 500 with the
// detail kept out of the response body.
func respondErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrOrderItemNotFound),
		errors.Is(err, repository.ErrKitchenOrderNotFound),
		errors.Is(err, repository.ErrTableNotFound),
		errors.Is(err, repository.ErrBillNotFound),
		errors.Is(err, repository.ErrPaymentNotFound),
		errors.Is(err, repository.ErrMenuItemNotFound),
		errors.Is(err, repository.ErrStaffNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidTransition):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
