package middleware

// identity.go holds helpers shared across the middleware files for reading
// the authenticated staff member out of the Echo context.

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

// StaffID extracts the authenticated staff member's numeric ID from the
// context.  The sub claim may be a string or a JSON number; both are
// accepted.  Returns 0 and false when no valid identity is present.
func StaffID(c echo.Context) (uint64, bool) {
	switch v := c.Get("staff_id").(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		return id, err == nil && id != 0
	case float64:
		if v < 1 {
			return 0, false
		}
		return uint64(v), true
	case nil:
		return 0, false
	default:
		id, err := strconv.ParseUint(fmt.Sprint(v), 10, 64)
		return id, err == nil && id != 0
	}
}

// identityKey returns a stable string for rate-limit keying: the staff ID
// when authenticated, "anon" otherwise.
func identityKey(c echo.Context) string {
	if id, ok := StaffID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
