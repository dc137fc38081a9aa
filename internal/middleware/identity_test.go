package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newCtx(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestStaffID(t *testing.T) {
	cases := []struct {
		name   string
		claim  interface{}
		want   uint64
		wantOK bool
	}{
		{"string claim", "42", 42, true},
		{"number claim", float64(7), 7, true},
		{"zero", float64(0), 0, false},
		{"garbage", "not-a-number", 0, false},
		{"missing", nil, 0, false},
	}
	for _, tc := range cases {
		c := newCtx(t)
		if tc.claim != nil {
			c.Set("staff_id", tc.claim)
		}
		got, ok := StaffID(c)
		if ok != tc.wantOK || (ok && got != tc.want) {
			t.Errorf("%s: StaffID = (%d, %v), want (%d, %v)", tc.name, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("CHEF", "MANAGER")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	c := newCtx(t)
	c.Set("role", "CHEF")
	if err := handler(c); err != nil {
		t.Fatalf("chef: %v", err)
	}
	if got := c.Response().Status; got != http.StatusOK {
		t.Errorf("chef: status %d", got)
	}

	c = newCtx(t)
	c.Set("role", "WAITER")
	if err := handler(c); err != nil {
		t.Fatalf("waiter: %v", err)
	}
	if got := c.Response().Status; got != http.StatusForbidden {
		t.Errorf("waiter: status %d, want 403", got)
	}

	c = newCtx(t)
	if err := handler(c); err != nil {
		t.Fatalf("missing role: %v", err)
	}
	if got := c.Response().Status; got != http.StatusForbidden {
		t.Errorf("missing role: status %d, want 403", got)
	}
}
