package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

func TestRespondErrMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"order not found", repository.ErrOrderNotFound, http.StatusNotFound},
		{"bill not found", repository.ErrBillNotFound, http.StatusNotFound},
		{"validation", repository.ErrValidation, http.StatusBadRequest},
		{"conflict", repository.ErrConflict, http.StatusConflict},
		{"invalid transition", model.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"forbidden", repository.ErrForbidden, http.StatusForbidden},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := respondErr(c, tc.err); err != nil {
			t.Fatalf("%s: respondErr returned %v", tc.name, err)
		}
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestParseID(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		raw    string
		wantOK bool
	}{
		{"7", true},
		{"0", false},
		{"-3", false},
		{"abc", false},
		{"", false},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(tc.raw)
		_, err := parseID(c, "id")
		if (err == nil) != tc.wantOK {
			t.Errorf("parseID(%q): err = %v, wantOK %v", tc.raw, err, tc.wantOK)
		}
	}
}
