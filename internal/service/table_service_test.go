package service

import (
	"testing"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

func TestDeriveTableStatus(t *testing.T) {
	cases := []struct {
		name    string
		current model.TableStatus
		active  int
		want    model.TableStatus
	}{
		{"busy table shows occupied", model.TableAvailable, 2, model.TableOccupied},
		{"occupied goes idle", model.TableOccupied, 0, model.TableAvailable},
		{"reserved survives while idle", model.TableReserved, 0, model.TableReserved},
		{"reserved with live order is occupied", model.TableReserved, 1, model.TableOccupied},
		{"maintenance survives a live order", model.TableMaintenance, 1, model.TableMaintenance},
		{"maintenance survives while idle", model.TableMaintenance, 0, model.TableMaintenance},
		{"available stays available", model.TableAvailable, 0, model.TableAvailable},
	}
	for _, tc := range cases {
		if got := deriveTableStatus(tc.current, tc.active); got != tc.want {
			t.Errorf("%s: deriveTableStatus(%s, %d) = %s, want %s",
				tc.name, tc.current, tc.active, got, tc.want)
		}
	}
}

func TestOverrideConflictsWithOrders(t *testing.T) {
	cases := []struct {
		name   string
		status model.TableStatus
		active int
		want   bool
	}{
		{"maintenance on a busy table", model.TableMaintenance, 2, false},
		{"maintenance on an idle table", model.TableMaintenance, 0, false},
		{"reserved on a busy table", model.TableReserved, 1, true},
		{"available on a busy table", model.TableAvailable, 1, true},
		{"reserved on an idle table", model.TableReserved, 0, false},
	}
	for _, tc := range cases {
		if got := overrideConflictsWithOrders(tc.status, tc.active); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
