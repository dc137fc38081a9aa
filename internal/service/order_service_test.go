package service

import (
	"errors"
	"testing"

	"github.com/iliyamo/restaurant-order-system/internal/model"
	"github.com/iliyamo/restaurant-order-system/internal/repository"
)

func TestOrderableMenuItem(t *testing.T) {
	cases := []struct {
		name    string
		item    model.MenuItem
		wantErr error
	}{
		{"orderable", model.MenuItem{IsAvailable: true, IsActive: true}, nil},
		{"unavailable", model.MenuItem{IsAvailable: false, IsActive: true}, repository.ErrValidation},
		{"inactive", model.MenuItem{IsAvailable: true, IsActive: false}, repository.ErrValidation},
	}
	for _, tc := range cases {
		if err := orderableMenuItem(&tc.item); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestTableAcceptsOrder(t *testing.T) {
	cases := []struct {
		name    string
		table   model.RestaurantTable
		active  int
		wantErr error
	}{
		{"free table", model.RestaurantTable{IsActive: true, Status: model.TableAvailable}, 0, nil},
		{"reserved for the party", model.RestaurantTable{IsActive: true, Status: model.TableReserved}, 0, nil},
		{"inactive", model.RestaurantTable{IsActive: false, Status: model.TableAvailable}, 0, repository.ErrConflict},
		{"maintenance", model.RestaurantTable{IsActive: true, Status: model.TableMaintenance}, 0, repository.ErrConflict},
		{"already seated", model.RestaurantTable{IsActive: true, Status: model.TableOccupied}, 1, repository.ErrConflict},
	}
	for _, tc := range cases {
		if err := tableAcceptsOrder(&tc.table, tc.active); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestItemCancelPath(t *testing.T) {
	ticket := uint64(9)
	cases := []struct {
		name         string
		item         model.OrderItem
		wantEscalate bool
		wantErr      error
	}{
		{"pending undispatched cancels locally", model.OrderItem{Status: model.ItemPending}, false, nil},
		{"dispatched escalates to its ticket", model.OrderItem{Status: model.ItemPending, Dispatched: true, KitchenOrderID: &ticket}, true, nil},
		{"ready dispatched still escalates", model.OrderItem{Status: model.ItemReady, Dispatched: true, KitchenOrderID: &ticket}, true, nil},
		{"served is refused", model.OrderItem{Status: model.ItemServed, Dispatched: true, KitchenOrderID: &ticket}, false, repository.ErrConflict},
		{"already cancelled is refused", model.OrderItem{Status: model.ItemCancelled}, false, repository.ErrConflict},
	}
	for _, tc := range cases {
		escalate, err := itemCancelPath(&tc.item)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.wantErr)
			continue
		}
		if escalate != tc.wantEscalate {
			t.Errorf("%s: escalate = %v, want %v", tc.name, escalate, tc.wantEscalate)
		}
	}
}
