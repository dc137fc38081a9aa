package service

import (
	"reflect"
	"testing"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

func TestGroupByStation(t *testing.T) {
	items := []model.OrderItem{
		{ID: 11, ItemID: 1},
		{ID: 12, ItemID: 2},
		{ID: 13, ItemID: 3},
		{ID: 14, ItemID: 1},
	}
	stationOf := map[uint64]uint64{
		1: 5, // grill
		2: 9, // bar
		3: 5, // grill
	}
	got := groupByStation(items, stationOf)
	want := []stationGroup{
		{StationID: 5, ItemIDs: []uint64{11, 13, 14}},
		{StationID: 9, ItemIDs: []uint64{12}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("groupByStation = %+v, want %+v", got, want)
	}
}

func TestGroupByStationEmpty(t *testing.T) {
	if got := groupByStation(nil, nil); len(got) != 0 {
		t.Errorf("groupByStation(nil) = %+v", got)
	}
}

func TestOrderReadyAfterTicket(t *testing.T) {
	cases := []struct {
		name    string
		tickets []model.KitchenOrder
		ticket  uint64
		want    bool
	}{
		{
			"only ticket finishing",
			[]model.KitchenOrder{{ID: 1, Status: model.KitchenPreparing}},
			1, true,
		},
		{
			"sibling still cooking",
			[]model.KitchenOrder{
				{ID: 1, Status: model.KitchenPreparing},
				{ID: 2, Status: model.KitchenPending},
			},
			1, false,
		},
		{
			"siblings ready or cancelled",
			[]model.KitchenOrder{
				{ID: 1, Status: model.KitchenPreparing},
				{ID: 2, Status: model.KitchenReady},
				{ID: 3, Status: model.KitchenCancelled},
			},
			1, true,
		},
	}
	for _, tc := range cases {
		if got := orderReadyAfterTicket(tc.tickets, tc.ticket); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
