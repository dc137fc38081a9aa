package model

import "testing"

func TestCanTransitionKitchen(t *testing.T) {
	cases := []struct {
		from, to KitchenOrderStatus
		want     bool
	}{
		{KitchenPending, KitchenPreparing, true},
		{KitchenPreparing, KitchenReady, true},
		{KitchenReady, KitchenCompleted, true},
		{KitchenPending, KitchenCancelled, true},
		{KitchenPreparing, KitchenCancelled, true},
		// plated or picked-up dishes can no longer be cancelled
		{KitchenReady, KitchenCancelled, false},
		{KitchenCompleted, KitchenCancelled, false},
		// no skipping, no going back
		{KitchenPending, KitchenReady, false},
		{KitchenReady, KitchenPreparing, false},
		{KitchenCancelled, KitchenPending, false},
	}
	for _, c := range cases {
		if got := CanTransitionKitchen(c.from, c.to); got != c.want {
			t.Errorf("CanTransitionKitchen(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestKitchenCancellable(t *testing.T) {
	for s, want := range map[KitchenOrderStatus]bool{
		KitchenPending:   true,
		KitchenPreparing: true,
		KitchenReady:     false,
		KitchenCompleted: false,
		KitchenCancelled: false,
	} {
		if got := s.Cancellable(); got != want {
			t.Errorf("%s.Cancellable() = %v, want %v", s, got, want)
		}
	}
}
