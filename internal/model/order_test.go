package model

import "testing"

func TestCanAdvanceOrder(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderConfirmed, OrderReady, true},
		{OrderReady, OrderServing, true},
		{OrderServing, OrderCompleted, true},
		// skipping a step is rejected
		{OrderPending, OrderReady, false},
		{OrderConfirmed, OrderCompleted, false},
		// backward moves are rejected
		{OrderReady, OrderConfirmed, false},
		{OrderCompleted, OrderServing, false},
		// cancellation is never reachable through advancement
		{OrderPending, OrderCancelled, false},
		{OrderServing, OrderCancelled, false},
		// terminal states go nowhere
		{OrderCompleted, OrderCompleted, false},
		{OrderCancelled, OrderPending, false},
	}
	for _, c := range cases {
		if got := CanAdvanceOrder(c.from, c.to); got != c.want {
			t.Errorf("CanAdvanceOrder(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderConfirmed, OrderReady, OrderServing} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderCompleted, OrderCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestSubtotalSkipsCancelledItems(t *testing.T) {
	items := []OrderItem{
		{Quantity: 2, UnitPriceCents: 1250, TotalPriceCents: 2500, Status: ItemPending},
		{Quantity: 1, UnitPriceCents: 900, TotalPriceCents: 900, Status: ItemCancelled},
		{Quantity: 1, UnitPriceCents: 450, TotalPriceCents: 450, Status: ItemServed},
	}
	if got := SubtotalCents(items); got != 2950 {
		t.Fatalf("SubtotalCents = %d, want 2950", got)
	}
}

func TestTaxCents(t *testing.T) {
	cases := []struct {
		amount, rate, want int64
	}{
		{10000, 800, 800},  // 8% of 100.00
		{2950, 800, 236},   // fractional cents truncate
		{0, 800, 0},
		{10000, 0, 0},
		{-500, 800, 0},
	}
	for _, c := range cases {
		if got := TaxCents(c.amount, c.rate); got != c.want {
			t.Errorf("TaxCents(%d, %d) = %d, want %d", c.amount, c.rate, got, c.want)
		}
	}
}

func TestFinalAmountFloorsAtZero(t *testing.T) {
	if got := FinalAmountCents(1000, 2000, 0); got != 0 {
		t.Fatalf("FinalAmountCents = %d, want 0", got)
	}
	if got := FinalAmountCents(2950, 450, 200); got != 2700 {
		t.Fatalf("FinalAmountCents = %d, want 2700", got)
	}
}

func TestAllServed(t *testing.T) {
	if AllServed(nil) {
		t.Fatal("empty order must not count as served")
	}
	if AllServed([]OrderItem{{Status: ItemCancelled}}) {
		t.Fatal("all-cancelled order must not count as served")
	}
	if !AllServed([]OrderItem{{Status: ItemServed}, {Status: ItemCancelled}}) {
		t.Fatal("cancelled items must not block completion")
	}
	if AllServed([]OrderItem{{Status: ItemServed}, {Status: ItemReady}}) {
		t.Fatal("a ready item must block completion")
	}
}
