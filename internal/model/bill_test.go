package model

import "testing"

func TestSettleBill(t *testing.T) {
	cases := []struct {
		name        string
		total, paid int64
		wantStatus  PaymentStatus
		wantChange  int64
	}{
		{"unpaid", 10000, 0, PaymentPending, 0},
		{"partial", 10000, 3000, PaymentPending, 0},
		{"exact", 10000, 10000, PaymentPaid, 0},
		{"overpaid", 10000, 11000, PaymentPaid, 1000},
	}
	for _, c := range cases {
		status, change := SettleBill(c.total, c.paid)
		if status != c.wantStatus || change != c.wantChange {
			t.Errorf("%s: SettleBill(%d, %d) = (%s, %d), want (%s, %d)",
				c.name, c.total, c.paid, status, change, c.wantStatus, c.wantChange)
		}
	}
}

func TestSettleBillConcurrentPaymentsScenario(t *testing.T) {
	// Two payments of 30.00 and 80.00 against a 100.00 bill must settle to
	// paid with 10.00 change regardless of arrival order.
	total := int64(10000)
	for _, order := range [][]int64{{3000, 8000}, {8000, 3000}} {
		var paid int64
		for _, amt := range order {
			paid += amt
		}
		status, change := SettleBill(total, paid)
		if status != PaymentPaid || change != 1000 {
			t.Fatalf("order %v: got (%s, %d), want (paid, 1000)", order, status, change)
		}
	}
}
