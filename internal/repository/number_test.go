package repository

import (
	"testing"
	"time"
)

func TestFormatOrderNumber(t *testing.T) {
	day := time.Date(2026, 8, 31, 14, 3, 0, 0, time.UTC)
	if got := FormatOrderNumber(day, 7); got != "ORD-20260831-0007" {
		t.Errorf("FormatOrderNumber = %q", got)
	}
	if got := FormatOrderNumber(day, 1234); got != "ORD-20260831-1234" {
		t.Errorf("FormatOrderNumber = %q", got)
	}
}

func TestFormatBillNumber(t *testing.T) {
	// local times must normalize to the UTC day
	loc := time.FixedZone("UTC+5", 5*3600)
	day := time.Date(2026, 9, 1, 2, 0, 0, 0, loc)
	if got := FormatBillNumber(day, 3); got != "BILL-20260831-0003" {
		t.Errorf("FormatBillNumber = %q", got)
	}
}
