package main

import (
	"strings"
	"testing"
)

func TestNumericColumnDetection(t *testing.T) {
	rows := [][]string{
		{"ZONE_A_NORTH", "3", "12.50", "₹7,40,000", "2026-02-01 08:30"},
		{"ZONE_C_SOUTH", "1", "1.00", "₹58,000", "2026-02-01 09:00"},
		{"TOTAL", "4", "13.50", "₹7,98,000", ""},
	}

	wantNumeric := []bool{false, true, true, true, false}
	for col, want := range wantNumeric {
		if got := numericColumn(rows, col); got != want {
			t.Errorf("column %d numeric = %v, want %v", col, got, want)
		}
	}
	if numericColumn(nil, 0) {
		t.Error("empty table must not be numeric")
	}
}

func TestRenderTableAlignsQuantities(t *testing.T) {
	out := renderTable(
		[]string{"Zone", "Events"},
		[][]string{
			{"ZONE_A_NORTH", "3"},
			{"TOTAL", "410"},
		},
	)
	if !strings.Contains(out, "ZONE_A_NORTH") {
		t.Fatalf("missing row content:\n%s", out)
	}
	// Right alignment pads the short count from the left.
	if !strings.Contains(out, "  3 ") {
		t.Errorf("count column should right align:\n%s", out)
	}
}
