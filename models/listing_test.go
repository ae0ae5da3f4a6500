package models

import "testing"

func TestAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"USD 150.000", 150000, true},
		{"$ 90,000", 90000, true},
		{"90000", 90000, true},
		{"90000.50", 90000.50, true},
		{"$ 1.234,56", 1234.56, true},
		{"ARS 120.000,00", 120000, true},
		{"1.500.000", 1500000, true},
		{"Consultar", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		s := tt.in
		got, ok := Amount(&s)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Amount(%q): got (%v, %t), want (%v, %t)", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	if _, ok := Amount(nil); ok {
		t.Error("Amount(nil) should report no value")
	}
}
