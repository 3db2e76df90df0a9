package core

import (
	"testing"
	"time"
)

func TestBuildDailyReport_SubTotalsSumToGrandTotal(t *testing.T) {
	day := time.Date(2024, 5, 12, 0, 0, 0, 0, time.Local)
	orders := []Order{
		{ID: 1, Total: 100.00, Payment: "EFECTIVO"},
		{ID: 2, Total: 30.00, Payment: "TARJETA"},
		{ID: 3, Total: 20.00, Payment: "TRANSFERENCIA"},
	}

	r := BuildDailyReport(day, orders, nil)

	if r.TotalCents != 15000 {
		t.Fatalf("expected total 15000 cents, got %d", r.TotalCents)
	}
	var sum int64
	for _, p := range r.Payments {
		sum += p.Cents
	}
	if sum != r.TotalCents {
		t.Errorf("payment sub-totals (%d) must sum exactly to the grand total (%d)", sum, r.TotalCents)
	}
	if FormatCents(r.TotalCents) != "$150.00" {
		t.Errorf("expected $150.00, got %s", FormatCents(r.TotalCents))
	}
}

func TestBuildDailyReport_CentRoundingStaysExact(t *testing.T) {
	// Fractions that misbehave in binary floating point.
	day := time.Now()
	orders := []Order{
		{Total: 0.1, Payment: "EFECTIVO"},
		{Total: 0.2, Payment: "EFECTIVO"},
	}
	r := BuildDailyReport(day, orders, nil)
	if r.TotalCents != 30 {
		t.Errorf("expected 30 cents, got %d", r.TotalCents)
	}
}

func TestBuildDailyReport_TopDishesStableTies(t *testing.T) {
	sales := []DishSale{
		{Description: "Arroz", Quantity: 2},
		{Description: "Sopa", Quantity: 1},
		{Description: "Tacos", Quantity: 2},
		{Description: "Flan", Quantity: 2},
		{Description: "Sopa", Quantity: 1},
	}

	r := BuildDailyReport(time.Now(), nil, sales)

	if len(r.TopDishes) != 3 {
		t.Fatalf("expected 3 top dishes, got %d", len(r.TopDishes))
	}
	// Every dish sums to 2; first-seen order breaks the four-way tie, so
	// Flan falls off the top three.
	want := []DishCount{
		{Description: "Arroz", Quantity: 2},
		{Description: "Sopa", Quantity: 2},
		{Description: "Tacos", Quantity: 2},
	}
	for i, w := range want {
		if r.TopDishes[i] != w {
			t.Errorf("position %d: expected %+v, got %+v", i, w, r.TopDishes[i])
		}
	}
}

func TestBuildDailyReport_EmptyDay(t *testing.T) {
	r := BuildDailyReport(time.Now(), nil, nil)
	if r.TotalCents != 0 || r.OrderCount != 0 || len(r.TopDishes) != 0 {
		t.Errorf("empty day must produce a zero report: %+v", r)
	}

	ds := RenderDailyReport(r, time.Now())
	if !containsLine(ds, "Sin ventas registradas") {
		t.Errorf("empty report must say so, lines: %v", printedLines(ds))
	}
	if ds[len(ds)-1].Op != OpCut {
		t.Errorf("report must end with a cut")
	}
}

func TestRenderDailyReport_Layout(t *testing.T) {
	day := time.Date(2024, 5, 12, 0, 0, 0, 0, time.Local)
	r := BuildDailyReport(day, []Order{
		{Total: 100, Payment: "EFECTIVO"},
		{Total: 30, Payment: "TARJETA"},
	}, []DishSale{{Description: "Arroz", Quantity: 4}})

	ds := RenderDailyReport(r, time.Now())

	for _, want := range []string{
		"REPORTE DIARIO",
		"12/05/2024",
		"Pedidos cerrados: 2",
		"TOTAL: $130.00",
		"EFECTIVO: $100.00",
		"TARJETA: $30.00",
		"1. 4x Arroz",
	} {
		if !containsLine(ds, want) {
			t.Errorf("missing line %q, lines: %v", want, printedLines(ds))
		}
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{150, "$1.50"},
		{15000, "$150.00"},
		{-250, "-$2.50"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
