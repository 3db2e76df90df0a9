package core

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DailyReport aggregates the closed orders of one local calendar day. All
// money is carried in integer cents so the printed sub-totals always sum
// to the printed grand total, digit for digit.
type DailyReport struct {
	Date       time.Time
	OrderCount int
	TotalCents int64
	Payments   []PaymentTotal
	TopDishes  []DishCount
}

type PaymentTotal struct {
	Method string
	Cents  int64
}

// DishCount is one aggregated dish with its summed quantity.
type DishCount struct {
	Description string
	Quantity    int
}

// DishSale is one line-item row as read from the repository, in encounter
// order. Encounter order is what breaks ties in the top list.
type DishSale struct {
	Description string
	Quantity    int
}

const topDishCount = 3

// BuildDailyReport folds the day's closed orders and their line items into
// a report. Payment methods keep encounter order; the dish ranking is a
// stable sort on summed quantity so equal dishes keep encounter order too.
func BuildDailyReport(date time.Time, orders []Order, sales []DishSale) DailyReport {
	r := DailyReport{Date: date, OrderCount: len(orders)}

	paymentIdx := make(map[string]int)
	for _, o := range orders {
		cents := toCents(o.Total)
		r.TotalCents += cents
		method := o.Payment
		if method == "" {
			method = "SIN MÉTODO"
		}
		i, ok := paymentIdx[method]
		if !ok {
			i = len(r.Payments)
			paymentIdx[method] = i
			r.Payments = append(r.Payments, PaymentTotal{Method: method})
		}
		r.Payments[i].Cents += cents
	}

	dishIdx := make(map[string]int)
	var dishes []DishCount
	for _, s := range sales {
		desc := s.Description
		if desc == "" {
			desc = PlaceholderDish
		}
		i, ok := dishIdx[desc]
		if !ok {
			i = len(dishes)
			dishIdx[desc] = i
			dishes = append(dishes, DishCount{Description: desc})
		}
		dishes[i].Quantity += s.Quantity
	}
	sort.SliceStable(dishes, func(i, j int) bool {
		return dishes[i].Quantity > dishes[j].Quantity
	})
	if len(dishes) > topDishCount {
		dishes = dishes[:topDishCount]
	}
	r.TopDishes = dishes

	return r
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FormatCents renders integer cents as a two-decimal money string.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// RenderDailyReport lays the report out as its own ticket format, separate
// from the comanda layout.
func RenderDailyReport(r DailyReport, now time.Time) []Directive {
	ds := []Directive{
		AlignCenter(),
		BoldOn(),
		TextSize(2, 1),
		Println("REPORTE DIARIO"),
		TextSize(1, 1),
		Println(r.Date.Format("02/01/2006")),
		BoldOff(),
		Separator(),
		AlignLeft(),
		Println(fmt.Sprintf("Pedidos cerrados: %d", r.OrderCount)),
		BoldOn(),
		Println("TOTAL: " + FormatCents(r.TotalCents)),
		BoldOff(),
		Separator(),
	}

	for _, p := range r.Payments {
		ds = append(ds, Println(fmt.Sprintf("%s: %s", p.Method, FormatCents(p.Cents))))
	}

	ds = append(ds,
		Separator(),
		AlignCenter(),
		BoldOn(),
		Println("PLATOS MÁS PEDIDOS"),
		BoldOff(),
		AlignLeft(),
	)
	for i, d := range r.TopDishes {
		ds = append(ds, Println(fmt.Sprintf("%d. %dx %s", i+1, d.Quantity, d.Description)))
	}
	if len(r.TopDishes) == 0 {
		ds = append(ds, Println("Sin ventas registradas"))
	}

	ds = append(ds,
		Separator(),
		AlignCenter(),
		Println("Impreso: "+now.Format("15:04:05")),
		Cut(),
	)
	return ds
}
