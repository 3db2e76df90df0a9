package core

import (
	"time"
)

// Job is one kitchen print request, flattened from the order graph at fetch
// time so rendering never has to guard against half-loaded rows.
type Job struct {
	ID        int64
	Comment   string
	Printed   bool
	CreatedAt time.Time
	// Order is nil when the referenced pedido row is gone; the renderer
	// degrades to a placeholder ticket instead of failing the batch.
	Order *Order
}

type Order struct {
	ID        int64
	CreatedAt time.Time
	// Takeaway is tri-state: the column is nullable in the order system.
	Takeaway *bool
	Tables   []int
	Items    []Item
	Closed   bool
	Payment  string
	Total    float64
}

type Item struct {
	Quantity    int
	Description string
	CategoryID  int
}

// CategoryBroth is the distinguished "caldos" category: its items always
// print ahead of everything else so the soup station reads them first.
const CategoryBroth = 4

// PlaceholderDish replaces an unresolvable product description.
const PlaceholderDish = "Producto no encontrado"

// PartitionByBroth returns the items with broth items first, everything
// else after, preserving each group's original relative order.
func PartitionByBroth(items []Item) []Item {
	if len(items) == 0 {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.CategoryID == CategoryBroth {
			out = append(out, it)
		}
	}
	for _, it := range items {
		if it.CategoryID != CategoryBroth {
			out = append(out, it)
		}
	}
	return out
}

// OutcomeState is the tri-state result every print operation reports
// outward: an operation is announced as pending, then resolves to success
// or error with a human-readable message.
type OutcomeState string

const (
	OutcomePending OutcomeState = "pending"
	OutcomeSuccess OutcomeState = "success"
	OutcomeError   OutcomeState = "error"
)

type Outcome struct {
	State   OutcomeState `json:"state"`
	Message string       `json:"message"`
}
