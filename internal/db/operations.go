package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"comandero/internal/core"
)

// JobStore exposes the order database to the print pipeline. It implements
// core.JobStore.
type JobStore struct {
	db *sql.DB
}

func NewJobStore(database *sql.DB) *JobStore {
	return &JobStore{db: database}
}

// PendingJobs returns every unprinted comanda with its fully loaded order
// graph, oldest first.
func (s *JobStore) PendingJobs(ctx context.Context) ([]core.Job, error) {
	rows, err := s.db.QueryContext(ctx, SelectPendingJobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending comandas: %w", err)
	}
	defer rows.Close()

	raw, err := scanJobRows(rows)
	if err != nil {
		return nil, err
	}
	return groupJobRows(raw), nil
}

// JobByID fetches one comanda regardless of print state. Returns
// core.ErrJobNotFound when the id does not exist.
func (s *JobStore) JobByID(ctx context.Context, id int64) (core.Job, error) {
	rows, err := s.db.QueryContext(ctx, SelectJobByID, id)
	if err != nil {
		return core.Job{}, fmt.Errorf("failed to query comanda %d: %w", id, err)
	}
	defer rows.Close()

	raw, err := scanJobRows(rows)
	if err != nil {
		return core.Job{}, err
	}
	jobs := groupJobRows(raw)
	if len(jobs) == 0 {
		return core.Job{}, core.ErrJobNotFound
	}
	return jobs[0], nil
}

// MarkPrinted flips one comanda to printed. Re-marking an already printed
// comanda is a harmless no-op, which keeps retries idempotent.
func (s *JobStore) MarkPrinted(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, MarkJobPrinted, id)
	if err != nil {
		return fmt.Errorf("failed to mark comanda %d printed: %w", id, err)
	}
	return nil
}

// CategoriesByDescription resolves product descriptions to category ids by
// exact match. Descriptions with no product row are absent from the result.
func (s *JobStore) CategoriesByDescription(ctx context.Context, descs []string) (map[string]int, error) {
	out := make(map[string]int, len(descs))
	if len(descs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(descs))
	args := make([]any, len(descs))
	for i, d := range descs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = d
	}
	query := fmt.Sprintf(
		"SELECT descripcion, categoria_id FROM productos WHERE descripcion IN (%s)",
		strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var desc string
		var cat sql.NullInt64
		if err := rows.Scan(&desc, &cat); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		out[desc] = int(cat.Int64)
	}
	return out, rows.Err()
}

// ClosedOrders returns the closed pedidos created inside [from, to).
func (s *JobStore) ClosedOrders(ctx context.Context, from, to time.Time) ([]core.Order, error) {
	rows, err := s.db.QueryContext(ctx, SelectClosedOrdersForDay, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed orders: %w", err)
	}
	defer rows.Close()

	var orders []core.Order
	for rows.Next() {
		var o core.Order
		var payment sql.NullString
		var total sql.NullFloat64
		if err := rows.Scan(&o.ID, &o.CreatedAt, &total, &payment); err != nil {
			return nil, fmt.Errorf("failed to scan closed order: %w", err)
		}
		o.Closed = true
		o.Payment = payment.String
		o.Total = total.Float64
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// DishSales returns the line items of closed pedidos inside [from, to), in
// encounter order.
func (s *JobStore) DishSales(ctx context.Context, from, to time.Time) ([]core.DishSale, error) {
	rows, err := s.db.QueryContext(ctx, SelectDishSalesForDay, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query dish sales: %w", err)
	}
	defer rows.Close()

	var sales []core.DishSale
	for rows.Next() {
		var desc sql.NullString
		var qty sql.NullInt64
		if err := rows.Scan(&desc, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan dish sale: %w", err)
		}
		sales = append(sales, core.DishSale{
			Description: desc.String,
			Quantity:    int(qty.Int64),
		})
	}
	return sales, rows.Err()
}

func scanJobRows(rows *sql.Rows) ([]jobGraphRow, error) {
	var out []jobGraphRow
	for rows.Next() {
		var r jobGraphRow
		if err := rows.Scan(
			&r.JobID, &r.Comment, &r.Printed, &r.CreatedAt,
			&r.OrderID, &r.OrderAt, &r.Takeaway,
			&r.Quantity, &r.DishDesc, &r.CategoryID,
			&r.Tables,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comanda row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
