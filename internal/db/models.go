package db

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"comandero/internal/core"
)

// jobGraphRow is one row of the flattened comanda join. Order, item and
// table columns are all nullable: a comanda can point at a deleted pedido,
// and a pedido can have no line items yet.
type jobGraphRow struct {
	JobID      int64
	Comment    sql.NullString
	Printed    bool
	CreatedAt  time.Time
	OrderID    sql.NullInt64
	OrderAt    sql.NullTime
	Takeaway   sql.NullBool
	Quantity   sql.NullInt64
	DishDesc   sql.NullString
	CategoryID sql.NullInt64
	Tables     sql.NullString
}

// groupJobRows folds the join result back into flat core.Job values,
// resolving every nullable column once so rendering works on guaranteed
// shapes. Row order (comanda, then line item) is preserved.
func groupJobRows(rows []jobGraphRow) []core.Job {
	var jobs []core.Job
	idx := make(map[int64]int)

	for _, r := range rows {
		i, ok := idx[r.JobID]
		if !ok {
			job := core.Job{
				ID:        r.JobID,
				Comment:   r.Comment.String,
				Printed:   r.Printed,
				CreatedAt: r.CreatedAt,
			}
			if r.OrderID.Valid {
				order := &core.Order{
					ID:        r.OrderID.Int64,
					CreatedAt: r.OrderAt.Time,
					Tables:    parseTableList(r.Tables.String),
				}
				if r.Takeaway.Valid {
					v := r.Takeaway.Bool
					order.Takeaway = &v
				}
				job.Order = order
			}
			i = len(jobs)
			idx[r.JobID] = i
			jobs = append(jobs, job)
		}

		if jobs[i].Order == nil || !r.Quantity.Valid {
			continue
		}
		item := core.Item{
			Quantity:    int(r.Quantity.Int64),
			Description: r.DishDesc.String,
			CategoryID:  int(r.CategoryID.Int64),
		}
		if item.Description == "" {
			item.Description = core.PlaceholderDish
		}
		jobs[i].Order.Items = append(jobs[i].Order.Items, item)
	}

	return jobs
}

func parseTableList(agg string) []int {
	if agg == "" {
		return nil
	}
	parts := strings.Split(agg, ",")
	tables := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		tables = append(tables, n)
	}
	return tables
}
