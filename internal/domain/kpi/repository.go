package kpi

import "context"

// RecordFilter narrows a record listing. Zero values mean "any".
type RecordFilter struct {
	EmployeeID string
	Year       int
	Month      int
}

type RecordRepository interface {
	// List returns matching records ordered by date descending.
	List(ctx context.Context, filter RecordFilter) ([]Record, error)

	// Upsert creates or replaces the record keyed by (employee_id, date), keeping the original id.
	Upsert(ctx context.Context, record Record) (Record, error)

	// MonthlyBucket sums one metric per month of year, oldest month first.
	MonthlyBucket(ctx context.Context, metric Metric, year int, employeeID string) ([]MonthBucket, error)

	// MonthlyTotals returns per-employee totals for one month: count metrics summed,
	// percentage metrics by maximum.
	MonthlyTotals(ctx context.Context, year, month int) (map[string]Totals, error)
}
