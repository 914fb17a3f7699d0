package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/database"
)

const kpiRecordColumns = `id, employee_id, date, margin, calls, leads_generated, solo_closing,
	out_house_meetings, in_house_meetings, product_knowledge, smd, created_at, updated_at`

type kpiRecordRepositoryImpl struct {
	db *database.DB
}

func NewKPIRecordRepository(db *database.DB) kpi.RecordRepository {
	return &kpiRecordRepositoryImpl{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKPIRecord(row rowScanner) (kpi.Record, error) {
	var r kpi.Record
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Date, &r.Margin, &r.Calls, &r.LeadsGenerated, &r.SoloClosing,
		&r.OutHouseMeetings, &r.InHouseMeetings, &r.ProductKnowledge, &r.SMD, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// dateRange turns a year and optional month into a half-open date interval.
func dateRange(year, month int) (time.Time, time.Time) {
	if month == 0 {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// List implements kpi.RecordRepository.
func (k *kpiRecordRepositoryImpl) List(ctx context.Context, filter kpi.RecordFilter) ([]kpi.Record, error) {
	q := GetQuerier(ctx, k.db)

	var (
		where []string
		args  []interface{}
	)
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.Year != 0 {
		from, to := dateRange(filter.Year, filter.Month)
		args = append(args, from, to)
		where = append(where, fmt.Sprintf("date >= $%d AND date < $%d", len(args)-1, len(args)))
	}

	query := "SELECT " + kpiRecordColumns + " FROM kpi_records"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, employee_id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query kpi records: %w", err)
	}
	defer rows.Close()

	records := make([]kpi.Record, 0)
	for rows.Next() {
		r, err := scanKPIRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kpi record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kpi records: %w", err)
	}

	return records, nil
}

// Upsert implements kpi.RecordRepository.
func (k *kpiRecordRepositoryImpl) Upsert(ctx context.Context, record kpi.Record) (kpi.Record, error) {
	q := GetQuerier(ctx, k.db)

	query := `
		INSERT INTO kpi_records (
			employee_id, date, margin, calls, leads_generated, solo_closing,
			out_house_meetings, in_house_meetings, product_knowledge, smd
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			margin = EXCLUDED.margin,
			calls = EXCLUDED.calls,
			leads_generated = EXCLUDED.leads_generated,
			solo_closing = EXCLUDED.solo_closing,
			out_house_meetings = EXCLUDED.out_house_meetings,
			in_house_meetings = EXCLUDED.in_house_meetings,
			product_knowledge = EXCLUDED.product_knowledge,
			smd = EXCLUDED.smd,
			updated_at = NOW()
		RETURNING ` + kpiRecordColumns

	stored, err := scanKPIRecord(q.QueryRow(ctx, query,
		record.EmployeeID, record.Date, record.Margin, record.Calls, record.LeadsGenerated, record.SoloClosing,
		record.OutHouseMeetings, record.InHouseMeetings, record.ProductKnowledge, record.SMD,
	))
	if err != nil {
		return kpi.Record{}, fmt.Errorf("failed to upsert kpi record for employee %s on %s: %w",
			record.EmployeeID, record.Date.Format(kpi.DateLayout), err)
	}

	return stored, nil
}

// MonthlyBucket implements kpi.RecordRepository.
func (k *kpiRecordRepositoryImpl) MonthlyBucket(ctx context.Context, metric kpi.Metric, year int, employeeID string) ([]kpi.MonthBucket, error) {
	// metric is interpolated as a column name, so only known metrics get through.
	if !metric.IsValid() {
		return nil, fmt.Errorf("%w: %q", kpi.ErrInvalidMetric, metric)
	}
	q := GetQuerier(ctx, k.db)

	from, to := dateRange(year, 0)
	args := []interface{}{from, to}
	query := fmt.Sprintf(`
		SELECT EXTRACT(MONTH FROM date)::int AS month, COALESCE(SUM(%s), 0)
		FROM kpi_records
		WHERE date >= $1 AND date < $2`, metric)
	if employeeID != "" {
		args = append(args, employeeID)
		query += ` AND employee_id = $3`
	}
	query += `
		GROUP BY month
		ORDER BY month`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly %s bucket: %w", metric, err)
	}
	defer rows.Close()

	buckets := make([]kpi.MonthBucket, 0, 12)
	for rows.Next() {
		var (
			month int
			value float64
		)
		if err := rows.Scan(&month, &value); err != nil {
			return nil, fmt.Errorf("failed to scan monthly bucket: %w", err)
		}
		buckets = append(buckets, kpi.NewMonthBucket(year, time.Month(month), value))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly buckets: %w", err)
	}

	return buckets, nil
}

// MonthlyTotals implements kpi.RecordRepository.
func (k *kpiRecordRepositoryImpl) MonthlyTotals(ctx context.Context, year, month int) (map[string]kpi.Totals, error) {
	q := GetQuerier(ctx, k.db)

	aggregates := make([]string, 0, len(kpi.Metrics))
	for _, m := range kpi.Metrics {
		fn := "SUM"
		if m.IsPercentage() {
			fn = "MAX"
		}
		aggregates = append(aggregates, fmt.Sprintf("COALESCE(%s(%s), 0)", fn, m))
	}
	query := fmt.Sprintf(`
		SELECT employee_id::text, %s
		FROM kpi_records
		WHERE date >= $1 AND date < $2
		GROUP BY employee_id`, strings.Join(aggregates, ", "))

	from, to := dateRange(year, month)
	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly kpi totals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]kpi.Totals)
	for rows.Next() {
		var employeeID string
		values := make([]float64, len(kpi.Metrics))
		dest := make([]any, 0, len(kpi.Metrics)+1)
		dest = append(dest, &employeeID)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan monthly kpi totals: %w", err)
		}

		totals := kpi.NewTotals()
		for i, m := range kpi.Metrics {
			totals[m] = values[i]
		}
		out[employeeID] = totals
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly kpi totals: %w", err)
	}

	return out, nil
}
