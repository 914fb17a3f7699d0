package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	andiID  = "0192d3a4-0000-7000-8000-000000000001"
	bellaID = "0192d3a4-0000-7000-8000-000000000002"
)

func day(s string) time.Time {
	d, _ := time.Parse(kpi.DateLayout, s)
	return d
}

func TestKPIRecordRepository_UpsertKeepsID(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewKPIRecordRepository(db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, kpi.Record{EmployeeID: andiID, Date: day("2025-02-03"), Calls: 40})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := repo.Upsert(ctx, kpi.Record{EmployeeID: andiID, Date: day("2025-02-03"), Calls: 55, SMD: 70})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 55.0, second.Calls)
	assert.Equal(t, 70.0, second.SMD)

	all, err := repo.List(ctx, kpi.RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestKPIRecordRepository_ListFilters(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewKPIRecordRepository(db)
	ctx := context.Background()

	for _, r := range []kpi.Record{
		{EmployeeID: andiID, Date: day("2025-01-31"), Calls: 1},
		{EmployeeID: andiID, Date: day("2025-02-03"), Calls: 2},
		{EmployeeID: bellaID, Date: day("2025-02-04"), Calls: 3},
		{EmployeeID: andiID, Date: day("2024-02-05"), Calls: 4},
	} {
		_, err := repo.Upsert(ctx, r)
		require.NoError(t, err)
	}

	feb, err := repo.List(ctx, kpi.RecordFilter{Year: 2025, Month: 2})
	require.NoError(t, err)
	require.Len(t, feb, 2)
	assert.Equal(t, "2025-02-04", feb[0].Date.Format(kpi.DateLayout), "newest first")

	andi2025, err := repo.List(ctx, kpi.RecordFilter{EmployeeID: andiID, Year: 2025})
	require.NoError(t, err)
	assert.Len(t, andi2025, 2)
}

func TestKPIRecordRepository_MonthlyAggregates(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewKPIRecordRepository(db)
	ctx := context.Background()

	for _, r := range []kpi.Record{
		{EmployeeID: andiID, Date: day("2025-02-03"), Calls: 400, ProductKnowledge: 40},
		{EmployeeID: andiID, Date: day("2025-02-10"), Calls: 370, ProductKnowledge: 80},
		{EmployeeID: bellaID, Date: day("2025-03-04"), Calls: 60},
	} {
		_, err := repo.Upsert(ctx, r)
		require.NoError(t, err)
	}

	buckets, err := repo.MonthlyBucket(ctx, kpi.MetricCalls, 2025, "")
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, kpi.MonthBucket{MonthKey: "2025-02", Label: "Feb 2025", Value: 770}, buckets[0])
	assert.Equal(t, 60.0, buckets[1].Value)

	_, err = repo.MonthlyBucket(ctx, kpi.Metric("calls; DROP TABLE kpi_records"), 2025, "")
	assert.ErrorIs(t, err, kpi.ErrInvalidMetric)

	totals, err := repo.MonthlyTotals(ctx, 2025, 2)
	require.NoError(t, err)
	require.Contains(t, totals, andiID)
	assert.Equal(t, 770.0, totals[andiID][kpi.MetricCalls])
	assert.Equal(t, 80.0, totals[andiID][kpi.MetricProductKnowledge])
	assert.NotContains(t, totals, bellaID)
}

func TestEmployeeRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewEmployeeRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, employee.Employee{ID: andiID, Name: "Andi", Email: "andi@example.com"})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = repo.Create(ctx, employee.Employee{ID: bellaID, Name: "Other", Email: "andi@example.com"})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	byEmail, err := repo.GetByEmail(ctx, "ANDI@example.com")
	require.NoError(t, err)
	assert.Equal(t, andiID, byEmail.ID)

	name := "Andi Pratama"
	updated, err := repo.Update(ctx, employee.UpdateEmployeeRequest{ID: andiID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Andi Pratama", updated.Name)

	_, err = repo.GetByID(ctx, bellaID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	found, err := repo.List(ctx, employee.EmployeeFilter{Search: "prat"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestAdminEmailRepository_AddIsIdempotent(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewAdminEmailRepository(db)
	ctx := context.Background()

	_, err := repo.Add(ctx, "boss@example.com")
	require.NoError(t, err)
	_, err = repo.Add(ctx, "boss@example.com")
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	ok, err := repo.Exists(ctx, "boss@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}
