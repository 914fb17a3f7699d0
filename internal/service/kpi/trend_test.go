package kpi

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trendRecords() []kpi.Record {
	return []kpi.Record{
		{EmployeeID: alice.ID, Date: date(2025, time.January, 6), Calls: 100, ProductKnowledge: 40},
		{EmployeeID: bob.ID, Date: date(2025, time.January, 7), Calls: 200, ProductKnowledge: 71},
		{EmployeeID: alice.ID, Date: date(2025, time.March, 3), Calls: 60, ProductKnowledge: 90},
		{EmployeeID: alice.ID, Date: date(2024, time.December, 30), Calls: 999},
	}
}

func TestBuildTeamTrend_CountMetric(t *testing.T) {
	trend := BuildTeamTrend(trendRecords(), kpi.MetricCalls, 2025, time.March)

	require.Len(t, trend.Points, 3)
	assert.Equal(t, "2025-01", trend.Points[0].MonthKey)
	assert.Equal(t, "Jan 2025", trend.Points[0].Label)
	assert.Equal(t, 300.0, trend.Points[0].Value)
	assert.Equal(t, 2, trend.Points[0].RecordCount)
	assert.Equal(t, 0.0, trend.Points[1].Value)
	assert.Equal(t, 0, trend.Points[1].RecordCount)
	assert.Equal(t, 60.0, trend.Points[2].Value)

	assert.Equal(t, 120.0, trend.Average)
	assert.Equal(t, 360.0, trend.Total)
	assert.Equal(t, kpi.TrendAbove, trend.Points[0].Position)
	assert.Equal(t, kpi.TrendBelow, trend.Points[1].Position)
	assert.Equal(t, kpi.TrendBelow, trend.Points[2].Position)
}

func TestBuildTeamTrend_PercentageMetricAveragesRecords(t *testing.T) {
	trend := BuildTeamTrend(trendRecords(), kpi.MetricProductKnowledge, 2025, time.March)

	require.Len(t, trend.Points, 3)
	// (40 + 71) / 2 rounded
	assert.Equal(t, 56.0, trend.Points[0].Value)
	assert.Equal(t, 0.0, trend.Points[1].Value)
	assert.Equal(t, 90.0, trend.Points[2].Value)

	assert.InDelta(t, 48.666, trend.Average, 0.001)
	assert.Equal(t, 49.0, trend.Total)
	assert.Equal(t, kpi.TrendAbove, trend.Points[0].Position)
	assert.Equal(t, kpi.TrendBelow, trend.Points[1].Position)
	assert.Equal(t, kpi.TrendAbove, trend.Points[2].Position)
}

func TestBuildTeamTrend_FlatSeriesIsAtAverage(t *testing.T) {
	records := []kpi.Record{
		{EmployeeID: alice.ID, Date: date(2025, time.January, 6), Calls: 10},
		{EmployeeID: alice.ID, Date: date(2025, time.February, 3), Calls: 10},
	}

	trend := BuildTeamTrend(records, kpi.MetricCalls, 2025, time.February)

	for _, p := range trend.Points {
		assert.Equal(t, kpi.TrendAt, p.Position)
	}
}

func TestBuildTeamTrend_FutureYearIsEmpty(t *testing.T) {
	trend := BuildTeamTrend(trendRecords(), kpi.MetricCalls, 2030, 0)

	assert.Empty(t, trend.Points)
	assert.NotNil(t, trend.Points)
	assert.Equal(t, 0.0, trend.Average)
	assert.Equal(t, 0.0, trend.Total)
}

func TestTrendThrough(t *testing.T) {
	now := time.Date(2025, time.May, 14, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, time.December, TrendThrough(2024, now))
	assert.Equal(t, time.May, TrendThrough(2025, now))
	assert.Equal(t, time.Month(0), TrendThrough(2026, now))
}

func TestBucketMonthly(t *testing.T) {
	buckets := BucketMonthly(trendRecords(), kpi.MetricCalls, 2025, "")

	assert.Equal(t, []kpi.MonthBucket{
		{MonthKey: "2025-01", Label: "Jan 2025", Value: 300},
		{MonthKey: "2025-03", Label: "Mar 2025", Value: 60},
	}, buckets)
}

func TestBucketMonthly_SingleEmployee(t *testing.T) {
	buckets := BucketMonthly(trendRecords(), kpi.MetricCalls, 2025, bob.ID)

	require.Len(t, buckets, 1)
	assert.Equal(t, 200.0, buckets[0].Value)
}

func TestBucketMonthly_NoRecords(t *testing.T) {
	buckets := BucketMonthly(nil, kpi.MetricCalls, 2025, "")

	assert.Empty(t, buckets)
}

func TestWeeksInData(t *testing.T) {
	assert.Equal(t, []int{1, 2, 10}, WeeksInData(trendRecords()))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, WeeksInData(nil))
}
