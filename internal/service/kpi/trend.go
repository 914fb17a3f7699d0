package kpi

import (
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
)

// BucketMonthly sums metric per month of year, skipping months without records.
func BucketMonthly(records []kpi.Record, metric kpi.Metric, year int, employeeID string) []kpi.MonthBucket {
	sums := make(map[time.Month]float64)
	for _, r := range records {
		if r.Date.Year() != year || (employeeID != "" && r.EmployeeID != employeeID) {
			continue
		}
		sums[r.Date.Month()] += r.Value(metric)
	}

	months := make([]time.Month, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })

	out := make([]kpi.MonthBucket, 0, len(months))
	for _, m := range months {
		out = append(out, kpi.NewMonthBucket(year, m, sums[m]))
	}
	return out
}

// BuildTeamTrend builds the team series of metric from January through `through`.
// Months without records are zero. Count metrics are summed per month; percentage
// metrics are averaged over the month's records and rounded.
func BuildTeamTrend(records []kpi.Record, metric kpi.Metric, year int, through time.Month) kpi.TeamTrend {
	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[time.Month]*bucket)
	for _, r := range records {
		if r.Date.Year() != year {
			continue
		}
		b, ok := buckets[r.Date.Month()]
		if !ok {
			b = &bucket{}
			buckets[r.Date.Month()] = b
		}
		b.sum += r.Value(metric)
		b.count++
	}

	trend := kpi.TeamTrend{Metric: metric, Year: year, Points: []kpi.TrendPoint{}}
	var sum float64
	for m := time.January; m <= through; m++ {
		month := kpi.NewMonthBucket(year, m, 0)
		p := kpi.TrendPoint{MonthKey: month.MonthKey, Label: month.Label}
		if b, ok := buckets[m]; ok {
			p.RecordCount = b.count
			p.Value = b.sum
			if metric.IsPercentage() {
				p.Value = math.Round(b.sum / float64(b.count))
			}
		}
		sum += p.Value
		trend.Points = append(trend.Points, p)
	}
	if len(trend.Points) == 0 {
		return trend
	}

	trend.Average = sum / float64(len(trend.Points))
	trend.Total = sum
	if metric.IsPercentage() {
		trend.Total = math.Round(trend.Average)
	}
	for i := range trend.Points {
		switch {
		case trend.Points[i].Value > trend.Average:
			trend.Points[i].Position = kpi.TrendAbove
		case trend.Points[i].Value < trend.Average:
			trend.Points[i].Position = kpi.TrendBelow
		default:
			trend.Points[i].Position = kpi.TrendAt
		}
	}
	return trend
}

// TrendThrough is the last month a trend for year should cover as of now.
func TrendThrough(year int, now time.Time) time.Month {
	switch {
	case year < now.Year():
		return time.December
	case year > now.Year():
		return 0
	}
	return now.Month()
}

// WeeksInData lists the distinct ISO weeks of records in ascending order,
// or weeks 1 through 5 when there are none.
func WeeksInData(records []kpi.Record) []int {
	seen := make(map[int]bool)
	for _, r := range records {
		seen[ISOWeek(r.Date)] = true
	}
	if len(seen) == 0 {
		return []int{1, 2, 3, 4, 5}
	}
	weeks := make([]int, 0, len(seen))
	for w := range seen {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}
