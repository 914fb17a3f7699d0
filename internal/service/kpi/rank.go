package kpi

import (
	"sort"
	"strings"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
)

// MinPctFilter keeps rows whose overall score (Key "overall") or metric
// percentage (Key = metric) is at least Threshold.
type MinPctFilter struct {
	Key       string
	Threshold float64
}

func (f MinPctFilter) keep(row kpi.ScoreRow) bool {
	if f.Key == kpi.SortByOverall {
		return float64(row.OverallScore) >= f.Threshold
	}
	return row.Percentages[kpi.Metric(f.Key)] >= f.Threshold
}

// Rank filters and sorts score rows without touching the input slice.
// sortBy is "overall", "name", or a metric key, in which case rows are ordered
// by raw total. Equal keys fall back to case-insensitive name order.
func Rank(rows []kpi.ScoreRow, sortBy string, dir kpi.SortDirection, filter *MinPctFilter) []kpi.ScoreRow {
	out := make([]kpi.ScoreRow, 0, len(rows))
	for _, row := range rows {
		if filter != nil && !filter.keep(row) {
			continue
		}
		out = append(out, row)
	}

	if sortBy == "" {
		sortBy = kpi.SortByOverall
	}
	if dir == "" {
		dir = kpi.SortDesc
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compareRows(out[i], out[j], sortBy)
		if c == 0 && sortBy != kpi.SortByName {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		}
		if dir == kpi.SortAsc {
			return c < 0
		}
		return c > 0
	})
	return out
}

func compareRows(a, b kpi.ScoreRow, sortBy string) int {
	if sortBy == kpi.SortByName {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}

	var av, bv float64
	if sortBy == kpi.SortByOverall {
		av, bv = float64(a.OverallScore), float64(b.OverallScore)
	} else {
		av, bv = a.Totals[kpi.Metric(sortBy)], b.Totals[kpi.Metric(sortBy)]
	}
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	}
	return 0
}
