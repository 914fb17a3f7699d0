package kpi

import (
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
)

// FilterPeriod keeps the records that belong to the selector's period and employee scope.
func FilterPeriod(records []kpi.Record, sel kpi.PeriodSelector) []kpi.Record {
	out := make([]kpi.Record, 0, len(records))
	for _, r := range records {
		if sel.EmployeeID != "" && r.EmployeeID != sel.EmployeeID {
			continue
		}
		if inPeriod(r, sel) {
			out = append(out, r)
		}
	}
	return out
}

// FilterMonth keeps the records of the selector's month regardless of view type.
// Percentage metrics are always read from this set.
func FilterMonth(records []kpi.Record, sel kpi.PeriodSelector) []kpi.Record {
	monthly := sel
	monthly.ViewType = kpi.ViewMonthly
	return FilterPeriod(records, monthly)
}

func inPeriod(r kpi.Record, sel kpi.PeriodSelector) bool {
	switch sel.ViewType {
	case kpi.ViewDaily:
		y, m, d := r.Date.Date()
		sy, sm, sd := sel.Day.Date()
		return y == sel.Year && y == sy && m == sm && d == sd
	case kpi.ViewWeekly:
		return r.Date.Year() == sel.Year && r.Date.Month() == sel.Month && ISOWeek(r.Date) == sel.Week
	default:
		return r.Date.Year() == sel.Year && r.Date.Month() == sel.Month
	}
}
