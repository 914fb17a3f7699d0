package kpi

import (
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
)

const teamRowName = "All Employees"

// ComputeDashboard filters, aggregates and scores records for one selector.
// Every employee in scope gets a row, even without records.
func ComputeDashboard(records []kpi.Record, employees []employee.Employee, sel kpi.PeriodSelector, cfg kpi.TargetConfig) kpi.Dashboard {
	agg := Aggregate(FilterPeriod(records, sel), FilterMonth(records, sel), scopedEmployees(employees, sel))
	return ScoreAggregation(agg, employees, sel, cfg)
}

// ScoreAggregation turns an Aggregation into scored rows plus the team row.
// Per-employee rows use single-employee targets; the team row uses the
// selector's scope.
func ScoreAggregation(agg Aggregation, employees []employee.Employee, sel kpi.PeriodSelector, cfg kpi.TargetConfig) kpi.Dashboard {
	periodDays, monthDays := PeriodWorkingDays(sel)
	single := Prorate(cfg, periodDays, monthDays, 1, kpi.ScopeSingle)

	scoped := scopedEmployees(employees, sel)
	rows := make([]kpi.ScoreRow, 0, len(scoped))
	for _, e := range scoped {
		totals, ok := agg.ByEmployee[e.ID]
		if !ok {
			totals = kpi.NewTotals()
		}
		rows = append(rows, buildRow(e.ID, e.Name, e.Email, totals, single, cfg))
	}

	teamTargets := Prorate(cfg, periodDays, monthDays, len(employees), sel.Scope())
	name := teamRowName
	if sel.Scope() == kpi.ScopeSingle {
		// unknown employees have no row to borrow a name from
		name = sel.EmployeeID
		if len(rows) == 1 {
			name = rows[0].Name
		}
	}
	team := buildRow(sel.EmployeeID, name, "", agg.Team, teamTargets, cfg)

	return kpi.Dashboard{
		Rows: rows,
		Team: team,
		Period: kpi.PeriodContext{
			PeriodWorkingDays: periodDays,
			MonthWorkingDays:  monthDays,
			Ratio:             WorkingDayRatio(periodDays, monthDays),
		},
		TargetVersion:     cfg.Version,
		OrphanEmployeeIDs: agg.Orphans,
	}
}

// ComputeRanking orders dashboard rows; see Rank.
func ComputeRanking(rows []kpi.ScoreRow, sortBy string, dir kpi.SortDirection, filter *MinPctFilter) []kpi.ScoreRow {
	return Rank(rows, sortBy, dir, filter)
}

func scopedEmployees(employees []employee.Employee, sel kpi.PeriodSelector) []employee.Employee {
	if sel.EmployeeID == "" {
		return employees
	}
	for _, e := range employees {
		if e.ID == sel.EmployeeID {
			return []employee.Employee{e}
		}
	}
	return nil
}
