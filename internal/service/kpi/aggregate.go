package kpi

import (
	"sort"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
)

// Aggregation is the reduced form of one period's records.
type Aggregation struct {
	// ByEmployee has an entry for every known employee, zeroed when they have no records.
	ByEmployee map[string]kpi.Totals
	// Team sums count metrics over every record and percentage maxima over every
	// employee id, including ids missing from the employee list.
	Team kpi.Totals
	// Orphans are employee ids seen on records but absent from the employee list, sorted.
	Orphans []string
}

// Aggregate sums count metrics from period records and takes the per-employee
// maximum of percentage metrics from the month's records.
func Aggregate(period, monthly []kpi.Record, employees []employee.Employee) Aggregation {
	byEmployee := make(map[string]kpi.Totals, len(employees))
	for _, e := range employees {
		byEmployee[e.ID] = kpi.NewTotals()
	}
	team := kpi.NewTotals()
	orphans := make(map[string]bool)

	for _, r := range period {
		totals, known := byEmployee[r.EmployeeID]
		if !known {
			orphans[r.EmployeeID] = true
		}
		for _, m := range kpi.Metrics {
			if m.IsPercentage() {
				continue
			}
			v := r.Value(m)
			team[m] += v
			if known {
				totals[m] += v
			}
		}
	}

	maxima := make(map[string]kpi.Totals)
	for _, r := range monthly {
		mx, ok := maxima[r.EmployeeID]
		if !ok {
			mx = kpi.Totals{}
			maxima[r.EmployeeID] = mx
		}
		for _, m := range kpi.Metrics {
			if m.IsPercentage() && r.Value(m) > mx[m] {
				mx[m] = r.Value(m)
			}
		}
	}

	for _, id := range sortedKeys(maxima) {
		totals, known := byEmployee[id]
		if !known {
			orphans[id] = true
		}
		for m, v := range maxima[id] {
			team[m] += v
			if known {
				totals[m] = v
			}
		}
	}

	return Aggregation{
		ByEmployee: byEmployee,
		Team:       team,
		Orphans:    sortedKeys(orphans),
	}
}

// AggregateTotals builds an Aggregation from totals already reduced per employee,
// as returned by a store-side monthly rollup.
func AggregateTotals(perEmployee map[string]kpi.Totals, employees []employee.Employee) Aggregation {
	byEmployee := make(map[string]kpi.Totals, len(employees))
	for _, e := range employees {
		byEmployee[e.ID] = kpi.NewTotals()
	}
	team := kpi.NewTotals()
	orphans := make([]string, 0)

	for _, id := range sortedKeys(perEmployee) {
		totals, known := byEmployee[id]
		if !known {
			orphans = append(orphans, id)
		}
		for m, v := range perEmployee[id] {
			team[m] += v
			if known {
				totals[m] = v
			}
		}
	}

	return Aggregation{
		ByEmployee: byEmployee,
		Team:       team,
		Orphans:    orphans,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
