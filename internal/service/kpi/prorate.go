package kpi

import (
	"math"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
)

// WorkingDayRatio is periodDays/monthDays, or 1 when the month has no working days.
func WorkingDayRatio(periodDays, monthDays int) float64 {
	if monthDays == 0 {
		return 1
	}
	return float64(periodDays) / float64(monthDays)
}

// ScopeMultiplier is 1 for a single employee. For the whole team it is the
// employee count minus the configured offset, never below 1.
func ScopeMultiplier(cfg kpi.TargetConfig, employeeCount int, scope kpi.Scope) float64 {
	if scope != kpi.ScopeAll {
		return 1
	}
	n := employeeCount - cfg.TeamTargetOffset
	if n < 1 {
		return 1
	}
	return float64(n)
}

// Prorate scales monthly targets to the selected period. Percentage metrics
// are only scaled by the employee scope.
func Prorate(cfg kpi.TargetConfig, periodDays, monthDays, employeeCount int, scope kpi.Scope) kpi.Totals {
	ratio := WorkingDayRatio(periodDays, monthDays)
	scopeMul := ScopeMultiplier(cfg, employeeCount, scope)

	out := kpi.NewTotals()
	for _, t := range cfg.Targets {
		mul := ratio * scopeMul
		if t.Metric.IsPercentage() {
			mul = scopeMul
		}
		out[t.Metric] = math.Round(t.Target * mul)
	}
	return out
}
