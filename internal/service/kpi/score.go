package kpi

import (
	"math"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
)

// Score returns the weighted overall score (0-100) and the uncapped
// achievement percentage of every metric. A zero target counts as 1.
func Score(totals, targets kpi.Totals, cfg kpi.TargetConfig) (int, map[kpi.Metric]float64) {
	pct := make(map[kpi.Metric]float64, len(kpi.Metrics))
	var overall float64
	for _, t := range cfg.Targets {
		target := targets[t.Metric]
		if target <= 0 {
			target = 1
		}
		ratio := totals[t.Metric] / target
		pct[t.Metric] = ratio * 100
		overall += math.Min(ratio, 1) * t.Weight
	}
	return int(math.Round(overall)), pct
}

func buildRow(id, name, email string, totals, targets kpi.Totals, cfg kpi.TargetConfig) kpi.ScoreRow {
	overall, pct := Score(totals, targets, cfg)

	onTrack := make(map[kpi.Metric]bool, len(pct))
	for m, p := range pct {
		onTrack[m] = math.Min(p, 100) >= kpi.OnTrackThreshold
	}

	return kpi.ScoreRow{
		EmployeeID:   id,
		Name:         name,
		Email:        email,
		Totals:       clone(totals),
		Targets:      clone(targets),
		Percentages:  pct,
		OnTrack:      onTrack,
		OverallScore: overall,
		Band:         kpi.BandFor(overall),
	}
}

func clone(t kpi.Totals) kpi.Totals {
	out := make(kpi.Totals, len(t))
	for m, v := range t {
		out[m] = v
	}
	return out
}
