package kpi

import (
	"fmt"
	"math"
)

// Target is the monthly goal and scoring weight of one metric.
// Weight is a percentage; the weights of a TargetConfig add up to 100.
type Target struct {
	Metric Metric  `json:"metric"`
	Target float64 `json:"target"`
	Weight float64 `json:"weight"`
}

// TargetConfig is a versioned set of targets plus the team projection offset.
type TargetConfig struct {
	Version string   `json:"version"`
	Targets []Target `json:"targets"`
	// TeamTargetOffset is subtracted from the employee count when projecting
	// targets across the whole team.
	TeamTargetOffset int `json:"team_target_offset"`
}

const DefaultTargetVersion = "2025-01"

// DefaultTargetConfig returns the reference monthly targets and weights.
func DefaultTargetConfig() TargetConfig {
	return TargetConfig{
		Version: DefaultTargetVersion,
		Targets: []Target{
			{Metric: MetricMargin, Target: 3000000, Weight: 30},
			{Metric: MetricCalls, Target: 1540, Weight: 20},
			{Metric: MetricLeadsGenerated, Target: 1100, Weight: 5},
			{Metric: MetricSoloClosing, Target: 1, Weight: 10},
			{Metric: MetricOutHouseMeetings, Target: 44, Weight: 10},
			{Metric: MetricInHouseMeetings, Target: 22, Weight: 15},
			{Metric: MetricProductKnowledge, Target: 100, Weight: 5},
			{Metric: MetricSMD, Target: 100, Weight: 5},
		},
	}
}

// Validate checks that every metric appears exactly once and weights sum to 100.
func (c TargetConfig) Validate() error {
	if len(c.Targets) != len(Metrics) {
		return fmt.Errorf("%w: expected %d targets, got %d", ErrInvalidTargetConfig, len(Metrics), len(c.Targets))
	}
	seen := make(map[Metric]bool, len(c.Targets))
	var weights float64
	for _, t := range c.Targets {
		if !t.Metric.IsValid() {
			return fmt.Errorf("%w: unknown metric %q", ErrInvalidTargetConfig, t.Metric)
		}
		if seen[t.Metric] {
			return fmt.Errorf("%w: duplicate metric %q", ErrInvalidTargetConfig, t.Metric)
		}
		if t.Target < 0 || t.Weight < 0 {
			return fmt.Errorf("%w: negative target or weight for %q", ErrInvalidTargetConfig, t.Metric)
		}
		seen[t.Metric] = true
		weights += t.Weight
	}
	if math.Abs(weights-100) > 1e-9 {
		return fmt.Errorf("%w: weights sum to %v, want 100", ErrInvalidTargetConfig, weights)
	}
	if c.TeamTargetOffset < 0 {
		return fmt.Errorf("%w: team target offset must not be negative", ErrInvalidTargetConfig)
	}
	return nil
}

// Weight returns the configured weight of m, or 0 when m is not configured.
func (c TargetConfig) Weight(m Metric) float64 {
	for _, t := range c.Targets {
		if t.Metric == m {
			return t.Weight
		}
	}
	return 0
}
