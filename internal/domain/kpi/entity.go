package kpi

import (
	"time"
)

// Metric identifies one of the eight tracked KPIs.
type Metric string

const (
	MetricMargin           Metric = "margin"
	MetricCalls            Metric = "calls"
	MetricLeadsGenerated   Metric = "leads_generated"
	MetricSoloClosing      Metric = "solo_closing"
	MetricOutHouseMeetings Metric = "out_house_meetings"
	MetricInHouseMeetings  Metric = "in_house_meetings"
	MetricProductKnowledge Metric = "product_knowledge"
	MetricSMD              Metric = "smd"
)

// Metrics lists every KPI in display order.
var Metrics = []Metric{
	MetricMargin,
	MetricCalls,
	MetricLeadsGenerated,
	MetricSoloClosing,
	MetricOutHouseMeetings,
	MetricInHouseMeetings,
	MetricProductKnowledge,
	MetricSMD,
}

// IsPercentage reports whether the metric is a 0-100 monthly snapshot
// aggregated by maximum instead of summed.
func (m Metric) IsPercentage() bool {
	return m == MetricProductKnowledge || m == MetricSMD
}

func (m Metric) IsValid() bool {
	for _, known := range Metrics {
		if m == known {
			return true
		}
	}
	return false
}

// Record is one employee's KPI entry for a single calendar day.
type Record struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employee_id"`
	Date             time.Time `json:"date"`
	Margin           float64   `json:"margin"`
	Calls            float64   `json:"calls"`
	LeadsGenerated   float64   `json:"leads_generated"`
	SoloClosing      float64   `json:"solo_closing"`
	OutHouseMeetings float64   `json:"out_house_meetings"`
	InHouseMeetings  float64   `json:"in_house_meetings"`
	ProductKnowledge float64   `json:"product_knowledge"`
	SMD              float64   `json:"smd"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Value returns the record's value for metric m.
func (r Record) Value(m Metric) float64 {
	switch m {
	case MetricMargin:
		return r.Margin
	case MetricCalls:
		return r.Calls
	case MetricLeadsGenerated:
		return r.LeadsGenerated
	case MetricSoloClosing:
		return r.SoloClosing
	case MetricOutHouseMeetings:
		return r.OutHouseMeetings
	case MetricInHouseMeetings:
		return r.InHouseMeetings
	case MetricProductKnowledge:
		return r.ProductKnowledge
	case MetricSMD:
		return r.SMD
	}
	return 0
}

// Totals holds one aggregated value per metric.
type Totals map[Metric]float64

// NewTotals returns Totals with every metric present and zeroed.
func NewTotals() Totals {
	t := make(Totals, len(Metrics))
	for _, m := range Metrics {
		t[m] = 0
	}
	return t
}

// ViewType is the granularity of a dashboard period.
type ViewType string

const (
	ViewMonthly ViewType = "Monthly"
	ViewWeekly  ViewType = "Weekly"
	ViewDaily   ViewType = "Daily"
)

// Scope selects whether targets are projected for one employee or the whole team.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeAll    Scope = "all"
)

// PeriodSelector picks the records that participate in a view.
// Week is only read for ViewWeekly and Day only for ViewDaily.
// An empty EmployeeID means every employee.
type PeriodSelector struct {
	ViewType   ViewType
	Year       int
	Month      time.Month
	Week       int
	Day        time.Time
	EmployeeID string
}

// Scope reports the employee scope implied by the selector.
func (s PeriodSelector) Scope() Scope {
	if s.EmployeeID != "" {
		return ScopeSingle
	}
	return ScopeAll
}

// Band is the qualitative label attached to an overall score.
type Band string

const (
	BandExcellent        Band = "excellent"
	BandGood             Band = "good"
	BandAverage          Band = "average"
	BandNeedsImprovement Band = "needs_improvement"
)

// BandFor maps an overall score to its performance band.
func BandFor(score int) Band {
	switch {
	case score >= 70:
		return BandExcellent
	case score >= 50:
		return BandGood
	case score >= 30:
		return BandAverage
	default:
		return BandNeedsImprovement
	}
}

// OnTrackThreshold is the capped achievement percentage at which a metric is on track.
const OnTrackThreshold = 45.0

// ScoreRow is the computed, never persisted, scorecard of one employee or of the team.
type ScoreRow struct {
	EmployeeID   string             `json:"employee_id,omitempty"`
	Name         string             `json:"name"`
	Email        string             `json:"email,omitempty"`
	Totals       Totals             `json:"totals"`
	Targets      Totals             `json:"targets"`
	Percentages  map[Metric]float64 `json:"percentages"`
	OnTrack      map[Metric]bool    `json:"on_track"`
	OverallScore int                `json:"overall_score"`
	Band         Band               `json:"band"`
}

// PeriodContext describes the working-day window a dashboard was computed for.
type PeriodContext struct {
	PeriodWorkingDays int     `json:"period_working_days"`
	MonthWorkingDays  int     `json:"month_working_days"`
	Ratio             float64 `json:"ratio"`
}

// Dashboard is the output of one pipeline run.
type Dashboard struct {
	Rows          []ScoreRow    `json:"employees"`
	Team          ScoreRow      `json:"team"`
	Period        PeriodContext `json:"period"`
	TargetVersion string        `json:"target_version"`
	// OrphanEmployeeIDs lists employee ids found on records but not in the employee list.
	OrphanEmployeeIDs []string `json:"-"`
}

// MonthBucket is one month of a metric summed across records.
type MonthBucket struct {
	MonthKey string  `json:"month_key"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
}

// NewMonthBucket labels value with its month key ("2025-02") and display label ("Feb 2025").
func NewMonthBucket(year int, month time.Month, value float64) MonthBucket {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return MonthBucket{
		MonthKey: first.Format(MonthLayout),
		Label:    first.Format("Jan 2006"),
		Value:    value,
	}
}

// TrendPosition compares a month's value against the trend average.
type TrendPosition string

const (
	TrendAbove TrendPosition = "above"
	TrendBelow TrendPosition = "below"
	TrendAt    TrendPosition = "at"
)

type TrendPoint struct {
	MonthKey    string        `json:"month_key"`
	Label       string        `json:"label"`
	Value       float64       `json:"value"`
	RecordCount int           `json:"record_count"`
	Position    TrendPosition `json:"position"`
}

// TeamTrend is the month-by-month team series of one metric for a year.
type TeamTrend struct {
	Metric  Metric       `json:"metric"`
	Year    int          `json:"year"`
	Points  []TrendPoint `json:"points"`
	Average float64      `json:"average"`
	Total   float64      `json:"total"`
}

// EventRecordChanged is the stream event name sent after a record upsert.
const EventRecordChanged = "kpi_record_changed"

// RecordChange is the payload of EventRecordChanged. Clients refetch the affected period.
type RecordChange struct {
	RecordID   string `json:"record_id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}
