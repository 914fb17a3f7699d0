package kpi

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/validator"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

type UpsertRecordRequest struct {
	EmployeeID       string  `json:"employee_id"`
	Date             string  `json:"date"`
	Margin           float64 `json:"margin"`
	Calls            float64 `json:"calls"`
	LeadsGenerated   float64 `json:"leads_generated"`
	SoloClosing      float64 `json:"solo_closing"`
	OutHouseMeetings float64 `json:"out_house_meetings"`
	InHouseMeetings  float64 `json:"in_house_meetings"`
	ProductKnowledge float64 `json:"product_knowledge"`
	SMD              float64 `json:"smd"`
}

func (r *UpsertRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	counts := map[Metric]float64{
		MetricMargin:           r.Margin,
		MetricCalls:            r.Calls,
		MetricLeadsGenerated:   r.LeadsGenerated,
		MetricSoloClosing:      r.SoloClosing,
		MetricOutHouseMeetings: r.OutHouseMeetings,
		MetricInHouseMeetings:  r.InHouseMeetings,
	}
	for _, m := range Metrics {
		v, ok := counts[m]
		if ok && v < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   string(m),
				Message: string(m) + " must not be negative",
			})
		}
	}

	if !validator.IsPercentage(r.ProductKnowledge) {
		errs = append(errs, validator.ValidationError{
			Field:   string(MetricProductKnowledge),
			Message: "product_knowledge must be between 0 and 100",
		})
	}
	if !validator.IsPercentage(r.SMD) {
		errs = append(errs, validator.ValidationError{
			Field:   string(MetricSMD),
			Message: "smd must be between 0 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Record converts a validated request into a Record without id or timestamps.
func (r *UpsertRecordRequest) Record() Record {
	date, _ := time.Parse(DateLayout, r.Date)
	return Record{
		EmployeeID:       r.EmployeeID,
		Date:             date,
		Margin:           r.Margin,
		Calls:            r.Calls,
		LeadsGenerated:   r.LeadsGenerated,
		SoloClosing:      r.SoloClosing,
		OutHouseMeetings: r.OutHouseMeetings,
		InHouseMeetings:  r.InHouseMeetings,
		ProductKnowledge: r.ProductKnowledge,
		SMD:              r.SMD,
	}
}

type ListRecordsRequest struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func (r *ListRecordsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if r.Year != 0 && !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}
	if r.Month != 0 {
		if !validator.IsValidMonth(r.Month) {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be between 1 and 12",
			})
		} else if r.Year == 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "year",
				Message: "year is required when month is set",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DashboardRequest carries the period selector as received from the client.
type DashboardRequest struct {
	ViewType   string `json:"view_type"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Week       int    `json:"week"`
	Day        string `json:"day"`
	EmployeeID string `json:"employee_id"`
}

func (r *DashboardRequest) Validate() error {
	var errs validator.ValidationErrors

	viewTypes := []string{string(ViewMonthly), string(ViewWeekly), string(ViewDaily)}
	if !validator.IsInSlice(r.ViewType, viewTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "view_type",
			Message: "view_type must be one of: " + strings.Join(viewTypes, ", "),
		})
	}

	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	monthRequired := ViewType(r.ViewType) != ViewDaily
	if (monthRequired || r.Month != 0) && !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if ViewType(r.ViewType) == ViewWeekly {
		if r.Week < 1 || r.Week > 53 {
			errs = append(errs, validator.ValidationError{
				Field:   "week",
				Message: "week must be between 1 and 53",
			})
		} else if validator.IsValidYear(r.Year) && validator.IsValidMonth(r.Month) && !weekTouchesMonth(r.Year, time.Month(r.Month), r.Week) {
			errs = append(errs, validator.ValidationError{
				Field:   "week",
				Message: "week does not overlap the selected month",
			})
		}
	}

	if ViewType(r.ViewType) == ViewDaily {
		if validator.IsEmpty(r.Day) {
			errs = append(errs, validator.ValidationError{
				Field:   "day",
				Message: "day is required for Daily view",
			})
		} else if day, ok := validator.IsValidDate(r.Day); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "day",
				Message: "day must be in YYYY-MM-DD format",
			})
		} else if day.Year() != r.Year {
			errs = append(errs, validator.ValidationError{
				Field:   "day",
				Message: "day must fall within the selected year",
			})
		}
	}

	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// weekTouchesMonth reports whether any day of (year, month) has ISO week number week.
func weekTouchesMonth(year int, month time.Month, week int) bool {
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if _, w := d.ISOWeek(); w == week {
			return true
		}
	}
	return false
}

// Selector converts a validated request into a PeriodSelector.
// A Daily request without a month takes the month of its day.
func (r *DashboardRequest) Selector() PeriodSelector {
	sel := PeriodSelector{
		ViewType:   ViewType(r.ViewType),
		Year:       r.Year,
		Month:      time.Month(r.Month),
		Week:       r.Week,
		EmployeeID: r.EmployeeID,
	}
	if sel.ViewType == ViewDaily {
		sel.Day, _ = time.Parse(DateLayout, r.Day)
		if sel.Month == 0 {
			sel.Month = sel.Day.Month()
		}
	}
	return sel
}

// SortDirection orders ranking output.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	SortByOverall = "overall"
	SortByName    = "name"

	FilterAll = "all"

	DefaultFilterThreshold = 50.0
)

type RankingRequest struct {
	DashboardRequest
	SortBy    string   `json:"sort_by"`
	Order     string   `json:"order"`
	Filter    string   `json:"filter"`
	Threshold *float64 `json:"threshold,omitempty"`
}

func (r *RankingRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := r.DashboardRequest.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	if r.SortBy != "" && r.SortBy != SortByOverall && r.SortBy != SortByName && !Metric(r.SortBy).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "sort_by must be overall, name, or a kpi metric",
		})
	}
	if r.Order != "" && r.Order != string(SortAsc) && r.Order != string(SortDesc) {
		errs = append(errs, validator.ValidationError{
			Field:   "order",
			Message: "order must be asc or desc",
		})
	}
	if r.Filter != "" && r.Filter != FilterAll && r.Filter != SortByOverall && !Metric(r.Filter).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "filter",
			Message: "filter must be all, overall, or a kpi metric",
		})
	}
	if r.Threshold != nil && !validator.IsPercentage(*r.Threshold) {
		errs = append(errs, validator.ValidationError{
			Field:   "threshold",
			Message: "threshold must be between 0 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlyBucketRequest struct {
	Metric     string `json:"metric"`
	Year       int    `json:"year"`
	EmployeeID string `json:"employee_id"`
}

func (r *MonthlyBucketRequest) Validate() error {
	var errs validator.ValidationErrors
	if !Metric(r.Metric).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "metric",
			Message: "metric must be a kpi metric",
		})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}
	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TeamTrendRequest struct {
	Metric string `json:"metric"`
	Year   int    `json:"year"`
}

func (r *TeamTrendRequest) Validate() error {
	var errs validator.ValidationErrors
	if !Metric(r.Metric).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "metric",
			Message: "metric must be a kpi metric",
		})
	}
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RecordResponse is a Record with its date rendered as YYYY-MM-DD.
type RecordResponse struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employee_id"`
	Date             string    `json:"date"`
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

func NewRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		Date:             r.Date.Format(DateLayout),
		Margin:           r.Margin,
		Calls:            r.Calls,
		LeadsGenerated:   r.LeadsGenerated,
		SoloClosing:      r.SoloClosing,
		OutHouseMeetings: r.OutHouseMeetings,
		InHouseMeetings:  r.InHouseMeetings,
		ProductKnowledge: r.ProductKnowledge,
		SMD:              r.SMD,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type DashboardResponse struct {
	ViewType   ViewType `json:"view_type"`
	Year       int      `json:"year"`
	Month      int      `json:"month"`
	Week       int      `json:"week,omitempty"`
	Day        string   `json:"day,omitempty"`
	EmployeeID string   `json:"employee_id,omitempty"`
	Dashboard
}

type RankingResponse struct {
	SortBy    string        `json:"sort_by"`
	Order     SortDirection `json:"order"`
	Filter    string        `json:"filter"`
	Threshold float64       `json:"threshold"`
	Rows      []ScoreRow    `json:"rows"`
}

type WeekOptionsRequest struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	EmployeeID string `json:"employee_id"`
}

func (r *WeekOptionsRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
