package kpi

import (
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
)

// IsWorkingDay reports whether d falls Monday through Friday.
func IsWorkingDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// WorkingDaysInMonth counts Monday-Friday days in the month.
func WorkingDaysInMonth(year int, month time.Month) int {
	n := 0
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			n++
		}
	}
	return n
}

// ISOWeek returns the ISO-8601 week number of d.
func ISOWeek(d time.Time) int {
	_, week := d.ISOWeek()
	return week
}

// isoWeekMonday returns the Monday starting ISO week `week` of isoYear.
// January 4th always belongs to week 1.
func isoWeekMonday(isoYear, week int) time.Time {
	jan4 := time.Date(isoYear, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, (week-1)*7-offset)
}

// WorkingDaysInWeek counts the working days of ISO week `week` that fall inside
// (year, month). Weeks straddling a year boundary are resolved against the
// neighbouring ISO year when the week does not touch the month otherwise.
// A week number the ISO year does not have yields 0.
func WorkingDaysInWeek(year, week int, month time.Month) int {
	for _, isoYear := range []int{year, year - 1, year + 1} {
		monday := isoWeekMonday(isoYear, week)
		if y, w := monday.ISOWeek(); y != isoYear || w != week {
			continue
		}
		n := 0
		for i := 0; i < 7; i++ {
			d := monday.AddDate(0, 0, i)
			if d.Year() == year && d.Month() == month && IsWorkingDay(d) {
				n++
			}
		}
		if n > 0 {
			return n
		}
	}
	return 0
}

// PeriodWorkingDays returns the working days of the selected period and of its month.
func PeriodWorkingDays(sel kpi.PeriodSelector) (period, month int) {
	month = WorkingDaysInMonth(sel.Year, sel.Month)
	switch sel.ViewType {
	case kpi.ViewWeekly:
		period = WorkingDaysInWeek(sel.Year, sel.Week, sel.Month)
	case kpi.ViewDaily:
		if IsWorkingDay(sel.Day) {
			period = 1
		}
	default:
		period = month
	}
	return period, month
}
