package kpi

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/kpi"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWorkingDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.February, 20},
		{2025, time.March, 21},
		{2024, time.February, 21},
		{2025, time.August, 21},
		{2026, time.February, 20},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, WorkingDaysInMonth(c.year, c.month), "%d-%02d", c.year, c.month)
	}
}

func TestIsWorkingDay(t *testing.T) {
	assert.True(t, IsWorkingDay(date(2025, time.March, 3)))   // Monday
	assert.True(t, IsWorkingDay(date(2025, time.March, 7)))   // Friday
	assert.False(t, IsWorkingDay(date(2025, time.March, 8)))  // Saturday
	assert.False(t, IsWorkingDay(date(2025, time.March, 9)))  // Sunday
}

func TestISOWeek(t *testing.T) {
	assert.Equal(t, 10, ISOWeek(date(2025, time.March, 3)))
	assert.Equal(t, 10, ISOWeek(date(2025, time.March, 9)))
	assert.Equal(t, 1, ISOWeek(date(2025, time.December, 29)))
	assert.Equal(t, 53, ISOWeek(date(2021, time.January, 1)))
	assert.Equal(t, 1, ISOWeek(date(2025, time.January, 1)))
}

func TestWorkingDaysInWeek(t *testing.T) {
	cases := []struct {
		name  string
		year  int
		week  int
		month time.Month
		want  int
	}{
		{"week fully inside month", 2025, 10, time.March, 5},
		{"straddling week, earlier month", 2025, 9, time.February, 5},
		{"straddling week, later month holds only weekend", 2025, 9, time.March, 0},
		{"month ends on monday", 2025, 14, time.March, 1},
		{"month starts on tuesday", 2025, 14, time.April, 4},
		{"week 1 starting in previous december", 2025, 1, time.January, 3},
		{"late december in next year's week 1", 2025, 1, time.December, 3},
		{"week 53 spilling into january", 2021, 53, time.January, 1},
		{"week 53 the year does not have", 2025, 53, time.December, 0},
		{"week 53 absent from both neighbouring years", 2026, 53, time.January, 0},
		{"week 53 inside a 53-week year", 2026, 53, time.December, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, WorkingDaysInWeek(c.year, c.week, c.month))
		})
	}
}

func TestWorkingDaysInWeek_NeverExceedsMonth(t *testing.T) {
	for year := 2024; year <= 2026; year++ {
		for month := time.January; month <= time.December; month++ {
			monthDays := WorkingDaysInMonth(year, month)
			for week := 1; week <= 53; week++ {
				got := WorkingDaysInWeek(year, week, month)
				assert.LessOrEqual(t, got, monthDays, "%d-%02d week %d", year, month, week)
				assert.LessOrEqual(t, got, 5)
			}
		}
	}
}

func TestPeriodWorkingDays(t *testing.T) {
	cases := []struct {
		name       string
		sel        kpi.PeriodSelector
		wantPeriod int
		wantMonth  int
	}{
		{
			name:       "monthly",
			sel:        kpi.PeriodSelector{ViewType: kpi.ViewMonthly, Year: 2025, Month: time.February},
			wantPeriod: 20,
			wantMonth:  20,
		},
		{
			name:       "weekly",
			sel:        kpi.PeriodSelector{ViewType: kpi.ViewWeekly, Year: 2025, Month: time.March, Week: 10},
			wantPeriod: 5,
			wantMonth:  21,
		},
		{
			name:       "daily weekday",
			sel:        kpi.PeriodSelector{ViewType: kpi.ViewDaily, Year: 2025, Month: time.March, Day: date(2025, time.March, 4)},
			wantPeriod: 1,
			wantMonth:  21,
		},
		{
			name:       "daily weekend",
			sel:        kpi.PeriodSelector{ViewType: kpi.ViewDaily, Year: 2025, Month: time.March, Day: date(2025, time.March, 8)},
			wantPeriod: 0,
			wantMonth:  21,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			period, month := PeriodWorkingDays(c.sel)
			assert.Equal(t, c.wantPeriod, period)
			assert.Equal(t, c.wantMonth, month)
		})
	}
}
