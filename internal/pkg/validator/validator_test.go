package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "year", Message: "year must be between 2000 and 2100"},
		{Field: "calls", Message: "calls must not be negative"},
	}

	assert.Equal(t, "year: year must be between 2000 and 2100; calls: calls must not be negative", errs.Error())
	assert.Equal(t, map[string]string{
		"year":  "year must be between 2000 and 2100",
		"calls": "calls must not be negative",
	}, errs.ToMap())
	assert.Equal(t, "", ValidationErrors{}.Error())
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty(" \t\n"))
	assert.False(t, IsEmpty(" Andi "))
}

func TestIsValidEmail(t *testing.T) {
	for _, email := range []string{"andi@example.com", "bella.putri+kpi@sales.co.id", "a@b.cd"} {
		assert.True(t, IsValidEmail(email), email)
	}
	for _, email := range []string{"andi@", "@example.com", "andi@example", "andi example@x.com", ""} {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"v7", "0192d3a4-0000-7000-8000-000000000001", true},
		{"v7 uppercase", "0192D3A4-0000-7000-8000-00000000000A", true},
		{"v4", "123e4567-e89b-42d3-a456-426614174000", false},
		{"bad variant", "0192d3a4-0000-7000-c000-000000000001", false},
		{"no dashes", "0192d3a4000070008000000000000001", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidUUID(tt.id))
		})
	}
}

func TestIsValidDate(t *testing.T) {
	d, ok := IsValidDate("2024-02-29")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), d)

	for _, s := range []string{"2025-02-29", "2025-13-01", "2025/02/01", "01-02-2025", ""} {
		_, ok := IsValidDate(s)
		assert.False(t, ok, s)
	}
}

func TestIsValidDateTime(t *testing.T) {
	for _, s := range []string{"2025-02-03T10:30:00Z", "2025-02-03T10:30:00+07:00", "2025-02-03T10:30:00.123Z"} {
		_, ok := IsValidDateTime(s)
		assert.True(t, ok, s)
	}
	for _, s := range []string{"2025-02-03", "2025-02-03 10:30:00", ""} {
		_, ok := IsValidDateTime(s)
		assert.False(t, ok, s)
	}
}

func TestPeriodBounds(t *testing.T) {
	assert.True(t, IsValidYear(2000))
	assert.True(t, IsValidYear(2100))
	assert.False(t, IsValidYear(1999))
	assert.False(t, IsValidYear(2101))

	assert.True(t, IsValidMonth(1))
	assert.True(t, IsValidMonth(12))
	assert.False(t, IsValidMonth(0))
	assert.False(t, IsValidMonth(13))
}

func TestIsPercentage(t *testing.T) {
	assert.True(t, IsPercentage(0))
	assert.True(t, IsPercentage(100))
	assert.True(t, IsPercentage(45.5))
	assert.False(t, IsPercentage(-0.1))
	assert.False(t, IsPercentage(100.01))
}

func TestIsValidPhoneNumber(t *testing.T) {
	for _, p := range []string{"+62 812-3456-7890", "0211234567", "1234567"} {
		assert.True(t, IsValidPhoneNumber(p), p)
	}
	for _, p := range []string{"123456", "+62 812 3456 7890 1234", "phone", ""} {
		assert.False(t, IsValidPhoneNumber(p), p)
	}
}

func TestIsInSlice(t *testing.T) {
	statuses := []string{"active", "inactive", "closed"}
	assert.True(t, IsInSlice("closed", statuses))
	assert.False(t, IsInSlice("Closed", statuses))
	assert.False(t, IsInSlice("active", nil))
	assert.True(t, IsInSlice(3, []int{1, 2, 3}))
}
