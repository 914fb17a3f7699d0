package validator

import (
	"regexp"
	"strings"
	"time"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is returned by DTO Validate methods and rendered as HTTP 422.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap keys messages by field. A field reported twice keeps its last message.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Ids are UUIDv7: version nibble 7, RFC 4122 variant, case-insensitive.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func IsValidUUID(id string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(id))
}

// IsValidDate parses a calendar date in YYYY-MM-DD form.
func IsValidDate(s string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", s)
	return date, err == nil
}

// IsValidDateTime parses an RFC 3339 timestamp, with or without fractional seconds.
func IsValidDateTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsValidYear accepts the years a KPI period may be selected in.
func IsValidYear(year int) bool {
	return year >= 2000 && year <= 2100
}

func IsValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// IsPercentage reports whether v lies in [0, 100].
func IsPercentage(v float64) bool {
	return v >= 0 && v <= 100
}

// Phone numbers: optional leading +, then 7-15 digits; spaces and dashes ignored.
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

func IsValidPhoneNumber(phone string) bool {
	phone = strings.NewReplacer(" ", "", "-", "").Replace(phone)
	return phoneRegex.MatchString(phone)
}

func IsInSlice[T comparable](value T, allowed []T) bool {
	for _, item := range allowed {
		if item == value {
			return true
		}
	}
	return false
}
