package utils

import (
	"fmt"
	"strings"
	"time"
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// NormalizeWeekday lowercases and trims a weekday value
func NormalizeWeekday(day string) string {
	return strings.ToLower(strings.TrimSpace(day))
}

// IsValidWeekday checks if a day name is one of the seven weekday values
func IsValidWeekday(day string) bool {
	day = NormalizeWeekday(day)
	for _, valid := range weekdays {
		if day == valid {
			return true
		}
	}
	return false
}

// Weekdays returns the accepted weekday values in order
func Weekdays() []string {
	out := make([]string, len(weekdays))
	copy(out, weekdays)
	return out
}

// ParseDate parses a calendar date in YYYY-MM-DD form
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}
