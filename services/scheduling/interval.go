package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time expressed as seconds since midnight. It has
// no date component, so two TimeOfDay values always compare within one day.
type TimeOfDay int

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("time value cannot be empty")
	}

	layout := "15:04"
	if strings.Count(value, ":") >= 2 {
		layout = "15:04:05"
	}

	t, err := time.Parse(layout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid time format %q: %w", value, err)
	}
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)/60%60, int(t)%60)
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t < other
}

// TimesOverlap reports whether two half-open time windows [aStart, aEnd) and
// [bStart, bEnd) share at least one instant. Touching endpoints, e.g. one
// window starting exactly when the other ends, do not overlap.
func TimesOverlap(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// DateRange is the validity window of a recurring slot, inclusive on both
// ends. A nil End marks an open-ended range that extends to positive
// infinity. Both bounds are calendar dates; callers normalize with DateOnly.
type DateRange struct {
	Start time.Time
	End   *time.Time
}

// Valid reports whether the range is well-formed: either open-ended, or with
// an end strictly after the start. Equal start and end dates are invalid.
func (r DateRange) Valid() bool {
	return r.End == nil || r.End.After(r.Start)
}

// Overlaps reports whether two inclusive date ranges share at least one day,
// treating a nil End as +infinity. Two open-ended ranges always overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	if other.End != nil && r.Start.After(*other.End) {
		return false
	}
	if r.End != nil && other.Start.After(*r.End) {
		return false
	}
	return true
}

// DateOnly strips the time component so ranges compare at day granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
