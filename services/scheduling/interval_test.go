package scheduling

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(value)
	if err != nil {
		t.Fatalf("unexpected error parsing %q: %v", value, err)
	}
	return tod
}

func date(value string) time.Time {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(value string) *time.Time {
	d := date(value)
	return &d
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "hour minute", input: "08:30", want: TimeOfDay(8*3600 + 30*60)},
		{name: "hour minute second", input: "09:15:30", want: TimeOfDay(9*3600 + 15*60 + 30)},
		{name: "midnight", input: "00:00", want: 0},
		{name: "padded", input: " 10:00 ", want: TimeOfDay(10 * 3600)},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "half past nine", wantErr: true},
		{name: "out of range hour", input: "25:00", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := mustTime(t, "09:05:07").String(); got != "09:05:07" {
		t.Fatalf("expected 09:05:07, got %s", got)
	}
	if got := mustTime(t, "16:30").String(); got != "16:30:00" {
		t.Fatalf("expected 16:30:00, got %s", got)
	}
}

func TestTimesOverlap(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		want                           bool
	}{
		{name: "partial overlap", aStart: "09:00", aEnd: "10:00", bStart: "09:30", bEnd: "10:30", want: true},
		{name: "contained", aStart: "09:00", aEnd: "12:00", bStart: "10:00", bEnd: "11:00", want: true},
		{name: "identical", aStart: "09:00", aEnd: "10:00", bStart: "09:00", bEnd: "10:00", want: true},
		{name: "touching end to start", aStart: "09:00", aEnd: "10:00", bStart: "10:00", bEnd: "11:00", want: false},
		{name: "touching start to end", aStart: "10:00", aEnd: "11:00", bStart: "09:00", bEnd: "10:00", want: false},
		{name: "disjoint", aStart: "08:00", aEnd: "09:00", bStart: "13:00", bEnd: "14:00", want: false},
		{name: "one minute shared", aStart: "09:00", aEnd: "10:01", bStart: "10:00", bEnd: "11:00", want: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := TimesOverlap(mustTime(t, tc.aStart), mustTime(t, tc.aEnd), mustTime(t, tc.bStart), mustTime(t, tc.bEnd))
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			// Overlap is symmetric
			reversed := TimesOverlap(mustTime(t, tc.bStart), mustTime(t, tc.bEnd), mustTime(t, tc.aStart), mustTime(t, tc.aEnd))
			if reversed != tc.want {
				t.Fatalf("expected symmetric result %v, got %v", tc.want, reversed)
			}
		})
	}
}

func TestDateRangeValid(t *testing.T) {
	tests := []struct {
		name  string
		r     DateRange
		want  bool
	}{
		{name: "open ended", r: DateRange{Start: date("2025-01-15")}, want: true},
		{name: "end after start", r: DateRange{Start: date("2025-01-01"), End: datePtr("2025-06-30")}, want: true},
		{name: "end equals start", r: DateRange{Start: date("2025-01-01"), End: datePtr("2025-01-01")}, want: false},
		{name: "end before start", r: DateRange{Start: date("2025-01-15"), End: datePtr("2025-01-01")}, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.Valid(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDateRangeOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b DateRange
		want bool
	}{
		{
			name: "bounded overlap",
			a:    DateRange{Start: date("2025-01-01"), End: datePtr("2025-01-31")},
			b:    DateRange{Start: date("2025-01-15"), End: datePtr("2025-02-15")},
			want: true,
		},
		{
			name: "bounded disjoint",
			a:    DateRange{Start: date("2025-01-01"), End: datePtr("2025-01-31")},
			b:    DateRange{Start: date("2025-02-01"), End: datePtr("2025-02-28")},
			want: false,
		},
		{
			name: "shared boundary day overlaps",
			a:    DateRange{Start: date("2025-01-01"), End: datePtr("2025-01-31")},
			b:    DateRange{Start: date("2025-01-31"), End: datePtr("2025-02-28")},
			want: true,
		},
		{
			name: "open ended vs future bounded",
			a:    DateRange{Start: date("2025-01-01")},
			b:    DateRange{Start: date("2030-06-01"), End: datePtr("2030-06-30")},
			want: true,
		},
		{
			name: "open ended vs earlier bounded",
			a:    DateRange{Start: date("2025-06-01")},
			b:    DateRange{Start: date("2025-01-01"), End: datePtr("2025-01-31")},
			want: false,
		},
		{
			name: "two open ended",
			a:    DateRange{Start: date("2025-01-01")},
			b:    DateRange{Start: date("2027-01-01")},
			want: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("expected symmetric result %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	got := DateOnly(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
	if got.Year() != 2025 || got.Month() != 3 || got.Day() != 14 {
		t.Fatalf("date changed: %v", got)
	}
}
