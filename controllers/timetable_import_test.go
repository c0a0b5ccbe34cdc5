package controllers

import (
	"context"
	"errors"
	"testing"

	"schooldesk_go/services/scheduling"
)

func TestImportAbort(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "stream overlap is a per-row skip",
			err:  &scheduling.RuleError{Code: scheduling.CodeStreamOverlap, Message: "overlap"},
			want: false,
		},
		{
			name: "teacher double booking is a per-row skip",
			err:  &scheduling.RuleError{Code: scheduling.CodeTeacherDoubleBooking, Message: "booked"},
			want: false,
		},
		{
			name: "missing reference is a per-row skip",
			err:  &scheduling.RuleError{Code: scheduling.CodeStreamNotFound, Message: "missing"},
			want: false,
		},
		{
			name: "dependency outage aborts",
			err:  scheduling.InfrastructureError(errors.New("connection refused"), "query failed"),
			want: true,
		},
		{
			name: "timeout aborts",
			err:  scheduling.InfrastructureError(context.DeadlineExceeded, "query timed out"),
			want: true,
		},
		{
			name: "plain error aborts",
			err:  errors.New("tx failed"),
			want: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := importAbort(tc.err); got != tc.want {
				t.Fatalf("importAbort = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuildColumnIndex(t *testing.T) {
	col := buildColumnIndex([]string{" Stream_Code ", "day_of_week", "", "START_TIME"})
	if col["stream_code"] != 0 || col["day_of_week"] != 1 || col["start_time"] != 3 {
		t.Fatalf("unexpected index: %v", col)
	}
	if _, ok := col[""]; ok {
		t.Fatalf("blank header must not be indexed")
	}
}

func TestIsRowEmpty(t *testing.T) {
	if !isRowEmpty([]string{"", "  ", "\t"}) {
		t.Fatalf("whitespace-only row should be empty")
	}
	if isRowEmpty([]string{"", "Y7A"}) {
		t.Fatalf("row with a value should not be empty")
	}
}
