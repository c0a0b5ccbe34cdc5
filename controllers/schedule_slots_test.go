package controllers

import (
	"testing"

	"schooldesk_go/services/scheduling"

	"github.com/gofiber/fiber/v2"
)

func TestBuildProposal(t *testing.T) {
	teacherID := uint(4)

	req := ScheduleSlotRequest{
		StreamID:      2,
		TeacherID:     &teacherID,
		DayOfWeek:     " Monday ",
		StartTime:     "09:00",
		EndTime:       "10:30:00",
		EffectiveDate: "2026-09-01",
		EndDate:       "2026-12-18",
	}

	proposal, err := buildProposal(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proposal.DayOfWeek != "monday" {
		t.Fatalf("expected normalized weekday, got %q", proposal.DayOfWeek)
	}
	if proposal.StartTime.String() != "09:00:00" || proposal.EndTime.String() != "10:30:00" {
		t.Fatalf("unexpected times: %s-%s", proposal.StartTime, proposal.EndTime)
	}
	if proposal.Dates.End == nil {
		t.Fatalf("expected bounded date range")
	}
	if proposal.TeacherID == nil || *proposal.TeacherID != teacherID {
		t.Fatalf("teacher id not carried through")
	}
}

func TestBuildProposalOpenEnded(t *testing.T) {
	proposal, err := buildProposal(ScheduleSlotRequest{
		StreamID:      1,
		DayOfWeek:     "friday",
		StartTime:     "08:00",
		EndTime:       "09:00",
		EffectiveDate: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proposal.Dates.End != nil {
		t.Fatalf("expected open-ended range, got %v", proposal.Dates.End)
	}
}

func TestBuildProposalRejectsMalformedInput(t *testing.T) {
	base := ScheduleSlotRequest{
		StreamID:      1,
		DayOfWeek:     "monday",
		StartTime:     "09:00",
		EndTime:       "10:00",
		EffectiveDate: "2026-09-01",
	}

	tests := []struct {
		name   string
		mutate func(*ScheduleSlotRequest)
	}{
		{"bad weekday", func(r *ScheduleSlotRequest) { r.DayOfWeek = "someday" }},
		{"bad start time", func(r *ScheduleSlotRequest) { r.StartTime = "9am" }},
		{"bad end time", func(r *ScheduleSlotRequest) { r.EndTime = "25:00" }},
		{"bad effective date", func(r *ScheduleSlotRequest) { r.EffectiveDate = "01/09/2026" }},
		{"bad end date", func(r *ScheduleSlotRequest) { r.EndDate = "never" }},
		{"missing stream", func(r *ScheduleSlotRequest) { r.StreamID = 0 }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			if _, err := buildProposal(req); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRuleStatusMapping(t *testing.T) {
	tests := []struct {
		code scheduling.Code
		want int
	}{
		{scheduling.CodeInvalidTimeRange, fiber.StatusBadRequest},
		{scheduling.CodeInvalidDateRange, fiber.StatusBadRequest},
		{scheduling.CodeStreamNotFound, fiber.StatusNotFound},
		{scheduling.CodeSubjectNotFound, fiber.StatusNotFound},
		{scheduling.CodeTeacherNotFound, fiber.StatusNotFound},
		{scheduling.CodeStreamOverlap, fiber.StatusConflict},
		{scheduling.CodeTeacherDoubleBooking, fiber.StatusConflict},
		{scheduling.CodeValidationTimedOut, fiber.StatusGatewayTimeout},
		{scheduling.CodeDependencyUnavailable, fiber.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		if got := ruleStatus(tc.code); got != tc.want {
			t.Errorf("ruleStatus(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
